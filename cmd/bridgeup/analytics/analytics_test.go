// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package analytics

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/segmentio/analytics-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toitlang/bridgeup/cmd/bridgeup/directory"
)

func Test_LoadConfigAssignsClientID(t *testing.T) {
	t.Setenv(directory.UserConfigPathEnv, filepath.Join(t.TempDir(), "config.yaml"))

	cfg, err := directory.GetUserConfig()
	require.NoError(t, err)
	first, err := LoadConfig(cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ClientID)
	assert.False(t, first.Disabled)

	cfg, err = directory.GetUserConfig()
	require.NoError(t, err)
	second, err := LoadConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, first.ClientID, second.ClientID)
}

func Test_populate(t *testing.T) {
	page := populate(analytics.Page{Name: "CLI Execute"}, "cid").(analytics.Page)
	assert.Equal(t, "cid", page.AnonymousId)

	track := populate(analytics.Track{Event: "x", AnonymousId: "other"}, "cid").(analytics.Track)
	assert.Equal(t, "other", track.AnonymousId)
}

func Test_Transition(t *testing.T) {
	ok := Transition("click", "baud-reset", nil)
	assert.Equal(t, "Bootloader Transition", ok.Event)
	assert.Equal(t, true, ok.Properties["success"])
	assert.Equal(t, "click", ok.Properties["device_type"])

	failed := Transition("bridge6", "command", errors.New("no response"))
	assert.Equal(t, false, failed.Properties["success"])
}

func Test_GetClientWithoutWriteKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(directory.UserConfigPathEnv, path)

	client, err := GetClient(Settings{})
	require.NoError(t, err)
	assert.True(t, client.(*proxyClient).disabled)
	assert.NoError(t, client.Enqueue(analytics.Page{Name: "CLI Execute"}))
	assert.NoError(t, client.Close())
	assert.NoFileExists(t, path)
}
