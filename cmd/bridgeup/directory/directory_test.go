// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_UserConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	t.Setenv(UserConfigPathEnv, path)

	cfg, err := GetUserConfig()
	require.NoError(t, err)
	assert.False(t, cfg.IsSet(MatchCfgKey))

	cfg.Set(MatchCfgKey, "serial")
	require.NoError(t, WriteConfig(cfg))

	_, err = os.Stat(filepath.Join(filepath.Dir(path), ".config.tmp.yaml"))
	assert.True(t, os.IsNotExist(err))

	cfg, err = GetUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "serial", cfg.GetString(MatchCfgKey))
}

func Test_UserConfigBroken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("match: [unterminated"), 0644))
	t.Setenv(UserConfigPathEnv, path)

	_, err := GetUserConfig()
	assert.Error(t, err)
}
