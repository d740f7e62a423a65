// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toitlang/bridgeup/cmd/bridgeup/install"
	"github.com/toitlang/bridgeup/cmd/bridgeup/ports"
)

func Test_newEncoder(t *testing.T) {
	list := portList{
		{Name: "/dev/ttyACM0", IsUSB: true, Product: "Click", SerialNumber: "E6614864D3"},
		{Name: "/dev/ttyS0"},
	}

	t.Run("short", func(t *testing.T) {
		var buf bytes.Buffer
		enc, err := newEncoder("short", &buf)
		require.NoError(t, err)
		require.NoError(t, enc.Encode(list))
		assert.Equal(t, "/dev/ttyACM0\tClick\tserial: E6614864D3\n/dev/ttyS0\t(not USB)\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		enc, err := newEncoder("JSON", &buf)
		require.NoError(t, err)
		require.NoError(t, enc.Encode(ports.Candidate{Name: "COM3", Product: "Bridge6"}))
		assert.Contains(t, buf.String(), `"name": "COM3"`)
		assert.Contains(t, buf.String(), `"product": "Bridge6"`)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		enc, err := newEncoder("yaml", &buf)
		require.NoError(t, err)
		require.NoError(t, enc.Encode(ports.Candidate{Name: "COM3"}))
		assert.Contains(t, buf.String(), "name: COM3")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := newEncoder("xml", &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("short without Short", func(t *testing.T) {
		enc, err := newEncoder("short", &bytes.Buffer{})
		require.NoError(t, err)
		assert.Error(t, enc.Encode(42))
	})
}

func Test_validateFirmwarePath(t *testing.T) {
	dir := t.TempDir()
	firmware := filepath.Join(dir, "click.uf2")
	require.NoError(t, os.WriteFile(firmware, []byte{0}, 0644))
	folder := filepath.Join(dir, "release.uf2")
	require.NoError(t, os.Mkdir(folder, 0755))

	validate := validateFirmwarePath("uf2")
	assert.NoError(t, validate(firmware))
	assert.NoError(t, validate("  "+firmware+" "))
	assert.Error(t, validate(""))
	assert.Error(t, validate(filepath.Join(dir, "bridge.bin")))
	assert.Error(t, validate(filepath.Join(dir, "missing.uf2")))
	assert.Error(t, validate(folder))

	assert.NoError(t, validateFirmwarePath("")(firmware))
}

func Test_promptSelector(t *testing.T) {
	dir := t.TempDir()
	firmware := filepath.Join(dir, "bridge6.bin")
	require.NoError(t, os.WriteFile(firmware, []byte{0}, 0644))

	sel, err := promptSelector{path: firmware}.Select("bin")
	require.NoError(t, err)
	assert.Equal(t, install.Okay, sel.Response)
	assert.Equal(t, []string{firmware}, sel.Paths)

	_, err = promptSelector{path: firmware}.Select("uf2")
	assert.Error(t, err)

	_, err = promptSelector{}.Select("bin")
	assert.Error(t, err)
}

func Test_attemptedTransition(t *testing.T) {
	assert.True(t, attemptedTransition(nil))
	assert.True(t, attemptedTransition(errors.New("unable to open serial port")))
	assert.False(t, attemptedTransition(install.ErrNoFile))
	assert.False(t, attemptedTransition(fmt.Errorf("%w: the file must be a .uf2 file", install.ErrNoFile)))
}
