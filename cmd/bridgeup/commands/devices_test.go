// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toitlang/bridgeup/cmd/bridgeup/device"
	"github.com/toitlang/bridgeup/cmd/bridgeup/directory"
	"github.com/toitlang/bridgeup/cmd/bridgeup/ports"
)

func withTempConfig(t *testing.T) {
	t.Setenv(directory.UserConfigPathEnv, filepath.Join(t.TempDir(), "config.yaml"))
}

func storeDevices(t *testing.T, devices ...device.Connected) {
	cfg, err := directory.GetUserConfig()
	require.NoError(t, err)
	saveDevices(cfg, devices)
	require.NoError(t, directory.WriteConfig(cfg))
}

func deviceCmd(t *testing.T, args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addDeviceFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func Test_DevicesRoundTrip(t *testing.T) {
	withTempConfig(t)
	stage := device.Connected{Name: "stage", Type: device.Bridge6, Description: "Bridge6"}
	pedal := device.Connected{Name: "pedal", Type: device.Click, SerialNumber: "E6614864D3"}
	storeDevices(t, stage, pedal)

	cfg, err := directory.GetUserConfig()
	require.NoError(t, err)
	devices, err := loadDevices(cfg)
	require.NoError(t, err)
	assert.Equal(t, []device.Connected{stage, pedal}, devices)
}

func Test_loadDevicesBadType(t *testing.T) {
	withTempConfig(t)
	cfg, err := directory.GetUserConfig()
	require.NoError(t, err)
	cfg.Set(directory.DevicesCfgKey, []map[string]string{{"name": "x", "type": "bridge8"}})
	_, err = loadDevices(cfg)
	assert.Error(t, err)
}

func Test_upsertAndRemoveDevice(t *testing.T) {
	devices := upsertDevice(nil, device.Connected{Name: "stage", Type: device.Bridge4})
	devices = upsertDevice(devices, device.Connected{Name: "pedal", Type: device.ULoop})
	devices = upsertDevice(devices, device.Connected{Name: "Stage", Type: device.Bridge6})
	require.Len(t, devices, 2)
	assert.Equal(t, device.Bridge6, devices[0].Type)

	devices, removed := removeDevice(devices, " stage ")
	assert.True(t, removed)
	assert.Equal(t, []device.Connected{{Name: "pedal", Type: device.ULoop}}, devices)

	_, removed = removeDevice(devices, "stage")
	assert.False(t, removed)
}

func Test_fillFromPort(t *testing.T) {
	enum := ports.EnumeratorFunc(func() ([]ports.Candidate, error) {
		return []ports.Candidate{
			{Name: "/dev/ttyS0"},
			{Name: "/dev/ttyACM0", IsUSB: true, Product: "Click", SerialNumber: "E6614864D3"},
		}, nil
	})

	dev, err := fillFromPort(device.Connected{Type: device.Click}, enum, "/dev/ttyACM0")
	require.NoError(t, err)
	assert.Equal(t, device.Connected{Type: device.Click, Description: "Click", SerialNumber: "E6614864D3"}, dev)

	dev, err = fillFromPort(device.Connected{Type: device.Click, Description: "Cl"}, enum, "/dev/ttyACM0")
	require.NoError(t, err)
	assert.Equal(t, "Cl", dev.Description)

	_, err = fillFromPort(device.Connected{}, enum, "/dev/ttyS0")
	assert.Error(t, err)
	_, err = fillFromPort(device.Connected{}, enum, "/dev/ttyACM7")
	assert.Error(t, err)
}

func Test_GetDevice(t *testing.T) {
	withTempConfig(t)

	_, err := GetDevice(deviceCmd(t))
	assert.Error(t, err)

	dev, err := GetDevice(deviceCmd(t, "--type", "uloop", "--serial", "AA11"))
	require.NoError(t, err)
	assert.Equal(t, device.Connected{Type: device.ULoop, SerialNumber: "AA11"}, dev)

	_, err = GetDevice(deviceCmd(t, "--type", "bridge8"))
	assert.Error(t, err)

	pedal := device.Connected{Name: "pedal", Type: device.Click, SerialNumber: "E6614864D3"}
	storeDevices(t, pedal)
	dev, err = GetDevice(deviceCmd(t))
	require.NoError(t, err)
	assert.Equal(t, pedal, dev)

	stage := device.Connected{Name: "stage", Type: device.Bridge6, Description: "Bridge6"}
	storeDevices(t, pedal, stage)
	dev, err = GetDevice(deviceCmd(t, "--device", "Stage"))
	require.NoError(t, err)
	assert.Equal(t, stage, dev)

	_, err = GetDevice(deviceCmd(t, "--device", "desk"))
	assert.Error(t, err)
}
