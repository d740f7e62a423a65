// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package ports

import (
	"errors"
	"os"
	"reflect"
	"runtime"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toitlang/bridgeup/cmd/bridgeup/device"
	"go.bug.st/serial"
)

func funcName(m Matcher) uintptr {
	return reflect.ValueOf(m).Pointer()
}

func Test_MatcherFor(t *testing.T) {
	assert.Equal(t, funcName(MatchProductPrefix), funcName(MatcherFor("windows")))
	assert.Equal(t, funcName(MatchSerialNumber), funcName(MatcherFor("linux")))
	assert.Equal(t, funcName(MatchSerialNumber), funcName(MatcherFor("darwin")))
}

func Test_MatcherByName(t *testing.T) {
	tests := []struct {
		name string
		goos string
		want Matcher
	}{
		{name: "auto", goos: "windows", want: MatchProductPrefix},
		{name: "", goos: "linux", want: MatchSerialNumber},
		{name: "Product", goos: "linux", want: MatchProductPrefix},
		{name: "serial", goos: "windows", want: MatchSerialNumber},
	}
	for _, test := range tests {
		t.Run(test.name+"/"+test.goos, func(t *testing.T) {
			m, err := MatcherByName(test.name, test.goos)
			require.NoError(t, err)
			assert.Equal(t, funcName(test.want), funcName(m))
		})
	}

	_, err := MatcherByName("vid", "linux")
	assert.Error(t, err)
}

func Test_MatchProductPrefixSkipsMissingProduct(t *testing.T) {
	found, err := MatchProductPrefix(device.Connected{Description: "Bridge4"}, []Candidate{
		{Name: "COM1", IsUSB: true},
		{Name: "COM2", IsUSB: true, Product: "Bridge4"},
	})
	require.NoError(t, err)
	assert.Equal(t, "COM2", found.Name)
}

func Test_MatchSerialNumberIsExact(t *testing.T) {
	_, err := MatchSerialNumber(device.Connected{SerialNumber: "BB2"}, []Candidate{
		{Name: "/dev/ttyACM0", IsUSB: true, SerialNumber: "BB22"},
	})
	assert.ErrorIs(t, err, ErrNoMatch)
}

func Test_classify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		goos string
		kind ErrorKind
	}{
		{"not exist", os.ErrNotExist, "linux", KindNotFound},
		{"permission", os.ErrPermission, "darwin", KindPermissionDenied},
		{"wrapped not exist", &os.PathError{Op: "open", Path: "/dev/ttyACM9", Err: os.ErrNotExist}, "linux", KindNotFound},
		{"plain error", errors.New("the device does not recognize the command"), "windows", KindUnknown},
		{"is a directory", &os.PathError{Op: "open", Path: "/etc", Err: syscall.EISDIR}, "linux", KindUnknown},
		{"io error on linux", syscall.EIO, "linux", KindUnknown},
		{"io error on darwin", syscall.EIO, "darwin", KindUnknown},
		{"errno on windows", syscall.Errno(31), "windows", KindOther},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, classifyOn(tc.err, tc.goos))
		})
	}
}

func Test_classifyCode(t *testing.T) {
	tests := []struct {
		code serial.PortErrorCode
		kind ErrorKind
	}{
		{serial.PortNotFound, KindNotFound},
		{serial.PermissionDenied, KindPermissionDenied},
		{serial.PortBusy, KindBusy},
		{serial.InvalidSerialPort, KindInvalidInput},
		{serial.InvalidSpeed, KindInvalidInput},
		{serial.InvalidTimeoutValue, KindInvalidInput},
		{serial.PortClosed, KindUnknown},
		{serial.FunctionNotImplemented, KindUnknown},
		{serial.ErrorEnumeratingPorts, KindUnknown},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.kind, classifyCode(tc.code), "code %d", tc.code)
	}
}

func Test_SerialOpenerNotASerialPort(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs unix device paths")
	}
	for _, name := range []string{"/dev/null", t.TempDir()} {
		t.Run(name, func(t *testing.T) {
			_, err := SerialOpener{}.Open(Config{Name: name, BaudRate: ResetBaudRate})
			var ioErr *IOError
			require.ErrorAs(t, err, &ioErr)
			assert.NotEqual(t, KindOther, ioErr.Kind)
		})
	}
}

func Test_SerialOpenerMissingPort(t *testing.T) {
	_, err := SerialOpener{}.Open(Config{Name: "/dev/bridgeup-missing-port", BaudRate: DefaultBaudRate})
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "/dev/bridgeup-missing-port", ioErr.Port)
}
