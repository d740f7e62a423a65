// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package ports

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"syscall"
	"time"

	"go.bug.st/serial"
)

// Port is an opened serial port.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// Opener opens the port described by a Config.
type Opener interface {
	Open(cfg Config) (Port, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(cfg Config) (Port, error)

func (f OpenerFunc) Open(cfg Config) (Port, error) {
	return f(cfg)
}

// SerialOpener opens OS serial ports. Errors are returned as *IOError.
type SerialOpener struct{}

func (SerialOpener) Open(cfg Config) (Port, error) {
	dev, err := serial.Open(cfg.Name, cfg.Mode())
	if err != nil {
		return nil, &IOError{Port: cfg.Name, Kind: classify(err), Err: err}
	}
	return &serialPort{dev}, nil
}

type serialPort struct {
	serial.Port
}

// Read turns a read timeout into io.ErrUnexpectedEOF, so that callers reading
// through a bufio.Reader don't spin on empty reads.
func (s *serialPort) Read(buf []byte) (n int, err error) {
	n, err = s.Port.Read(buf)
	if err == nil && n == 0 && len(buf) > 0 {
		return 0, io.ErrUnexpectedEOF
	}
	return n, err
}

// ErrorKind classifies failures to open a port.
type ErrorKind int

const (
	// KindUnknown is a failure that could not be classified.
	KindUnknown ErrorKind = iota
	KindNotFound
	KindPermissionDenied
	KindBusy
	KindInvalidInput
	// KindOther is a generic Windows OS error raised while opening the
	// port, for example when the device went away during the open.
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindBusy:
		return "busy"
	case KindInvalidInput:
		return "invalid input"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// IOError is a failure to open a serial port.
type IOError struct {
	Port string
	Kind ErrorKind
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("unable to open serial port '%s' (%s): %v", e.Port, e.Kind, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func classify(err error) ErrorKind {
	return classifyOn(err, runtime.GOOS)
}

func classifyOn(err error, goos string) ErrorKind {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		return classifyCode(portErr.Code())
	}
	switch {
	case os.IsNotExist(err):
		return KindNotFound
	case os.IsPermission(err):
		return KindPermissionDenied
	}

	// serial.Open passes other CreateFile failures through as plain errnos.
	var errno syscall.Errno
	if goos == "windows" && errors.As(err, &errno) {
		return KindOther
	}
	return KindUnknown
}

func classifyCode(code serial.PortErrorCode) ErrorKind {
	switch code {
	case serial.PortNotFound:
		return KindNotFound
	case serial.PermissionDenied:
		return KindPermissionDenied
	case serial.PortBusy:
		return KindBusy
	case serial.InvalidSerialPort, serial.InvalidSpeed, serial.InvalidDataBits, serial.InvalidParity, serial.InvalidStopBits, serial.InvalidTimeoutValue:
		return KindInvalidInput
	default:
		return KindUnknown
	}
}
