// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package bridge speaks the serial command protocol of Bridge controllers.
//
// Every frame, in both directions, is '<transaction id>,<payload>~'. The
// device answers a command with 'ok' or with the requested data, echoing the
// transaction id.
package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	frameEnd = '~'
	ack      = "ok"

	// DefaultReadTimeout bounds the wait for a single reply.
	DefaultReadTimeout = 2 * time.Second
)

// Command is a top level protocol command.
type Command string

const (
	CmdCheck   Command = "CHCK"
	CmdControl Command = "CTRL"
)

// ControlArg is the argument of a CTRL command.
type ControlArg string

const (
	EnterBootloader ControlArg = "enterBootloader"
	DeviceRestart   ControlArg = "deviceRestart"
	FactoryReset    ControlArg = "factoryReset"
	RefreshLEDs     ControlArg = "refreshLeds"
)

// reboots reports whether the device drops the connection when it receives
// the argument, so no trailing ack can be expected.
func (a ControlArg) reboots() bool {
	return a == EnterBootloader || a == DeviceRestart
}

// DeviceInfo is the reply to a CHCK command.
type DeviceInfo struct {
	DeviceModel     string `json:"deviceModel" yaml:"deviceModel"`
	FirmwareVersion string `json:"firmwareVersion" yaml:"firmwareVersion"`
	HardwareVersion string `json:"hardwareVersion" yaml:"hardwareVersion"`
	UID             string `json:"uId" yaml:"uId"`
	DeviceName      string `json:"deviceName" yaml:"deviceName"`
	ProfileID       string `json:"profileId" yaml:"profileId"`
}

// Client sends commands over an opened port. It is not safe for concurrent
// use.
type Client struct {
	w      io.Writer
	r      *bufio.Reader
	txID   int
	logger *zap.Logger
}

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(rw io.ReadWriter, opts ...Option) *Client {
	c := &Client{
		w:      rw,
		r:      bufio.NewReader(rw),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check asks the device to describe itself.
func (c *Client) Check() (*DeviceInfo, error) {
	id := c.next()
	if err := c.write(id, string(CmdCheck)); err != nil {
		return nil, err
	}
	payload, err := c.read(id, CmdCheck)
	if err != nil {
		return nil, err
	}
	var info DeviceInfo
	if err := json.Unmarshal([]byte(payload), &info); err != nil {
		return nil, &ProtocolError{Command: CmdCheck, Response: payload, Err: err}
	}
	return &info, nil
}

// Control sends a CTRL command with the given argument.
func (c *Client) Control(arg ControlArg) error {
	id := c.next()
	if err := c.write(id, string(CmdControl)); err != nil {
		return err
	}
	if err := c.expectAck(id, CmdControl); err != nil {
		return err
	}

	args, err := json.Marshal(struct {
		Args []ControlArg `json:"args"`
	}{Args: []ControlArg{arg}})
	if err != nil {
		return err
	}
	if err := c.write(id, string(args)); err != nil {
		return err
	}
	if arg.reboots() {
		c.logger.Debug("not waiting for ack, device reboots", zap.String("arg", string(arg)))
		return nil
	}
	return c.expectAck(id, CmdControl)
}

func (c *Client) next() int {
	c.txID++
	return c.txID
}

func (c *Client) write(id int, payload string) error {
	frame := strconv.Itoa(id) + "," + payload + string(frameEnd)
	c.logger.Debug("sending frame", zap.String("frame", frame))
	if _, err := io.WriteString(c.w, frame); err != nil {
		return fmt.Errorf("failed to write '%s': %w", frame, err)
	}
	return nil
}

func (c *Client) read(id int, cmd Command) (string, error) {
	frame, err := c.r.ReadString(frameEnd)
	if err != nil {
		return "", &ProtocolError{Command: cmd, Response: frame, Err: fmt.Errorf("no response: %w", err)}
	}
	c.logger.Debug("received frame", zap.String("frame", frame))

	frame = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(frame), string(frameEnd)))
	idPart, payload, ok := strings.Cut(frame, ",")
	if !ok {
		return "", &ProtocolError{Command: cmd, Response: frame, Err: fmt.Errorf("malformed frame")}
	}
	got, err := strconv.Atoi(strings.TrimSpace(idPart))
	if err != nil || got != id {
		return "", &ProtocolError{Command: cmd, Response: frame, Err: fmt.Errorf("expected transaction %d", id)}
	}
	return payload, nil
}

func (c *Client) expectAck(id int, cmd Command) error {
	payload, err := c.read(id, cmd)
	if err != nil {
		return err
	}
	if payload != ack {
		return &ProtocolError{Command: cmd, Response: payload}
	}
	return nil
}

// ProtocolError is returned when the device did not answer, or answered
// something other than expected.
type ProtocolError struct {
	Command  Command
	Response string
	Err      error
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("%s rejected", e.Command)
	if e.Response != "" {
		msg += fmt.Sprintf(", device responded '%s'", e.Response)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
