// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package ports finds the serial port a device is attached to.
package ports

import (
	"sort"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const (
	// DefaultBaudRate is used for regular communication with a device.
	DefaultBaudRate = 9600
	// ResetBaudRate makes RP2040 based devices reboot into their bootloader
	// when a port is opened with it.
	ResetBaudRate = 1200
)

// Candidate is a serial port as reported by the host.
type Candidate struct {
	Name         string `yaml:"name" json:"name"`
	IsUSB        bool   `yaml:"usb" json:"usb"`
	VID          string `yaml:"vid,omitempty" json:"vid,omitempty"`
	PID          string `yaml:"pid,omitempty" json:"pid,omitempty"`
	Product      string `yaml:"product,omitempty" json:"product,omitempty"`
	SerialNumber string `yaml:"serial,omitempty" json:"serial,omitempty"`
}

// Enumerator lists the serial ports visible on the host.
type Enumerator interface {
	Ports() ([]Candidate, error)
}

// EnumeratorFunc adapts a function to the Enumerator interface.
type EnumeratorFunc func() ([]Candidate, error)

func (f EnumeratorFunc) Ports() ([]Candidate, error) {
	return f()
}

// SystemEnumerator lists the ports using the OS specific enumerator.
type SystemEnumerator struct{}

func (SystemEnumerator) Ports() ([]Candidate, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}
	res := make([]Candidate, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		res = append(res, Candidate{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			Product:      d.Product,
			SerialNumber: d.SerialNumber,
		})
	}
	return res, nil
}

// List returns the ports of the enumerator sorted by name. Unless all is set,
// only USB backed ports are returned.
func List(enum Enumerator, all bool) ([]Candidate, error) {
	candidates, err := enum.Ports()
	if err != nil {
		return nil, &EnumerationError{Err: err}
	}
	var res []Candidate
	for _, c := range candidates {
		if all || c.IsUSB {
			res = append(res, c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

// Config is an unopened port bound to one physical device.
type Config struct {
	Name     string
	BaudRate int
}

// Mode returns the serial mode to open the port with.
func (c Config) Mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}
