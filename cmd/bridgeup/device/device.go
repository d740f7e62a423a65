// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package device describes the controllers bridgeup knows how to switch into
// bootloader mode.
package device

import (
	"fmt"
	"strings"
)

// Type is the hardware family of a connected device.
type Type int

const (
	// Unknown is the zero value and stands for a device that has not been
	// identified yet.
	Unknown Type = iota
	Bridge6
	Bridge4
	Click
	ULoop
	// RPBoot is an RP2040 based device that already runs its boot ROM.
	RPBoot
)

var typeNames = map[Type]string{
	Unknown: "unknown",
	Bridge6: "bridge6",
	Bridge4: "bridge4",
	Click:   "click",
	ULoop:   "uloop",
	RPBoot:  "rp-boot",
}

// Types returns all identifiable types, Unknown excluded.
func Types() []Type {
	return []Type{Bridge6, Bridge4, Click, ULoop, RPBoot}
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// ParseType parses the textual form of a type, ignoring case.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return Unknown, fmt.Errorf("unknown device type '%s'", s)
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*t = Unknown
		return nil
	}
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// FirmwareExtension returns the file extension of firmware images for the
// type, or the empty string if any file is acceptable.
func (t Type) FirmwareExtension() string {
	switch t {
	case Bridge6, Bridge4:
		return "bin"
	case Click, ULoop:
		return "uf2"
	default:
		return ""
	}
}

// Connected is a physically attached device. Empty strings mean the value
// was not reported.
type Connected struct {
	Name         string `mapstructure:"name" yaml:"name" json:"name"`
	Type         Type   `mapstructure:"type" yaml:"type" json:"type"`
	Description  string `mapstructure:"description" yaml:"description,omitempty" json:"description,omitempty"`
	SerialNumber string `mapstructure:"serial" yaml:"serial,omitempty" json:"serial,omitempty"`
}

// Identified reports whether the device type is known.
func (d Connected) Identified() bool {
	return d.Type != Unknown
}

func (d Connected) String() string {
	head := d.Type.String()
	var details []string
	if d.Name != "" {
		head = d.Name
		details = append(details, d.Type.String())
	}
	if d.Description != "" {
		details = append(details, "description: "+d.Description)
	}
	if d.SerialNumber != "" {
		details = append(details, "serial: "+d.SerialNumber)
	}
	if len(details) == 0 {
		return head
	}
	return fmt.Sprintf("%s (%s)", head, strings.Join(details, ", "))
}
