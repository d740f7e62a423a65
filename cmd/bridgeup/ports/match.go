// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package ports

import (
	"fmt"
	"strings"

	"github.com/toitlang/bridgeup/cmd/bridgeup/device"
)

// Matcher picks the port of a device among the enumerated ports.
type Matcher func(dev device.Connected, candidates []Candidate) (Candidate, error)

// MatchProductPrefix matches when the device description is a prefix of the
// USB product string. Windows reports product strings reliably but not
// serial numbers.
func MatchProductPrefix(dev device.Connected, candidates []Candidate) (Candidate, error) {
	return matchUSB(candidates, dev.Description, func(c Candidate) bool {
		return c.Product != "" && strings.HasPrefix(c.Product, dev.Description)
	})
}

// MatchSerialNumber matches on the exact USB serial number.
func MatchSerialNumber(dev device.Connected, candidates []Candidate) (Candidate, error) {
	return matchUSB(candidates, dev.SerialNumber, func(c Candidate) bool {
		return c.SerialNumber == dev.SerialNumber
	})
}

func matchUSB(candidates []Candidate, identity string, match func(Candidate) bool) (Candidate, error) {
	var usb []Candidate
	for _, c := range candidates {
		if c.IsUSB {
			usb = append(usb, c)
		}
	}
	if len(usb) == 0 {
		return Candidate{}, ErrNoMatch
	}
	if identity == "" {
		return Candidate{}, ErrMissingIdentity
	}

	var found []Candidate
	for _, c := range usb {
		if match(c) {
			found = append(found, c)
		}
	}
	switch len(found) {
	case 0:
		return Candidate{}, ErrNoMatch
	case 1:
		return found[0], nil
	default:
		names := make([]string, len(found))
		for i, c := range found {
			names[i] = c.Name
		}
		return Candidate{}, fmt.Errorf("%w: %s", ErrAmbiguous, strings.Join(names, ", "))
	}
}

// MatcherFor returns the matcher suited for the given GOOS.
func MatcherFor(goos string) Matcher {
	if goos == "windows" {
		return MatchProductPrefix
	}
	return MatchSerialNumber
}

// MatcherByName returns the matcher configured by name: "product",
// "serial" or "auto". Auto picks the matcher for the given GOOS.
func MatcherByName(name string, goos string) (Matcher, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return MatcherFor(goos), nil
	case "product":
		return MatchProductPrefix, nil
	case "serial":
		return MatchSerialNumber, nil
	default:
		return nil, fmt.Errorf("unknown port matching '%s'. Must be either auto, product or serial", name)
	}
}
