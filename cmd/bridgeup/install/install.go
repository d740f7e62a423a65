// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

// Package install prepares a device for a firmware upload: it obtains the
// firmware and switches the device into its bootloader. The upload itself
// is done by the caller.
package install

import (
	"errors"
	"fmt"

	"github.com/toitlang/bridgeup/cmd/bridgeup/device"
	"go.uber.org/zap"
)

// ErrNoFile is returned when no local firmware file was chosen.
var ErrNoFile = errors.New("unable to find local file")

// Response is the outcome of a file selection.
type Response int

const (
	Cancel Response = iota
	Okay
	OkayMultiple
)

// Selection is the result of asking the user for a firmware file.
type Selection struct {
	Response Response
	Paths    []string
}

// Path returns the selected file, if exactly one was selected.
func (s Selection) Path() (string, bool) {
	if s.Response != Okay || len(s.Paths) != 1 {
		return "", false
	}
	return s.Paths[0], true
}

// Selector asks the user for a firmware file. The extension, without dot,
// filters the offered files; it is empty when any file will do.
type Selector interface {
	Select(extension string) (Selection, error)
}

// SelectorFunc adapts a function to the Selector interface.
type SelectorFunc func(extension string) (Selection, error)

func (f SelectorFunc) Select(extension string) (Selection, error) {
	return f(extension)
}

// Transitioner switches a device into its bootloader.
type Transitioner interface {
	Enter(dev device.Connected) error
}

// Asset is a firmware image published with a release.
type Asset struct {
	Name        string `json:"name" yaml:"name"`
	URL         string `json:"browser_download_url" yaml:"url"`
	Size        int64  `json:"size" yaml:"size"`
	ContentType string `json:"content_type" yaml:"contentType"`
}

type Installer struct {
	selector     Selector
	transitioner Transitioner
	logger       *zap.Logger
}

type Option func(*Installer)

func WithLogger(logger *zap.Logger) Option {
	return func(i *Installer) {
		i.logger = logger
	}
}

func New(selector Selector, transitioner Transitioner, opts ...Option) *Installer {
	i := &Installer{
		selector:     selector,
		transitioner: transitioner,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Local asks for a local firmware file and switches the device into its
// bootloader. It returns the chosen file, ready to be uploaded.
func (i *Installer) Local(dev device.Connected) (string, error) {
	extension := dev.Type.FirmwareExtension()
	selection, err := i.selector.Select(extension)
	if err != nil {
		i.logger.Debug("local file selection failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrNoFile, err)
	}
	path, ok := selection.Path()
	if !ok {
		i.logger.Debug("local file selection cancelled", zap.Int("response", int(selection.Response)))
		return "", ErrNoFile
	}

	if err := i.transitioner.Enter(dev); err != nil {
		return "", err
	}
	return path, nil
}

// Remote installs a released asset. Downloading is not supported yet, so it
// succeeds without doing anything.
func (i *Installer) Remote(dev device.Connected, asset Asset) error {
	i.logger.Debug("remote install is not implemented", zap.Stringer("device", dev), zap.String("asset", asset.Name))
	return nil
}
