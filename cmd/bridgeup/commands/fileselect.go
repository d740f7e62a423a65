// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/toitlang/bridgeup/cmd/bridgeup/install"
)

// promptSelector asks for the firmware file on the terminal. A path given
// with --file is used without prompting.
type promptSelector struct {
	path        string
	interactive bool
}

func (s promptSelector) Select(extension string) (install.Selection, error) {
	if s.path != "" {
		if err := validateFirmwarePath(extension)(s.path); err != nil {
			return install.Selection{}, err
		}
		return okay(s.path)
	}
	if !s.interactive {
		return install.Selection{}, fmt.Errorf("no terminal to ask for the firmware file, use --file")
	}

	label := "Firmware file"
	if extension != "" {
		label = fmt.Sprintf("Firmware file (.%s)", extension)
	}
	prompt := promptui.Prompt{
		Label:    label,
		Validate: validateFirmwarePath(extension),
	}
	res, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return install.Selection{Response: install.Cancel}, nil
	}
	if err != nil {
		return install.Selection{}, err
	}
	return okay(res)
}

func okay(path string) (install.Selection, error) {
	abs, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		return install.Selection{}, err
	}
	return install.Selection{Response: install.Okay, Paths: []string{abs}}, nil
}

func validateFirmwarePath(extension string) promptui.ValidateFunc {
	return func(input string) error {
		path := strings.TrimSpace(input)
		if path == "" {
			return fmt.Errorf("no file given")
		}
		if extension != "" && !strings.EqualFold(filepath.Ext(path), "."+extension) {
			return fmt.Errorf("the file must be a .%s file", extension)
		}
		stat, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("the file '%s' was not found", path)
		}
		if stat.IsDir() {
			return fmt.Errorf("'%s' is a directory", path)
		}
		return nil
	}
}
