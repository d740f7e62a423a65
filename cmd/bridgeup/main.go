// Copyright (C) 2021 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package main

import (
	"context"
	"os"

	"github.com/toitlang/bridgeup/cmd/bridgeup/analytics"
	"github.com/toitlang/bridgeup/cmd/bridgeup/commands"
)

var version = "v0.3.0"

var buildDate = "unknown"
var buildMode = "development"

// Usage statistics are only reported by builds that set a write key.
var analyticsWriteKey = ""
var analyticsEndpoint = ""

func main() {
	isReleaseBuild := buildMode == "release"

	info := commands.Info{
		Date:      buildDate,
		Version:   version,
		Analytics: analytics.Settings{
			WriteKey: analyticsWriteKey,
			Endpoint: analyticsEndpoint,
		},
	}
	cmd := commands.BridgeupCmd(info, isReleaseBuild)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
