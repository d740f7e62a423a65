// Copyright (C) 2021 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"context"
	"runtime"

	"github.com/segmentio/analytics-go/v3"
	"github.com/spf13/cobra"
	bridgeanalytics "github.com/toitlang/bridgeup/cmd/bridgeup/analytics"
)

type ctxKey string

const (
	ctxKeyAnalytics ctxKey = "analytics"
)

type Info struct {
	Version   string                   `mapstructure:"version" yaml:"version" json:"version"`
	Date      string                   `mapstructure:"date" yaml:"date" json:"date"`
	Analytics bridgeanalytics.Settings `mapstructure:"-" yaml:"-" json:"-"`
}

func setAnalytics(ctx context.Context, client bridgeanalytics.Client) context.Context {
	return context.WithValue(ctx, ctxKeyAnalytics, client)
}

// track enqueues msg if the command runs with an analytics client.
func track(ctx context.Context, msg analytics.Message) {
	if ctx == nil {
		return
	}
	if client, ok := ctx.Value(ctxKeyAnalytics).(bridgeanalytics.Client); ok {
		client.Enqueue(msg)
	}
}

func BridgeupCmd(info Info, isReleaseBuild bool) *cobra.Command {
	analyticsClient, err := bridgeanalytics.GetClient(info.Analytics)
	if err != nil {
		panic(err)
	}

	cmd := &cobra.Command{
		Use:   "bridgeup",
		Short: "Put Bridge, Click and uLoop controllers into their bootloader",
		Long: "bridgeup finds a controller among the serial ports of this computer and switches it\n" +
			"into its bootloader, ready for a firmware update.\n\n" +
			"Bridge controllers are told to enter the bootloader through their command protocol.\n" +
			"Click and uLoop controllers reboot into their bootloader when their port is opened\n" +
			"at 1200 baud.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			properties := analytics.Properties{
				"bridgeup": true,
				"command":  cmd.UseLine(),
				"platform": runtime.GOOS,
			}

			if isReleaseBuild {
				properties.Set("version", info.Version)
			} else {
				properties.Set("version", "development")
			}

			cmd.SetContext(setAnalytics(cmd.Context(), analyticsClient))
			go analyticsClient.Enqueue(analytics.Page{
				Name:       "CLI Execute",
				Properties: properties,
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			analyticsClient.Close()
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "print debug logs to stderr")

	cmd.AddCommand(
		PortsCmd(),
		DevicesCmd(),
		CheckCmd(),
		BootloaderCmd(),
		InstallCmd(),
		ConfigCmd(),
		VersionCmd(info, isReleaseBuild),
	)
	return cmd
}
