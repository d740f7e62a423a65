// Copyright (C) 2021 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/toitlang/bridgeup/cmd/bridgeup/analytics"
	"github.com/toitlang/bridgeup/cmd/bridgeup/directory"
	"github.com/toitlang/bridgeup/cmd/bridgeup/ports"
)

func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configure bridgeup",
		Long:  "Configure the bridgeup command line tool.",
	}

	cmd.AddCommand(
		ConfigAnalyticsCmd(),
		ConfigMatchCmd(),
	)
	return cmd
}

func ConfigAnalyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Configure reporting of anonymous tool usage statistics",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Enable reporting of anonymous tool usage statistics",
			Args:  cobra.NoArgs,
			RunE:  configAnalytics(false),
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Disable reporting of anonymous tool usage statistics",
			Args:  cobra.NoArgs,
			RunE:  configAnalytics(true),
		},
	)
	return cmd
}

func configAnalytics(disable bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := directory.GetUserConfig()
		if err != nil {
			return err
		}
		res, err := analytics.LoadConfig(cfg)
		if err != nil {
			return err
		}
		res.Disabled = disable
		cfg.Set(directory.AnalyticsCfgKey, res)
		return directory.WriteConfig(cfg)
	}
}

func ConfigMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <auto|product|serial>",
		Short: "Configure how devices are matched to serial ports",
		Long: `Configure how devices are matched to serial ports.

  auto     match by product string on Windows and by serial number elsewhere
  product  the device description must be a prefix of the USB product string
  serial   the device serial number must equal the USB serial number

Without argument the current setting is printed.`,
		Args:         cobra.MaximumNArgs(1),
		ValidArgs:    []string{"auto", "product", "serial"},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := directory.GetUserConfig()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				current := cfg.GetString(directory.MatchCfgKey)
				if current == "" {
					current = "auto"
				}
				fmt.Fprintln(cmd.OutOrStdout(), current)
				return nil
			}
			if _, err := ports.MatcherByName(args[0], runtime.GOOS); err != nil {
				return err
			}
			cfg.Set(directory.MatchCfgKey, args[0])
			return directory.WriteConfig(cfg)
		},
	}
	return cmd
}
