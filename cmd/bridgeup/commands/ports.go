// Copyright (C) 2021 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toitlang/bridgeup/cmd/bridgeup/ports"
)

func PortsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "List the serial ports of this computer",
		Long: "List the serial ports of this computer together with the USB product string and\n" +
			"serial number they report. These are the values bridgeup matches devices against.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := cmd.Flags().GetBool("all")
			if err != nil {
				return err
			}

			enc, err := parseOutputFlag(cmd)
			if err != nil {
				return err
			}

			list, err := ports.List(ports.SystemEnumerator{}, all)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				return fmt.Errorf("no serial ports detected. Is the device connected with a data cable?")
			}
			return enc.Encode(portList(list))
		},
	}

	cmd.Flags().Bool("all", false, "if set, will show ports that are not USB backed as well")
	addOutputFlag(cmd)
	return cmd
}

type portList []ports.Candidate

func (l portList) Elements() []Short {
	res := make([]Short, len(l))
	for i, c := range l {
		res[i] = portEntry(c)
	}
	return res
}

type portEntry ports.Candidate

func (p portEntry) Short() string {
	fields := []string{p.Name}
	if p.Product != "" {
		fields = append(fields, p.Product)
	}
	if p.SerialNumber != "" {
		fields = append(fields, "serial: "+p.SerialNumber)
	}
	if !p.IsUSB {
		fields = append(fields, "(not USB)")
	}
	return strings.Join(fields, "\t")
}
