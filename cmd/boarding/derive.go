// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/internal/config"
	"github.com/blinklabs-io/boarding/registry"
	"github.com/spf13/cobra"
)

func deriveCommand() *cobra.Command {
	var programIDFlag string
	cmd := &cobra.Command{
		Use:   "derive <configuration address> <seed address>",
		Short: "Derive the listing request address for a configuration and seed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			programIDStr := programIDFlag
			if programIDStr == "" {
				if cfg := config.FromContext(cmd.Context()); cfg != nil {
					programIDStr = cfg.ProgramID
				}
			}
			programID := registry.DefaultProgramID
			if programIDStr != "" {
				var err error
				programID, err = address.Parse(programIDStr)
				if err != nil {
					return fmt.Errorf("invalid program ID: %w", err)
				}
			}
			configAddr, err := address.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid configuration address: %w", err)
			}
			seed, err := address.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid seed address: %w", err)
			}
			addr, bump, err := registry.DeriveRequestAddress(
				programID,
				configAddr,
				seed,
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", addr.String(), bump)
			return nil
		},
	}
	cmd.Flags().
		StringVar(&programIDFlag, "program-id", "", "registry program ID (defaults to the configured value)")
	return cmd
}
