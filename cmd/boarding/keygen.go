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

	"github.com/blinklabs-io/boarding/keystore"
	"github.com/spf13/cobra"
)

func keygenCommand() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "keygen <key file>",
		Short: "Generate a new signing identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ident, err := keystore.GenerateIdentity(description)
			if err != nil {
				return err
			}
			if err := keystore.SaveIdentity(args[0], ident); err != nil {
				return fmt.Errorf("failed to save key file: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ident.Address().String())
			return nil
		},
	}
	cmd.Flags().
		StringVar(&description, "description", "", "description stored in the key file")
	return cmd
}

func addressCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address <key file>",
		Short: "Show the address of a signing identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ident, err := keystore.LoadIdentity(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ident.Address().String())
			return nil
		},
	}
	return cmd
}
