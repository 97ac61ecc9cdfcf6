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

package registry

import (
	"fmt"
)

func (p *Program) createConfiguration(
	host Host,
	args *CreateConfigurationArgs,
) error {
	if err := validateAdministrator(args.Administrator); err != nil {
		return err
	}
	// A fresh configuration address must sign to prove it is not taken
	if err := requireSigner(host, args.Config, "configuration"); err != nil {
		return err
	}
	acct, err := host.Account(args.Config)
	if err != nil {
		return err
	}
	if acct.HasData() {
		return fmt.Errorf("%w: configuration %s", ErrAlreadyExists, args.Config)
	}
	cfg := &Config{
		Administrator: args.Administrator,
		Fee:           args.Fee,
	}
	data, err := EncodeConfig(cfg)
	if err != nil {
		return err
	}
	if err := host.CreateAccount(args.Config, data); err != nil {
		return err
	}
	p.logger.Info(
		"registry configuration created",
		"config", args.Config.String(),
		"administrator", cfg.Administrator.String(),
		"fee", cfg.Fee,
	)
	host.Emit(
		ConfigurationCreatedEventType,
		ConfigurationEvent{
			Address:       args.Config,
			Administrator: cfg.Administrator,
			Fee:           cfg.Fee,
		},
	)
	return nil
}

func (p *Program) transferAdministration(
	host Host,
	args *TransferAdministrationArgs,
) error {
	if err := validateAdministrator(args.NewAdministrator); err != nil {
		return err
	}
	cfg, err := p.loadConfig(host, args.Config)
	if err != nil {
		return err
	}
	if err := requireSigner(host, cfg.Administrator, "administrator"); err != nil {
		return err
	}
	if cfg.Administrator == args.NewAdministrator {
		return nil
	}
	previous := cfg.Administrator
	cfg.Administrator = args.NewAdministrator
	if err := p.storeConfig(host, args.Config, cfg); err != nil {
		return err
	}
	p.logger.Info(
		"registry administrator transferred",
		"config", args.Config.String(),
		"previous", previous.String(),
		"administrator", cfg.Administrator.String(),
	)
	host.Emit(
		ConfigurationUpdatedEventType,
		ConfigurationEvent{
			Address:       args.Config,
			Administrator: cfg.Administrator,
			Fee:           cfg.Fee,
		},
	)
	return nil
}

func (p *Program) setFee(host Host, args *SetFeeArgs) error {
	cfg, err := p.loadConfig(host, args.Config)
	if err != nil {
		return err
	}
	if err := requireSigner(host, cfg.Administrator, "administrator"); err != nil {
		return err
	}
	cfg.Fee = args.Fee
	if err := p.storeConfig(host, args.Config, cfg); err != nil {
		return err
	}
	p.logger.Info(
		"registry fee updated",
		"config", args.Config.String(),
		"fee", cfg.Fee,
	)
	host.Emit(
		ConfigurationUpdatedEventType,
		ConfigurationEvent{
			Address:       args.Config,
			Administrator: cfg.Administrator,
			Fee:           cfg.Fee,
		},
	)
	return nil
}
