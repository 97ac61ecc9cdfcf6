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

package ledger

import (
	"fmt"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/database"
	"github.com/blinklabs-io/boarding/database/models"
	"github.com/blinklabs-io/boarding/database/types"
	"github.com/blinklabs-io/boarding/registry"
)

// indexRegistryAccounts refreshes the metadata index entries for registry
// accounts written by an instruction
func (ls *LedgerState) indexRegistryAccounts(
	txn *database.Txn,
	written map[address.Address]struct{},
) error {
	for addr := range written {
		acct, err := ls.db.GetAccount(addr, txn)
		if err != nil {
			return err
		}
		switch {
		case registry.IsConfigData(acct.Data):
			cfg, err := registry.DecodeConfig(acct.Data)
			if err != nil {
				return fmt.Errorf("index configuration %s: %w", addr, err)
			}
			err = ls.db.SetRegistryConfigIndex(
				&models.RegistryConfig{
					Address:       addr.Bytes(),
					Administrator: cfg.Administrator.Bytes(),
					Fee:           types.Uint64(cfg.Fee),
				},
				txn,
			)
			if err != nil {
				return err
			}
		case registry.IsListingRequestData(acct.Data):
			req, err := registry.DecodeListingRequest(acct.Data)
			if err != nil {
				return fmt.Errorf("index listing request %s: %w", addr, err)
			}
			err = ls.db.SetListingRequestIndex(
				&models.ListingRequest{
					Address:            addr.Bytes(),
					Config:             req.Config.Bytes(),
					ResourceIdentifier: req.ResourceIdentifier.Bytes(),
					ResourceAuthority:  req.ResourceAuthority.Bytes(),
					Requestor:          req.Requestor.Bytes(),
					Name:               req.Metadata.Name,
					FeeSnapshot:        types.Uint64(req.FeeSnapshot),
					ApprovalState:      uint8(req.ApprovalState),
					Enabled:            req.Enabled,
				},
				txn,
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
