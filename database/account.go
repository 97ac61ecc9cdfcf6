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

package database

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/database/models"
	"github.com/blinklabs-io/boarding/database/types"
)

// ErrAccountNotFound is returned when an address has never been written
var ErrAccountNotFound = models.ErrAccountNotFound

// Account is the full state of an address: its balance, owning program and
// opaque data
type Account struct {
	Data     []byte
	Lamports uint64
	Address  address.Address
	Owner    address.Address
}

// HasData reports whether the account holds program data
func (a *Account) HasData() bool {
	return len(a.Data) > 0
}

// GetAccount returns the account at the given address. It returns
// ErrAccountNotFound if the address has never been funded or written
func (d *Database) GetAccount(
	addr address.Address,
	txn *Txn,
) (*Account, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	tmpAccount, err := d.metadata.GetAccount(addr.Bytes(), txn.Metadata())
	if err != nil {
		return nil, err
	}
	if tmpAccount == nil {
		return nil, ErrAccountNotFound
	}
	ret := &Account{
		Address:  addr,
		Lamports: uint64(tmpAccount.Lamports),
	}
	if len(tmpAccount.Owner) > 0 {
		owner, err := address.New(tmpAccount.Owner)
		if err != nil {
			return nil, fmt.Errorf("invalid owner for account %s: %w", addr, err)
		}
		ret.Owner = owner
	}
	if tmpAccount.DataLen > 0 {
		data, err := d.blob.Get(
			txn.Blob(),
			types.AccountDataBlobKey(addr.Bytes()),
		)
		if err != nil {
			return nil, fmt.Errorf("get account data %s: %w", addr, err)
		}
		ret.Data = data
	}
	return ret, nil
}

// GetAccountOrEmpty returns the account at the given address, or an empty
// account with a zero balance if it doesn't exist
func (d *Database) GetAccountOrEmpty(
	addr address.Address,
	txn *Txn,
) (*Account, error) {
	ret, err := d.GetAccount(addr, txn)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return &Account{Address: addr}, nil
		}
		return nil, err
	}
	return ret, nil
}

// SetAccount saves the balance, owner and data of an account
func (d *Database) SetAccount(account *Account, txn *Txn) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.SetAccount(account, txn)
		})
	}
	if !txn.ReadWrite() {
		return types.ErrReadOnlyTxn
	}
	var owner []byte
	if !account.Owner.IsZero() {
		owner = account.Owner.Bytes()
	}
	blobKey := types.AccountDataBlobKey(account.Address.Bytes())
	if account.HasData() {
		if err := d.blob.Set(txn.Blob(), blobKey, account.Data); err != nil {
			return fmt.Errorf("set account data %s: %w", account.Address, err)
		}
	} else {
		if err := d.blob.Delete(txn.Blob(), blobKey); err != nil {
			return fmt.Errorf("delete account data %s: %w", account.Address, err)
		}
	}
	return d.metadata.SetAccount(
		account.Address.Bytes(),
		owner,
		account.Lamports,
		len(account.Data),
		txn.Metadata(),
	)
}
