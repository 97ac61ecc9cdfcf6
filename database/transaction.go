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
	"time"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/database/metadata/sqlite"
)

// ErrTransactionExists is returned when a transaction ID has already been
// recorded
var ErrTransactionExists = sqlite.ErrTransactionExists

// HasProcessedTransaction reports whether a transaction ID has been recorded
func (d *Database) HasProcessedTransaction(txId []byte, txn *Txn) (bool, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	tmpTx, err := d.metadata.GetProcessedTransaction(txId, txn.Metadata())
	if err != nil {
		return false, err
	}
	return tmpTx != nil, nil
}

// AddProcessedTransaction records a transaction ID along with its fee payer
func (d *Database) AddProcessedTransaction(
	txId []byte,
	signer address.Address,
	txn *Txn,
) error {
	return d.metadata.AddProcessedTransaction(
		txId,
		signer.Bytes(),
		time.Now().UnixMilli(),
		txn.Metadata(),
	)
}

// CountProcessedTransactions returns the number of recorded transactions
func (d *Database) CountProcessedTransactions(txn *Txn) (int64, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.CountProcessedTransactions(txn.Metadata())
}
