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

package sqlite

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/boarding/database/models"
	"github.com/blinklabs-io/boarding/database/types"
	"gorm.io/gorm"
)

// ErrTransactionExists is returned when recording a transaction ID that has
// already been processed
var ErrTransactionExists = errors.New("transaction already processed")

// GetProcessedTransaction returns the record of a processed transaction, or
// nil if it has not been processed
func (d *MetadataStoreSqlite) GetProcessedTransaction(
	txId []byte,
	txn types.Txn,
) (*models.ProcessedTransaction, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.ProcessedTransaction{}
	result := db.Where("tx_id = ?", txId).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// AddProcessedTransaction records a processed transaction
func (d *MetadataStoreSqlite) AddProcessedTransaction(
	txId, signer []byte,
	processedAt int64,
	txn types.Txn,
) error {
	existing, err := d.GetProcessedTransaction(txId, txn)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrTransactionExists
	}
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	tmpItem := &models.ProcessedTransaction{
		TxId:        txId,
		Signer:      signer,
		ProcessedAt: processedAt,
	}
	if result := db.Create(tmpItem); result.Error != nil {
		return fmt.Errorf(
			"failed to record processed transaction: %w",
			result.Error,
		)
	}
	return nil
}

// CountProcessedTransactions returns the number of processed transactions
func (d *MetadataStoreSqlite) CountProcessedTransactions(
	txn types.Txn,
) (int64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	result := db.Model(&models.ProcessedTransaction{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
