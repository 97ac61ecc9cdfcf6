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
	"gorm.io/gorm/clause"
)

// GetAccount gets an account. It returns nil without error when the account
// does not exist
func (d *MetadataStoreSqlite) GetAccount(
	addr []byte,
	txn types.Txn,
) (*models.Account, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Account{}
	result := db.Where("address = ?", addr).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetAccount creates or updates an account
func (d *MetadataStoreSqlite) SetAccount(
	addr, owner []byte,
	lamports uint64,
	dataLen int,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	account := &models.Account{
		Address:  addr,
		Owner:    owner,
		Lamports: types.Uint64(lamports),
		DataLen:  dataLen,
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns(
			[]string{"owner", "lamports", "data_len"},
		),
	}).Create(account)
	if result.Error != nil {
		return fmt.Errorf("failed to save account: %w", result.Error)
	}
	return nil
}
