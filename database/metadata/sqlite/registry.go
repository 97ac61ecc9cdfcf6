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

// GetRegistryConfig returns the indexed registry configuration at the given
// address, or nil if there is none
func (d *MetadataStoreSqlite) GetRegistryConfig(
	addr []byte,
	txn types.Txn,
) (*models.RegistryConfig, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.RegistryConfig{}
	result := db.Where("address = ?", addr).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetRegistryConfig creates or updates a registry configuration index entry
func (d *MetadataStoreSqlite) SetRegistryConfig(
	cfg *models.RegistryConfig,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns(
			[]string{"administrator", "fee"},
		),
	}).Create(cfg)
	if result.Error != nil {
		return fmt.Errorf("failed to save registry config: %w", result.Error)
	}
	return nil
}

// GetListingRequest returns the indexed listing request at the given
// address, or nil if there is none
func (d *MetadataStoreSqlite) GetListingRequest(
	addr []byte,
	txn types.Txn,
) (*models.ListingRequest, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.ListingRequest{}
	result := db.Where("address = ?", addr).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetListingRequest creates or updates a listing request index entry
func (d *MetadataStoreSqlite) SetListingRequest(
	req *models.ListingRequest,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns(
			[]string{
				"resource_authority",
				"name",
				"fee_snapshot",
				"approval_state",
				"enabled",
			},
		),
	}).Create(req)
	if result.Error != nil {
		return fmt.Errorf("failed to save listing request: %w", result.Error)
	}
	return nil
}

// GetListingRequestsByConfig returns the listing requests governed by a
// registry configuration, ordered by creation. A nil state returns requests
// in every approval state
func (d *MetadataStoreSqlite) GetListingRequestsByConfig(
	config []byte,
	state *uint8,
	txn types.Txn,
) ([]models.ListingRequest, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.ListingRequest
	query := db.Where("config = ?", config)
	if state != nil {
		query = query.Where("approval_state = ?", *state)
	}
	if result := query.Order("id").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetListingRequestsByRequestor returns the listing requests created by an
// address, ordered by creation
func (d *MetadataStoreSqlite) GetListingRequestsByRequestor(
	requestor []byte,
	txn types.Txn,
) ([]models.ListingRequest, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.ListingRequest
	result := db.Where("requestor = ?", requestor).Order("id").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
