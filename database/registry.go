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
	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/database/models"
)

// GetRegistryConfigIndex returns the index entry for a registry
// configuration, or nil if there is none
func (d *Database) GetRegistryConfigIndex(
	addr address.Address,
	txn *Txn,
) (*models.RegistryConfig, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetRegistryConfig(addr.Bytes(), txn.Metadata())
}

// SetRegistryConfigIndex saves the index entry for a registry configuration
func (d *Database) SetRegistryConfigIndex(
	cfg *models.RegistryConfig,
	txn *Txn,
) error {
	return d.metadata.SetRegistryConfig(cfg, txn.Metadata())
}

// GetListingRequestIndex returns the index entry for a listing request, or
// nil if there is none
func (d *Database) GetListingRequestIndex(
	addr address.Address,
	txn *Txn,
) (*models.ListingRequest, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetListingRequest(addr.Bytes(), txn.Metadata())
}

// SetListingRequestIndex saves the index entry for a listing request
func (d *Database) SetListingRequestIndex(
	req *models.ListingRequest,
	txn *Txn,
) error {
	return d.metadata.SetListingRequest(req, txn.Metadata())
}

// ListingRequestsByConfig returns the listing requests governed by a
// registry configuration, optionally filtered by approval state
func (d *Database) ListingRequestsByConfig(
	config address.Address,
	state *uint8,
	txn *Txn,
) ([]models.ListingRequest, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetListingRequestsByConfig(
		config.Bytes(),
		state,
		txn.Metadata(),
	)
}

// ListingRequestsByRequestor returns the listing requests created by an
// address
func (d *Database) ListingRequestsByRequestor(
	requestor address.Address,
	txn *Txn,
) ([]models.ListingRequest, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetListingRequestsByRequestor(
		requestor.Bytes(),
		txn.Metadata(),
	)
}
