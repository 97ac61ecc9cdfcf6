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

package api

import (
	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/ledger"
	"github.com/blinklabs-io/boarding/registry"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// AccountResponse represents an account
type AccountResponse struct {
	Address  address.Address `json:"address"`
	Owner    address.Address `json:"owner"`
	Lamports uint64          `json:"lamports"`
	DataLen  int             `json:"data_len"`
}

// ConfigResponse represents a registry configuration
type ConfigResponse struct {
	Address       address.Address `json:"address"`
	Administrator address.Address `json:"administrator"`
	Fee           uint64          `json:"fee"`
}

// ListingRequestResponse represents a listing request along with its escrow
// balance
type ListingRequestResponse struct {
	*registry.ListingRequest
	Address address.Address `json:"address"`
	Balance uint64          `json:"balance"`
}

func toListingRequestResponse(
	info *ledger.ListingRequestInfo,
) ListingRequestResponse {
	return ListingRequestResponse{
		ListingRequest: info.Request,
		Address:        info.Address,
		Balance:        info.Balance,
	}
}

// ApprovedResponse is returned by GET /api/v1/requests/{address}/approved
type ApprovedResponse struct {
	Address  address.Address `json:"address"`
	Approved bool            `json:"approved"`
}

// DeriveResponse is returned by GET /api/v1/derive
type DeriveResponse struct {
	Address address.Address `json:"address"`
	Config  address.Address `json:"config"`
	Seed    address.Address `json:"seed"`
	Bump    uint8           `json:"bump"`
}

// SubmitTransactionRequest carries a hex encoded transaction
type SubmitTransactionRequest struct {
	Transaction string `json:"transaction"`
}

// TransactionResponse reports a transaction ID and whether it committed
type TransactionResponse struct {
	ID        ledger.TxID `json:"id"`
	Committed bool        `json:"committed"`
}

// AirdropRequest credits lamports to an address
type AirdropRequest struct {
	Address  address.Address `json:"address"`
	Lamports uint64          `json:"lamports"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}
