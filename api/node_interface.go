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
	"context"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/ledger"
	"github.com/blinklabs-io/boarding/registry"
)

// Node is the interface that the API server uses to query and update the
// ledger. It is satisfied by *ledger.LedgerState
type Node interface {
	Registry() *registry.Program
	Account(addr address.Address) (*registry.AccountInfo, error)
	GetConfig(addr address.Address) (*registry.Config, error)
	GetListingRequest(addr address.Address) (*ledger.ListingRequestInfo, error)
	IsApproved(addr address.Address) (bool, error)
	ListingRequestsByConfig(
		config address.Address,
		state *registry.ApprovalState,
	) ([]ledger.ListingRequestInfo, error)
	ListingRequestsByRequestor(
		requestor address.Address,
	) ([]ledger.ListingRequestInfo, error)
	SubmitTransactionBytes(ctx context.Context, data []byte) (ledger.TxID, error)
	HasTransaction(txID ledger.TxID) (bool, error)
	Airdrop(ctx context.Context, to address.Address, lamports uint64) error
}

var _ Node = (*ledger.LedgerState)(nil)
