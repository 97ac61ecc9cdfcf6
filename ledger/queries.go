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
	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/database/models"
	"github.com/blinklabs-io/boarding/registry"
)

// ListingRequestInfo is a listing request along with its address and escrow
// balance
type ListingRequestInfo struct {
	Request *registry.ListingRequest
	Address address.Address
	Balance uint64
}

// Account returns the committed state of an account. Missing accounts are
// returned empty
func (ls *LedgerState) Account(addr address.Address) (*registry.AccountInfo, error) {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	return txnReader{db: ls.db, txn: txn}.Account(addr)
}

// Balance returns the lamport balance of an account
func (ls *LedgerState) Balance(addr address.Address) (uint64, error) {
	acct, err := ls.Account(addr)
	if err != nil {
		return 0, err
	}
	return acct.Lamports, nil
}

// GetConfig returns the registry configuration at addr
func (ls *LedgerState) GetConfig(addr address.Address) (*registry.Config, error) {
	return ls.registry.GetConfig(ls, addr)
}

// GetListingRequest returns the listing request at addr
func (ls *LedgerState) GetListingRequest(
	addr address.Address,
) (*ListingRequestInfo, error) {
	req, balance, err := ls.registry.GetListingRequest(ls, addr)
	if err != nil {
		return nil, err
	}
	return &ListingRequestInfo{Request: req, Address: addr, Balance: balance}, nil
}

// IsApproved reports whether the listing request at addr is approved
func (ls *LedgerState) IsApproved(addr address.Address) (bool, error) {
	return ls.registry.IsApproved(ls, addr)
}

// ListingRequestsByConfig returns the listing requests governed by a
// configuration, optionally filtered by approval state
func (ls *LedgerState) ListingRequestsByConfig(
	config address.Address,
	state *registry.ApprovalState,
) ([]ListingRequestInfo, error) {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	var stateFilter *uint8
	if state != nil {
		tmpState := uint8(*state)
		stateFilter = &tmpState
	}
	entries, err := ls.db.ListingRequestsByConfig(config, stateFilter, txn)
	if err != nil {
		return nil, err
	}
	return ls.loadListingRequests(txnReader{db: ls.db, txn: txn}, entries)
}

// ListingRequestsByRequestor returns the listing requests created by an
// address
func (ls *LedgerState) ListingRequestsByRequestor(
	requestor address.Address,
) ([]ListingRequestInfo, error) {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	entries, err := ls.db.ListingRequestsByRequestor(requestor, txn)
	if err != nil {
		return nil, err
	}
	return ls.loadListingRequests(txnReader{db: ls.db, txn: txn}, entries)
}

func (ls *LedgerState) loadListingRequests(
	r registry.AccountReader,
	entries []models.ListingRequest,
) ([]ListingRequestInfo, error) {
	ret := make([]ListingRequestInfo, 0, len(entries))
	for _, entry := range entries {
		addr, err := address.New(entry.Address)
		if err != nil {
			return nil, err
		}
		req, balance, err := ls.registry.GetListingRequest(r, addr)
		if err != nil {
			return nil, err
		}
		ret = append(
			ret,
			ListingRequestInfo{Request: req, Address: addr, Balance: balance},
		)
	}
	return ret, nil
}

// HasTransaction reports whether a transaction has been committed
func (ls *LedgerState) HasTransaction(txID TxID) (bool, error) {
	return ls.db.HasProcessedTransaction(txID[:], nil)
}

// TransactionCount returns the number of committed transactions
func (ls *LedgerState) TransactionCount() (int64, error) {
	return ls.db.CountProcessedTransactions(nil)
}
