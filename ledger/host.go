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
	"github.com/blinklabs-io/boarding/event"
	"github.com/blinklabs-io/boarding/registry"
)

type pendingEvent struct {
	data      any
	eventType event.EventType
}

// txnReader reads accounts within a database transaction
type txnReader struct {
	db  *database.Database
	txn *database.Txn
}

func (r txnReader) Account(addr address.Address) (*registry.AccountInfo, error) {
	acct, err := r.db.GetAccountOrEmpty(addr, r.txn)
	if err != nil {
		return nil, err
	}
	return &registry.AccountInfo{
		Data:     acct.Data,
		Lamports: acct.Lamports,
		Owner:    acct.Owner,
	}, nil
}

// programHost exposes ledger state to a program for one instruction. All
// reads and writes go through the enclosing database transaction
type programHost struct {
	txnReader
	signers   map[address.Address]struct{}
	written   map[address.Address]struct{}
	events    *[]pendingEvent
	programID address.Address
}

func newProgramHost(
	db *database.Database,
	txn *database.Txn,
	signers map[address.Address]struct{},
	events *[]pendingEvent,
	programID address.Address,
) *programHost {
	return &programHost{
		txnReader: txnReader{db: db, txn: txn},
		signers:   signers,
		written:   make(map[address.Address]struct{}),
		events:    events,
		programID: programID,
	}
}

func (h *programHost) IsSigner(addr address.Address) bool {
	_, ok := h.signers[addr]
	return ok
}

func (h *programHost) CreateAccount(addr address.Address, data []byte) error {
	acct, err := h.db.GetAccountOrEmpty(addr, h.txn)
	if err != nil {
		return err
	}
	if acct.HasData() {
		return fmt.Errorf("%w: account %s", registry.ErrAlreadyExists, addr)
	}
	// Lamports already sent to the address are kept as escrow
	if !acct.Owner.IsZero() && acct.Owner != h.programID {
		return fmt.Errorf("%w: %s", ErrAccountNotOwned, addr)
	}
	acct.Owner = h.programID
	acct.Data = data
	if err := h.db.SetAccount(acct, h.txn); err != nil {
		return err
	}
	h.written[addr] = struct{}{}
	return nil
}

func (h *programHost) WriteAccount(addr address.Address, data []byte) error {
	acct, err := h.db.GetAccountOrEmpty(addr, h.txn)
	if err != nil {
		return err
	}
	if acct.Owner != h.programID || !acct.HasData() {
		return fmt.Errorf("%w: %s", ErrAccountNotOwned, addr)
	}
	acct.Data = data
	if err := h.db.SetAccount(acct, h.txn); err != nil {
		return err
	}
	h.written[addr] = struct{}{}
	return nil
}

func (h *programHost) Transfer(
	from address.Address,
	to address.Address,
	amount uint64,
) error {
	src, err := h.db.GetAccountOrEmpty(from, h.txn)
	if err != nil {
		return err
	}
	if src.Owner != h.programID {
		return fmt.Errorf("%w: %s", ErrAccountNotOwned, from)
	}
	if src.Lamports < amount {
		return fmt.Errorf(
			"%w: %s has %d, need %d",
			ErrInsufficientBalance,
			from,
			src.Lamports,
			amount,
		)
	}
	if from == to || amount == 0 {
		return nil
	}
	dst, err := h.db.GetAccountOrEmpty(to, h.txn)
	if err != nil {
		return err
	}
	newBalance, err := addLamports(dst.Lamports, amount)
	if err != nil {
		return fmt.Errorf("%w: %s", err, to)
	}
	src.Lamports -= amount
	dst.Lamports = newBalance
	if err := h.db.SetAccount(src, h.txn); err != nil {
		return err
	}
	return h.db.SetAccount(dst, h.txn)
}

func (h *programHost) Emit(eventType event.EventType, data any) {
	*h.events = append(
		*h.events,
		pendingEvent{eventType: eventType, data: data},
	)
}
