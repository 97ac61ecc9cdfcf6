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

package registry_test

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/event"
	"github.com/blinklabs-io/boarding/registry"
)

func testAddress(label string) address.Address {
	return address.Address(sha256.Sum256([]byte(label)))
}

// testKeyAddress returns the address of an ed25519 key, which is always a
// valid signing identity
func testKeyAddress(label string) address.Address {
	seed := sha256.Sum256([]byte(label))
	pub := ed25519.NewKeyFromSeed(seed[:]).Public().(ed25519.PublicKey)
	var ret address.Address
	copy(ret[:], pub)
	return ret
}

type emittedEvent struct {
	Data any
	Type event.EventType
}

// mockHost is an in-memory Host. Writes go straight to the account map
type mockHost struct {
	accounts  map[address.Address]*registry.AccountInfo
	signers   map[address.Address]bool
	programID address.Address
	events    []emittedEvent
}

func newMockHost(programID address.Address) *mockHost {
	return &mockHost{
		accounts:  make(map[address.Address]*registry.AccountInfo),
		signers:   make(map[address.Address]bool),
		programID: programID,
	}
}

func (h *mockHost) sign(addrs ...address.Address) {
	clear(h.signers)
	for _, addr := range addrs {
		h.signers[addr] = true
	}
}

func (h *mockHost) fund(addr address.Address, amount uint64) {
	acct := h.get(addr)
	acct.Lamports += amount
}

func (h *mockHost) balance(addr address.Address) uint64 {
	if acct, ok := h.accounts[addr]; ok {
		return acct.Lamports
	}
	return 0
}

func (h *mockHost) get(addr address.Address) *registry.AccountInfo {
	acct, ok := h.accounts[addr]
	if !ok {
		acct = &registry.AccountInfo{}
		h.accounts[addr] = acct
	}
	return acct
}

func (h *mockHost) snapshot() map[address.Address]registry.AccountInfo {
	ret := make(map[address.Address]registry.AccountInfo, len(h.accounts))
	for addr, acct := range h.accounts {
		tmp := *acct
		tmp.Data = append([]byte(nil), acct.Data...)
		ret[addr] = tmp
	}
	return ret
}

func (h *mockHost) IsSigner(addr address.Address) bool {
	return h.signers[addr]
}

func (h *mockHost) Account(addr address.Address) (*registry.AccountInfo, error) {
	if acct, ok := h.accounts[addr]; ok {
		tmp := *acct
		return &tmp, nil
	}
	return &registry.AccountInfo{}, nil
}

func (h *mockHost) CreateAccount(addr address.Address, data []byte) error {
	acct := h.get(addr)
	if acct.HasData() {
		return registry.ErrAlreadyExists
	}
	acct.Owner = h.programID
	acct.Data = data
	return nil
}

func (h *mockHost) WriteAccount(addr address.Address, data []byte) error {
	acct := h.get(addr)
	if acct.Owner != h.programID {
		return fmt.Errorf("account %s not owned by program", addr)
	}
	acct.Data = data
	return nil
}

func (h *mockHost) Transfer(from, to address.Address, amount uint64) error {
	src := h.get(from)
	if src.Owner != h.programID {
		return fmt.Errorf("account %s not owned by program", from)
	}
	if src.Lamports < amount {
		return registry.ErrInsufficientBalance
	}
	src.Lamports -= amount
	h.get(to).Lamports += amount
	return nil
}

func (h *mockHost) Emit(eventType event.EventType, data any) {
	h.events = append(h.events, emittedEvent{Type: eventType, Data: data})
}

func (h *mockHost) eventTypes() []event.EventType {
	ret := make([]event.EventType, 0, len(h.events))
	for _, evt := range h.events {
		ret = append(ret, evt.Type)
	}
	return ret
}
