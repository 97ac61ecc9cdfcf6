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
	"github.com/blinklabs-io/boarding/event"
)

const (
	TransactionEventType event.EventType = "ledger.transaction"
	AirdropEventType     event.EventType = "ledger.airdrop"
)

// TransactionEvent is published after a transaction commits
type TransactionEvent struct {
	Signers          []address.Address
	ID               TxID
	InstructionCount int
}

// AirdropEvent is published after an airdrop commits
type AirdropEvent struct {
	Address  address.Address
	Lamports uint64
}
