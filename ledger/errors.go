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
	"errors"

	"github.com/blinklabs-io/boarding/registry"
)

var (
	ErrDuplicateTransaction = errors.New("duplicate transaction")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrMissingSignature     = errors.New("missing signature")
	ErrUnknownProgram       = errors.New("unknown program")
	ErrEmptyTransaction     = errors.New("transaction has no instructions")
	ErrAccountNotOwned      = errors.New("account is not owned by the executing program")
	ErrBalanceOverflow      = errors.New("balance overflow")
	ErrAirdropDisabled      = errors.New("airdrop is disabled")
	ErrAirdropLimit         = errors.New("airdrop amount exceeds limit")
	ErrInvalidTransaction   = errors.New("invalid transaction")

	// ErrInsufficientBalance is shared with the registry so callers can
	// match either source with a single errors.Is check
	ErrInsufficientBalance = registry.ErrInsufficientBalance
)
