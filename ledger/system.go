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
	"math"

	"github.com/blinklabs-io/boarding/address"
)

// SystemProgramID is the address of the built-in program that moves
// lamports between accounts it does not assign to other programs
var SystemProgramID = address.Zero

// SystemInstruction is the instruction data for the system program
type SystemInstruction struct {
	Transfer *TransferArgs `cbor:"1,keyasint,omitempty"`
}

// TransferArgs moves lamports from a signing account to any account
type TransferArgs struct {
	From     address.Address `cbor:"1,keyasint"`
	To       address.Address `cbor:"2,keyasint"`
	Lamports uint64          `cbor:"3,keyasint"`
}

// NewTransferInstruction returns a system program instruction that moves
// lamports. This is how listing request escrow is funded
func NewTransferInstruction(
	from address.Address,
	to address.Address,
	lamports uint64,
) (Instruction, error) {
	data, err := txEncMode.Marshal(
		&SystemInstruction{
			Transfer: &TransferArgs{From: from, To: to, Lamports: lamports},
		},
	)
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Program: SystemProgramID, Data: data}, nil
}

// processSystemInstruction executes a system program instruction
func (ls *LedgerState) processSystemInstruction(
	host *programHost,
	data []byte,
) error {
	var inst SystemInstruction
	if err := txDecMode.Unmarshal(data, &inst); err != nil {
		return fmt.Errorf("%w: system instruction: %w", ErrInvalidTransaction, err)
	}
	if inst.Transfer == nil {
		return fmt.Errorf("%w: empty system instruction", ErrInvalidTransaction)
	}
	args := inst.Transfer
	if !host.IsSigner(args.From) {
		return fmt.Errorf("%w: %s", ErrMissingSignature, args.From)
	}
	if err := host.Transfer(args.From, args.To, args.Lamports); err != nil {
		return err
	}
	ls.metrics.transferredLamports.Add(float64(args.Lamports))
	return nil
}

func addLamports(balance uint64, amount uint64) (uint64, error) {
	if balance > math.MaxUint64-amount {
		return 0, ErrBalanceOverflow
	}
	return balance + amount, nil
}
