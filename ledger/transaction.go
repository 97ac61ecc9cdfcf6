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
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/boarding/address"
	"github.com/fxamacker/cbor/v2"
)

const (
	// MaxInstructions is the maximum number of instructions in one transaction
	MaxInstructions = 64
	// MaxSigners is the maximum number of signers on one transaction
	MaxSigners = 16
	// MaxTransactionSize is the maximum encoded size of a transaction
	MaxTransactionSize = 64 * 1024
)

var (
	txEncMode cbor.EncMode
	txDecMode cbor.DecMode
)

func init() {
	var err error
	txEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	txDecMode, err = cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: 1024,
		MaxMapPairs:      1024,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// TxID identifies a transaction. It is the SHA-256 hash of the encoded
// message, so the same signed message always has the same ID
type TxID [sha256.Size]byte

func (t TxID) String() string {
	return hex.EncodeToString(t[:])
}

// MarshalText implements encoding.TextMarshaler
func (t TxID) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *TxID) UnmarshalText(text []byte) error {
	tmpID, err := ParseTxID(string(text))
	if err != nil {
		return err
	}
	*t = tmpID
	return nil
}

// ParseTxID decodes a hex transaction ID
func ParseTxID(s string) (TxID, error) {
	var ret TxID
	b, err := hex.DecodeString(s)
	if err != nil {
		return ret, fmt.Errorf("decode transaction ID: %w", err)
	}
	if len(b) != len(ret) {
		return ret, fmt.Errorf("invalid transaction ID length: %d", len(b))
	}
	copy(ret[:], b)
	return ret, nil
}

// Signer produces ed25519 signatures for an address
type Signer interface {
	Address() address.Address
	Sign(msg []byte) []byte
}

// Instruction invokes one program with opaque instruction data
type Instruction struct {
	_       struct{} `cbor:",toarray"`
	Data    []byte
	Program address.Address
}

// Message is the signed body of a transaction. The first signer pays for and
// is recorded against the transaction
type Message struct {
	_            struct{} `cbor:",toarray"`
	Signers      []address.Address
	Instructions []Instruction
	Nonce        uint64
}

// Encode returns the canonical encoding of the message
func (m *Message) Encode() ([]byte, error) {
	return txEncMode.Marshal(m)
}

// Transaction is a message along with one signature per signer, in signer
// order
type Transaction struct {
	_          struct{} `cbor:",toarray"`
	Signatures [][]byte
	Message    Message
}

// NewTransaction builds and signs a transaction. The first signer is the
// fee payer
func NewTransaction(
	nonce uint64,
	instructions []Instruction,
	signers ...Signer,
) (*Transaction, error) {
	tx := &Transaction{
		Message: Message{
			Nonce:        nonce,
			Instructions: instructions,
		},
	}
	for _, signer := range signers {
		tx.Message.Signers = append(tx.Message.Signers, signer.Address())
	}
	msg, err := tx.Message.Encode()
	if err != nil {
		return nil, err
	}
	for _, signer := range signers {
		tx.Signatures = append(tx.Signatures, signer.Sign(msg))
	}
	return tx, nil
}

// ID returns the transaction ID
func (t *Transaction) ID() (TxID, error) {
	msg, err := t.Message.Encode()
	if err != nil {
		return TxID{}, err
	}
	return sha256.Sum256(msg), nil
}

// FeePayer returns the first signer of the transaction
func (t *Transaction) FeePayer() address.Address {
	if len(t.Message.Signers) == 0 {
		return address.Zero
	}
	return t.Message.Signers[0]
}

// Verify checks the transaction structure and every signature
func (t *Transaction) Verify() error {
	if len(t.Message.Instructions) == 0 {
		return ErrEmptyTransaction
	}
	if len(t.Message.Instructions) > MaxInstructions {
		return fmt.Errorf(
			"%w: too many instructions: %d",
			ErrInvalidTransaction,
			len(t.Message.Instructions),
		)
	}
	if len(t.Message.Signers) == 0 {
		return ErrMissingSignature
	}
	if len(t.Message.Signers) > MaxSigners {
		return fmt.Errorf(
			"%w: too many signers: %d",
			ErrInvalidTransaction,
			len(t.Message.Signers),
		)
	}
	if len(t.Signatures) != len(t.Message.Signers) {
		return fmt.Errorf(
			"%w: have %d signatures for %d signers",
			ErrMissingSignature,
			len(t.Signatures),
			len(t.Message.Signers),
		)
	}
	msg, err := t.Message.Encode()
	if err != nil {
		return err
	}
	seen := make(map[address.Address]struct{}, len(t.Message.Signers))
	for idx, signer := range t.Message.Signers {
		if _, ok := seen[signer]; ok {
			return fmt.Errorf(
				"%w: duplicate signer %s",
				ErrInvalidTransaction,
				signer,
			)
		}
		seen[signer] = struct{}{}
		if !signer.Verify(msg, t.Signatures[idx]) {
			return fmt.Errorf("%w: signer %s", ErrInvalidSignature, signer)
		}
	}
	return nil
}

// Encode returns the wire encoding of the transaction
func (t *Transaction) Encode() ([]byte, error) {
	return txEncMode.Marshal(t)
}

// DecodeTransaction decodes a transaction from its wire encoding
func DecodeTransaction(data []byte) (*Transaction, error) {
	if len(data) > MaxTransactionSize {
		return nil, fmt.Errorf(
			"%w: transaction size %d exceeds %d",
			ErrInvalidTransaction,
			len(data),
			MaxTransactionSize,
		)
	}
	var tx Transaction
	if err := txDecMode.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	return &tx, nil
}
