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

package ledger_test

import (
	"encoding/json"
	"testing"

	"github.com/blinklabs-io/boarding/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionEncodeDecode(t *testing.T) {
	sender := testIdentity(t, 1)
	recipient := testIdentity(t, 2)
	inst, err := ledger.NewTransferInstruction(
		sender.Address(),
		recipient.Address(),
		42,
	)
	require.NoError(t, err)
	tx, err := ledger.NewTransaction(7, []ledger.Instruction{inst}, sender)
	require.NoError(t, err)
	require.NoError(t, tx.Verify())
	assert.Equal(t, sender.Address(), tx.FeePayer())

	data, err := tx.Encode()
	require.NoError(t, err)
	decoded, err := ledger.DecodeTransaction(data)
	require.NoError(t, err)
	require.NoError(t, decoded.Verify())
	id1, err := tx.ID()
	require.NoError(t, err)
	id2, err := decoded.ID()
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	parsed, err := ledger.ParseTxID(id1.String())
	require.NoError(t, err)
	assert.Equal(t, id1, parsed)
}

func TestTxIDText(t *testing.T) {
	id := ledger.TxID{1, 2, 3}
	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"`+id.String()+`"`, string(data))
	var decoded ledger.TxID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)

	var bad ledger.TxID
	require.Error(t, json.Unmarshal([]byte(`"zz"`), &bad))
	require.Error(t, bad.UnmarshalText([]byte("0102")))
}

func TestTransactionIDDependsOnNonce(t *testing.T) {
	sender := testIdentity(t, 1)
	inst, err := ledger.NewTransferInstruction(sender.Address(), sender.Address(), 1)
	require.NoError(t, err)
	tx1, err := ledger.NewTransaction(1, []ledger.Instruction{inst}, sender)
	require.NoError(t, err)
	tx2, err := ledger.NewTransaction(2, []ledger.Instruction{inst}, sender)
	require.NoError(t, err)
	id1, err := tx1.ID()
	require.NoError(t, err)
	id2, err := tx2.ID()
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}

func TestTransactionVerifyErrors(t *testing.T) {
	sender := testIdentity(t, 1)
	other := testIdentity(t, 2)
	inst, err := ledger.NewTransferInstruction(sender.Address(), other.Address(), 1)
	require.NoError(t, err)

	empty, err := ledger.NewTransaction(1, nil, sender)
	require.NoError(t, err)
	require.ErrorIs(t, empty.Verify(), ledger.ErrEmptyTransaction)

	unsigned, err := ledger.NewTransaction(1, []ledger.Instruction{inst})
	require.NoError(t, err)
	require.ErrorIs(t, unsigned.Verify(), ledger.ErrMissingSignature)

	dup, err := ledger.NewTransaction(1, []ledger.Instruction{inst}, sender, sender)
	require.NoError(t, err)
	require.ErrorIs(t, dup.Verify(), ledger.ErrInvalidTransaction)

	swapped, err := ledger.NewTransaction(1, []ledger.Instruction{inst}, sender, other)
	require.NoError(t, err)
	swapped.Signatures[0], swapped.Signatures[1] = swapped.Signatures[1], swapped.Signatures[0]
	require.ErrorIs(t, swapped.Verify(), ledger.ErrInvalidSignature)
}

func TestDecodeTransactionInvalid(t *testing.T) {
	_, err := ledger.DecodeTransaction([]byte{0xff, 0x00})
	require.ErrorIs(t, err, ledger.ErrInvalidTransaction)
}
