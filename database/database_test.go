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

package database_test

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/database"
	"github.com/blinklabs-io/boarding/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress(label string) address.Address {
	return address.Address(sha256.Sum256([]byte(label)))
}

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestAccountRoundTrip(t *testing.T) {
	db := newTestDatabase(t)
	addr := testAddress("account")
	owner := testAddress("owner")

	_, err := db.GetAccount(addr, nil)
	require.ErrorIs(t, err, database.ErrAccountNotFound)

	empty, err := db.GetAccountOrEmpty(addr, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), empty.Lamports)
	assert.False(t, empty.HasData())

	require.NoError(t, db.SetAccount(
		&database.Account{
			Address:  addr,
			Owner:    owner,
			Lamports: 1500,
			Data:     []byte("state"),
		},
		nil,
	))
	account, err := db.GetAccount(addr, nil)
	require.NoError(t, err)
	assert.Equal(t, owner, account.Owner)
	assert.Equal(t, uint64(1500), account.Lamports)
	assert.Equal(t, []byte("state"), account.Data)

	// Clearing data removes the blob
	account.Data = nil
	require.NoError(t, db.SetAccount(account, nil))
	account, err = db.GetAccount(addr, nil)
	require.NoError(t, err)
	assert.False(t, account.HasData())
}

func TestTxnDoRollsBackOnError(t *testing.T) {
	db := newTestDatabase(t)
	addr := testAddress("atomic")
	errTest := errors.New("test failure")
	txn := db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		if err := db.SetAccount(
			&database.Account{Address: addr, Lamports: 10, Data: []byte("x")},
			txn,
		); err != nil {
			return err
		}
		if err := db.SetListingRequestIndex(
			&models.ListingRequest{Address: addr.Bytes()},
			txn,
		); err != nil {
			return err
		}
		return errTest
	})
	require.ErrorIs(t, err, errTest)

	_, err = db.GetAccount(addr, nil)
	require.ErrorIs(t, err, database.ErrAccountNotFound)
	req, err := db.GetListingRequestIndex(addr, nil)
	require.NoError(t, err)
	assert.Nil(t, req)
}

func TestReadOnlyTxnRejectsWrites(t *testing.T) {
	db := newTestDatabase(t)
	txn := db.Transaction(false)
	defer txn.Release()
	err := db.SetAccount(
		&database.Account{Address: testAddress("ro"), Lamports: 1},
		txn,
	)
	require.Error(t, err)
}

func TestProcessedTransactions(t *testing.T) {
	db := newTestDatabase(t)
	txId := []byte("transaction-id")
	signer := testAddress("signer")

	found, err := db.HasProcessedTransaction(txId, nil)
	require.NoError(t, err)
	assert.False(t, found)

	txn := db.Transaction(true)
	require.NoError(t, txn.Do(func(txn *database.Txn) error {
		return db.AddProcessedTransaction(txId, signer, txn)
	}))
	found, err = db.HasProcessedTransaction(txId, nil)
	require.NoError(t, err)
	assert.True(t, found)

	txn = db.Transaction(true)
	err = txn.Do(func(txn *database.Txn) error {
		return db.AddProcessedTransaction(txId, signer, txn)
	})
	require.ErrorIs(t, err, database.ErrTransactionExists)

	count, err := db.CountProcessedTransactions(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPersistence(t *testing.T) {
	dataDir := t.TempDir()
	addr := testAddress("persist")
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	require.NoError(t, db.SetAccount(
		&database.Account{Address: addr, Lamports: 77, Data: []byte("kept")},
		nil,
	))
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	defer db.Close()
	account, err := db.GetAccount(addr, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), account.Lamports)
	assert.Equal(t, []byte("kept"), account.Data)
}

func TestListingRequestsByConfig(t *testing.T) {
	db := newTestDatabase(t)
	config := testAddress("config")
	txn := db.Transaction(true)
	require.NoError(t, txn.Do(func(txn *database.Txn) error {
		for i, label := range []string{"a", "b", "c"} {
			if err := db.SetListingRequestIndex(
				&models.ListingRequest{
					Address:       testAddress(label).Bytes(),
					Config:        config.Bytes(),
					Requestor:     testAddress("requestor").Bytes(),
					ApprovalState: uint8(i % 2), //nolint:gosec
				},
				txn,
			); err != nil {
				return err
			}
		}
		return nil
	}))
	all, err := db.ListingRequestsByConfig(config, nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	pending := uint8(0)
	filtered, err := db.ListingRequestsByConfig(config, &pending, nil)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
	byRequestor, err := db.ListingRequestsByRequestor(testAddress("requestor"), nil)
	require.NoError(t, err)
	assert.Len(t, byRequestor, 3)
}
