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
	"bytes"
	"context"
	"testing"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/database"
	"github.com/blinklabs-io/boarding/event"
	"github.com/blinklabs-io/boarding/keystore"
	"github.com/blinklabs-io/boarding/ledger"
	"github.com/blinklabs-io/boarding/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity(t *testing.T, label byte) *keystore.Identity {
	t.Helper()
	ident, err := keystore.NewIdentity(bytes.Repeat([]byte{label}, 32), "")
	require.NoError(t, err)
	return ident
}

type testEnv struct {
	ls         *ledger.LedgerState
	bus        *event.EventBus
	funder     *keystore.Identity
	config     *keystore.Identity
	admin      *keystore.Identity
	requestor  *keystore.Identity
	collection address.Address
	request    address.Address
	nonce      uint64
}

func newTestLedger(t *testing.T, opts ...registry.ProgramOptionFunc) *testEnv {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	bus := event.NewEventBus(nil, nil)
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
		Database:      db,
		EventBus:      bus,
		Registry:      registry.NewProgram(opts...),
		EnableAirdrop: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		bus.Stop()
		_ = ls.Close()
	})
	env := &testEnv{
		ls:         ls,
		bus:        bus,
		funder:     testIdentity(t, 1),
		config:     testIdentity(t, 2),
		admin:      testIdentity(t, 3),
		requestor:  testIdentity(t, 4),
		collection: testIdentity(t, 5).Address(),
	}
	env.request, _, err = registry.DeriveRequestAddress(
		ls.Registry().ID(),
		env.config.Address(),
		env.collection,
	)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, ls.Airdrop(ctx, env.funder.Address(), 1_000_000))
	require.NoError(t, ls.Airdrop(ctx, env.requestor.Address(), 1_000_000))
	return env
}

func (e *testEnv) registryInstruction(
	t *testing.T,
	inst *registry.Instruction,
) ledger.Instruction {
	t.Helper()
	data, err := inst.Encode()
	require.NoError(t, err)
	return ledger.Instruction{Program: e.ls.Registry().ID(), Data: data}
}

func (e *testEnv) submit(
	t *testing.T,
	instructions []ledger.Instruction,
	signers ...ledger.Signer,
) (*ledger.Transaction, error) {
	t.Helper()
	e.nonce++
	tx, err := ledger.NewTransaction(e.nonce, instructions, signers...)
	require.NoError(t, err)
	_, err = e.ls.SubmitTransaction(context.Background(), tx)
	return tx, err
}

func (e *testEnv) createConfiguration(t *testing.T, fee uint64) {
	t.Helper()
	_, err := e.submit(
		t,
		[]ledger.Instruction{
			e.registryInstruction(t, &registry.Instruction{
				CreateConfiguration: &registry.CreateConfigurationArgs{
					Config:        e.config.Address(),
					Administrator: e.admin.Address(),
					Fee:           fee,
				},
			}),
		},
		e.funder,
		e.config,
	)
	require.NoError(t, err)
}

func (e *testEnv) createRequestInstructions(
	t *testing.T,
	escrow uint64,
) []ledger.Instruction {
	t.Helper()
	fund, err := ledger.NewTransferInstruction(
		e.requestor.Address(),
		e.request,
		escrow,
	)
	require.NoError(t, err)
	return []ledger.Instruction{
		e.registryInstruction(t, &registry.Instruction{
			CreateRequest: &registry.CreateRequestArgs{
				Config:             e.config.Address(),
				Request:            e.request,
				Requestor:          e.requestor.Address(),
				Seed:               e.collection,
				ResourceIdentifier: e.collection,
				ResourceAuthority:  e.requestor.Address(),
				Metadata: registry.Metadata{
					Name:        "Test Collection",
					TokenType:   "NFT",
					RequestType: "listing",
				},
			},
		}),
		fund,
	}
}

func (e *testEnv) decide(t *testing.T, approved bool) error {
	t.Helper()
	_, err := e.submit(
		t,
		[]ledger.Instruction{
			e.registryInstruction(t, &registry.Instruction{
				Decide: &registry.DecideArgs{
					Request:  e.request,
					Config:   e.config.Address(),
					Approved: approved,
				},
			}),
		},
		e.admin,
	)
	return err
}

func (e *testEnv) balance(t *testing.T, addr address.Address) uint64 {
	t.Helper()
	ret, err := e.ls.Balance(addr)
	require.NoError(t, err)
	return ret
}

func TestApproveThenRefund(t *testing.T) {
	env := newTestLedger(t)
	env.createConfiguration(t, 100)
	_, err := env.submit(t, env.createRequestInstructions(t, 150), env.requestor)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), env.balance(t, env.request))

	require.NoError(t, env.decide(t, true))
	assert.Equal(t, uint64(100), env.balance(t, env.admin.Address()))
	assert.Equal(t, uint64(50), env.balance(t, env.request))
	approved, err := env.ls.IsApproved(env.request)
	require.NoError(t, err)
	assert.True(t, approved)

	_, err = env.submit(
		t,
		[]ledger.Instruction{
			env.registryInstruction(t, &registry.Instruction{
				Refund: &registry.RefundArgs{Request: env.request},
			}),
		},
		env.requestor,
	)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), env.balance(t, env.request))
	assert.Equal(
		t,
		uint64(1_000_000-150+50),
		env.balance(t, env.requestor.Address()),
	)
	// Record data survives the refund
	info, err := env.ls.GetListingRequest(env.request)
	require.NoError(t, err)
	assert.Equal(t, registry.ApprovalStateApproved, info.Request.ApprovalState)
	assert.Equal(t, uint64(0), info.Balance)
}

func TestDoubleApproveInsufficientBalance(t *testing.T) {
	env := newTestLedger(t)
	env.createConfiguration(t, 100)
	_, err := env.submit(t, env.createRequestInstructions(t, 100), env.requestor)
	require.NoError(t, err)

	require.NoError(t, env.decide(t, true))
	err = env.decide(t, true)
	require.ErrorIs(t, err, registry.ErrInsufficientBalance)
	assert.Equal(t, uint64(100), env.balance(t, env.admin.Address()))
	assert.Equal(t, uint64(0), env.balance(t, env.request))
}

func TestDenyRefundsFee(t *testing.T) {
	env := newTestLedger(t)
	env.createConfiguration(t, 100)
	_, err := env.submit(t, env.createRequestInstructions(t, 100), env.requestor)
	require.NoError(t, err)
	require.NoError(t, env.decide(t, false))
	assert.Equal(t, uint64(1_000_000), env.balance(t, env.requestor.Address()))
	assert.Equal(t, uint64(0), env.balance(t, env.admin.Address()))
}

func TestTransactionIsAtomic(t *testing.T) {
	env := newTestLedger(t)
	env.createConfiguration(t, 100)
	// Escrow funding exceeds the requestor's balance
	_, err := env.submit(
		t,
		env.createRequestInstructions(t, 2_000_000),
		env.requestor,
	)
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	_, err = env.ls.GetListingRequest(env.request)
	require.ErrorIs(t, err, registry.ErrNotFound)
	reqs, err := env.ls.ListingRequestsByConfig(env.config.Address(), nil)
	require.NoError(t, err)
	assert.Empty(t, reqs)
	assert.Equal(t, uint64(1_000_000), env.balance(t, env.requestor.Address()))
}

func TestDuplicateTransaction(t *testing.T) {
	env := newTestLedger(t)
	env.createConfiguration(t, 100)
	_, err := env.submit(t, env.createRequestInstructions(t, 300), env.requestor)
	require.NoError(t, err)

	env.nonce++
	tx, err := ledger.NewTransaction(
		env.nonce,
		[]ledger.Instruction{
			env.registryInstruction(t, &registry.Instruction{
				Decide: &registry.DecideArgs{
					Request:  env.request,
					Config:   env.config.Address(),
					Approved: true,
				},
			}),
		},
		env.admin,
	)
	require.NoError(t, err)
	ctx := context.Background()
	txID, err := env.ls.SubmitTransaction(ctx, tx)
	require.NoError(t, err)
	// Replaying the signed decision must not move the fee again
	_, err = env.ls.SubmitTransaction(ctx, tx)
	require.ErrorIs(t, err, ledger.ErrDuplicateTransaction)
	assert.Equal(t, uint64(100), env.balance(t, env.admin.Address()))
	found, err := env.ls.HasTransaction(txID)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestInvalidSignature(t *testing.T) {
	env := newTestLedger(t)
	fund, err := ledger.NewTransferInstruction(
		env.funder.Address(),
		env.admin.Address(),
		10,
	)
	require.NoError(t, err)
	tx, err := ledger.NewTransaction(1, []ledger.Instruction{fund}, env.funder)
	require.NoError(t, err)
	tx.Signatures[0][0] ^= 0xff
	_, err = env.ls.SubmitTransaction(context.Background(), tx)
	require.ErrorIs(t, err, ledger.ErrInvalidSignature)
}

func TestSystemTransferRequiresSender(t *testing.T) {
	env := newTestLedger(t)
	fund, err := ledger.NewTransferInstruction(
		env.funder.Address(),
		env.admin.Address(),
		10,
	)
	require.NoError(t, err)
	_, err = env.submit(t, []ledger.Instruction{fund}, env.admin)
	require.ErrorIs(t, err, ledger.ErrMissingSignature)
}

func TestEscrowCannotBeMovedBySystemProgram(t *testing.T) {
	env := newTestLedger(t)
	env.createConfiguration(t, 100)
	// The configuration account is owned by the registry
	drain, err := ledger.NewTransferInstruction(
		env.config.Address(),
		env.funder.Address(),
		0,
	)
	require.NoError(t, err)
	_, err = env.submit(t, []ledger.Instruction{drain}, env.config)
	require.ErrorIs(t, err, ledger.ErrAccountNotOwned)
}

func TestUnknownProgram(t *testing.T) {
	env := newTestLedger(t)
	_, err := env.submit(
		t,
		[]ledger.Instruction{{Program: env.admin.Address(), Data: []byte{1}}},
		env.funder,
	)
	require.ErrorIs(t, err, ledger.ErrUnknownProgram)
}

func TestListingRequestQueries(t *testing.T) {
	env := newTestLedger(t)
	env.createConfiguration(t, 100)
	_, err := env.submit(t, env.createRequestInstructions(t, 150), env.requestor)
	require.NoError(t, err)

	pending := registry.ApprovalStatePending
	approved := registry.ApprovalStateApproved
	reqs, err := env.ls.ListingRequestsByConfig(env.config.Address(), &pending)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, env.request, reqs[0].Address)
	assert.Equal(t, uint64(150), reqs[0].Balance)

	require.NoError(t, env.decide(t, true))
	reqs, err = env.ls.ListingRequestsByConfig(env.config.Address(), &pending)
	require.NoError(t, err)
	assert.Empty(t, reqs)
	reqs, err = env.ls.ListingRequestsByConfig(env.config.Address(), &approved)
	require.NoError(t, err)
	require.Len(t, reqs, 1)

	reqs, err = env.ls.ListingRequestsByRequestor(env.requestor.Address())
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "Test Collection", reqs[0].Request.Metadata.Name)

	cfg, err := env.ls.GetConfig(env.config.Address())
	require.NoError(t, err)
	assert.Equal(t, env.admin.Address(), cfg.Administrator)
	assert.Equal(t, uint64(100), cfg.Fee)

	count, err := env.ls.TransactionCount()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	env := newTestLedger(t)
	_, decidedCh := env.bus.Subscribe(registry.RequestDecidedEventType)
	_, txCh := env.bus.Subscribe(ledger.TransactionEventType)
	env.createConfiguration(t, 100)
	_, err := env.submit(t, env.createRequestInstructions(t, 100), env.requestor)
	require.NoError(t, err)
	require.NoError(t, env.decide(t, true))

	evt := <-decidedCh
	decided, ok := evt.Data.(registry.RequestDecidedEvent)
	require.True(t, ok)
	assert.Equal(t, env.request, decided.Address)
	assert.Equal(t, registry.ApprovalStateApproved, decided.State)
	assert.Equal(t, uint64(100), decided.Fee)

	// A failed transaction publishes nothing
	require.Error(t, env.decide(t, true))
	for range 3 {
		evt := <-txCh
		_, ok := evt.Data.(ledger.TransactionEvent)
		require.True(t, ok)
	}
	select {
	case evt := <-txCh:
		t.Fatalf("unexpected event: %v", evt)
	case evt := <-decidedCh:
		t.Fatalf("unexpected event: %v", evt)
	default:
	}
}

func TestAirdropLimits(t *testing.T) {
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{Database: db})
	require.NoError(t, err)
	defer ls.Close()
	ctx := context.Background()
	addr := testIdentity(t, 9).Address()
	require.ErrorIs(t, ls.Airdrop(ctx, addr, 1), ledger.ErrAirdropDisabled)

	db2, err := database.New(&database.Config{})
	require.NoError(t, err)
	ls2, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
		Database:      db2,
		EnableAirdrop: true,
		AirdropLimit:  500,
	})
	require.NoError(t, err)
	defer ls2.Close()
	require.ErrorIs(t, ls2.Airdrop(ctx, addr, 501), ledger.ErrAirdropLimit)
	require.NoError(t, ls2.Airdrop(ctx, addr, 500))
	balance, err := ls2.Balance(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), balance)
}
