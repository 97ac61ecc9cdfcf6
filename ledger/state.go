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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/database"
	"github.com/blinklabs-io/boarding/event"
	"github.com/blinklabs-io/boarding/registry"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/boarding/ledger"

// Program is an on-ledger program that instructions can invoke
type Program interface {
	ID() address.Address
	Process(host registry.Host, data []byte) error
}

type LedgerStateConfig struct {
	Logger       *slog.Logger
	Database     *database.Database
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	Registry     *registry.Program
	// EnableAirdrop allows lamports to be created out of thin air. This is
	// only meant for local development
	EnableAirdrop bool
	// AirdropLimit caps a single airdrop. Zero means no limit
	AirdropLimit uint64
}

// LedgerState executes signed transactions against the account database.
// Write transactions are serialized; queries run concurrently
type LedgerState struct {
	writeMutex sync.Mutex
	config     LedgerStateConfig
	db         *database.Database
	registry   *registry.Program
	programs   map[address.Address]Program
	metrics    stateMetrics
	tracer     trace.Tracer
}

func NewLedgerState(cfg LedgerStateConfig) (*LedgerState, error) {
	if cfg.Database == nil {
		return nil, errors.New("no database provided")
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	cfg.Logger = cfg.Logger.With("component", "ledger")
	if cfg.Registry == nil {
		cfg.Registry = registry.NewProgram(registry.WithLogger(cfg.Logger))
	}
	ls := &LedgerState{
		config:   cfg,
		db:       cfg.Database,
		registry: cfg.Registry,
		programs: make(map[address.Address]Program),
		tracer:   otel.Tracer(tracerName),
	}
	// Init metrics
	ls.metrics.init(cfg.PromRegistry)
	if err := ls.RegisterProgram(cfg.Registry); err != nil {
		return nil, err
	}
	return ls, nil
}

// RegisterProgram makes a program invocable by transactions
func (ls *LedgerState) RegisterProgram(p Program) error {
	ls.writeMutex.Lock()
	defer ls.writeMutex.Unlock()
	id := p.ID()
	if id == SystemProgramID {
		return fmt.Errorf("program ID %s is reserved", id)
	}
	if _, ok := ls.programs[id]; ok {
		return fmt.Errorf("program %s already registered", id)
	}
	ls.programs[id] = p
	return nil
}

// Registry returns the registry program
func (ls *LedgerState) Registry() *registry.Program {
	return ls.registry
}

// Database returns the underlying database
func (ls *LedgerState) Database() *database.Database {
	return ls.db
}

// Close closes the underlying database
func (ls *LedgerState) Close() error {
	return ls.db.Close()
}

// SubmitTransactionBytes decodes and executes a transaction
func (ls *LedgerState) SubmitTransactionBytes(
	ctx context.Context,
	data []byte,
) (TxID, error) {
	tx, err := DecodeTransaction(data)
	if err != nil {
		ls.metrics.transactionsTotal.WithLabelValues(resultLabel(err)).Inc()
		return TxID{}, err
	}
	return ls.SubmitTransaction(ctx, tx)
}

// SubmitTransaction verifies and executes a transaction. Either every
// instruction takes effect or none does
func (ls *LedgerState) SubmitTransaction(
	ctx context.Context,
	tx *Transaction,
) (TxID, error) {
	ctx, span := ls.tracer.Start(ctx, "ledger.SubmitTransaction")
	defer span.End()
	start := time.Now()
	txID, err := ls.submitTransaction(ctx, tx)
	ls.metrics.transactionDuration.Observe(time.Since(start).Seconds())
	ls.metrics.transactionsTotal.WithLabelValues(resultLabel(err)).Inc()
	span.SetAttributes(
		attribute.String("tx.id", txID.String()),
		attribute.Int("tx.instructions", len(tx.Message.Instructions)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ls.config.Logger.Debug(
			"transaction failed",
			"tx_id", txID.String(),
			"error", err,
		)
		return txID, err
	}
	ls.config.Logger.Info(
		"transaction committed",
		"tx_id", txID.String(),
		"fee_payer", tx.FeePayer().String(),
		"instructions", len(tx.Message.Instructions),
	)
	return txID, nil
}

func (ls *LedgerState) submitTransaction(
	ctx context.Context,
	tx *Transaction,
) (TxID, error) {
	txID, err := tx.ID()
	if err != nil {
		return txID, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	if err := tx.Verify(); err != nil {
		return txID, err
	}
	if err := ctx.Err(); err != nil {
		return txID, err
	}
	signers := make(map[address.Address]struct{}, len(tx.Message.Signers))
	for _, signer := range tx.Message.Signers {
		signers[signer] = struct{}{}
	}
	var events []pendingEvent
	ls.writeMutex.Lock()
	txn := ls.db.Transaction(true)
	err = txn.Do(func(txn *database.Txn) error {
		exists, err := ls.db.HasProcessedTransaction(txID[:], txn)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrDuplicateTransaction, txID)
		}
		for idx, inst := range tx.Message.Instructions {
			if err := ls.executeInstruction(ctx, txn, signers, &events, idx, inst); err != nil {
				return fmt.Errorf("instruction %d: %w", idx, err)
			}
		}
		if err := ls.db.AddProcessedTransaction(txID[:], tx.FeePayer(), txn); err != nil {
			if errors.Is(err, database.ErrTransactionExists) {
				return fmt.Errorf("%w: %s", ErrDuplicateTransaction, txID)
			}
			return err
		}
		return nil
	})
	ls.writeMutex.Unlock()
	if err != nil {
		return txID, err
	}
	ls.publishEvents(events)
	ls.publish(
		TransactionEventType,
		TransactionEvent{
			ID:               txID,
			Signers:          tx.Message.Signers,
			InstructionCount: len(tx.Message.Instructions),
		},
	)
	return txID, nil
}

func (ls *LedgerState) executeInstruction(
	ctx context.Context,
	txn *database.Txn,
	signers map[address.Address]struct{},
	events *[]pendingEvent,
	idx int,
	inst Instruction,
) error {
	_, span := ls.tracer.Start(
		ctx,
		"ledger.executeInstruction",
		trace.WithAttributes(
			attribute.Int("instruction.index", idx),
			attribute.String("instruction.program", inst.Program.String()),
		),
	)
	defer span.End()
	host := newProgramHost(ls.db, txn, signers, events, inst.Program)
	var err error
	if inst.Program == SystemProgramID {
		err = ls.processSystemInstruction(host, inst.Data)
	} else {
		prog, ok := ls.programs[inst.Program]
		if !ok {
			err = fmt.Errorf("%w: %s", ErrUnknownProgram, inst.Program)
		} else {
			err = prog.Process(host, inst.Data)
		}
	}
	if err == nil && inst.Program == ls.registry.ID() {
		err = ls.indexRegistryAccounts(txn, host.written)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Airdrop credits lamports to an address. It is only available when enabled
// in the configuration
func (ls *LedgerState) Airdrop(
	ctx context.Context,
	to address.Address,
	lamports uint64,
) error {
	_, span := ls.tracer.Start(
		ctx,
		"ledger.Airdrop",
		trace.WithAttributes(attribute.String("address", to.String())),
	)
	defer span.End()
	if !ls.config.EnableAirdrop {
		return ErrAirdropDisabled
	}
	if ls.config.AirdropLimit > 0 && lamports > ls.config.AirdropLimit {
		return fmt.Errorf(
			"%w: %d > %d",
			ErrAirdropLimit,
			lamports,
			ls.config.AirdropLimit,
		)
	}
	ls.writeMutex.Lock()
	txn := ls.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		acct, err := ls.db.GetAccountOrEmpty(to, txn)
		if err != nil {
			return err
		}
		acct.Lamports, err = addLamports(acct.Lamports, lamports)
		if err != nil {
			return err
		}
		return ls.db.SetAccount(acct, txn)
	})
	ls.writeMutex.Unlock()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	ls.metrics.airdropLamports.Add(float64(lamports))
	ls.config.Logger.Info(
		"airdrop",
		"address", to.String(),
		"lamports", lamports,
	)
	ls.publish(AirdropEventType, AirdropEvent{Address: to, Lamports: lamports})
	return nil
}

func (ls *LedgerState) publishEvents(events []pendingEvent) {
	for _, evt := range events {
		ls.publish(evt.eventType, evt.data)
	}
}

func (ls *LedgerState) publish(eventType event.EventType, data any) {
	if ls.config.EventBus == nil {
		return
	}
	ls.config.EventBus.Publish(eventType, event.NewEvent(eventType, data))
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrDuplicateTransaction):
		return "duplicate"
	case errors.Is(err, ErrInvalidSignature),
		errors.Is(err, ErrMissingSignature):
		return "invalid_signature"
	case errors.Is(err, ErrInvalidTransaction),
		errors.Is(err, ErrEmptyTransaction):
		return "invalid"
	default:
		return "failed"
	}
}
