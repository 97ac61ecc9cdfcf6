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

package registry

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/event"
	"github.com/prometheus/client_golang/prometheus"
)

// FeeMode selects which fee is charged when a listing request is decided
type FeeMode string

const (
	// FeeModeLive charges the configuration's current fee
	FeeModeLive FeeMode = "live"
	// FeeModeSnapshot charges the fee recorded when the request was created
	FeeModeSnapshot FeeMode = "snapshot"
)

// ParseFeeMode validates a fee mode name. An empty value selects FeeModeLive
func ParseFeeMode(s string) (FeeMode, error) {
	switch FeeMode(s) {
	case "", FeeModeLive:
		return FeeModeLive, nil
	case FeeModeSnapshot:
		return FeeModeSnapshot, nil
	default:
		return "", fmt.Errorf("unknown fee mode: %s", s)
	}
}

// AccountInfo is the host's view of an account
type AccountInfo struct {
	Data     []byte
	Lamports uint64
	Owner    address.Address
}

// HasData reports whether the account holds program data
func (a *AccountInfo) HasData() bool {
	return len(a.Data) > 0
}

// AccountReader provides read access to accounts
type AccountReader interface {
	// Account returns the account at addr. Missing accounts are returned
	// empty with a zero balance
	Account(addr address.Address) (*AccountInfo, error)
}

// Host is the ledger state available to the program while it executes one
// instruction. All changes made through it commit or roll back together
type Host interface {
	AccountReader
	// IsSigner reports whether the address signed the enclosing transaction
	IsSigner(addr address.Address) bool
	// CreateAccount stores data at addr and assigns it to the program
	CreateAccount(addr address.Address, data []byte) error
	// WriteAccount replaces the data of an account owned by the program
	WriteAccount(addr address.Address, data []byte) error
	// Transfer moves lamports out of an account owned by the program
	Transfer(from address.Address, to address.Address, amount uint64) error
	// Emit queues an event for publication once the transaction commits
	Emit(eventType event.EventType, data any)
}

// Program implements the listing registry
type Program struct {
	logger          *slog.Logger
	promRegistry    prometheus.Registerer
	metrics         *programMetrics
	programID       address.Address
	feeMode         FeeMode
	strictDecisions bool
}

type ProgramOptionFunc func(*Program)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) ProgramOptionFunc {
	return func(p *Program) {
		p.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) ProgramOptionFunc {
	return func(p *Program) {
		p.promRegistry = registry
	}
}

// WithProgramID specifies the address the program is deployed at
func WithProgramID(programID address.Address) ProgramOptionFunc {
	return func(p *Program) {
		p.programID = programID
	}
}

// WithFeeMode specifies which fee is charged on decisions
func WithFeeMode(feeMode FeeMode) ProgramOptionFunc {
	return func(p *Program) {
		p.feeMode = feeMode
	}
}

// WithStrictDecisions rejects decisions on requests that are no longer
// pending instead of repeating the fee transfer
func WithStrictDecisions(strict bool) ProgramOptionFunc {
	return func(p *Program) {
		p.strictDecisions = strict
	}
}

// NewProgram creates the registry program
func NewProgram(opts ...ProgramOptionFunc) *Program {
	p := &Program{
		programID: DefaultProgramID,
		feeMode:   FeeModeLive,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	p.logger = p.logger.With("component", "registry")
	if p.promRegistry != nil {
		p.metrics = newProgramMetrics(p.promRegistry)
	}
	return p
}

// ID returns the program address
func (p *Program) ID() address.Address {
	return p.programID
}

// FeeMode returns the configured fee mode
func (p *Program) FeeMode() FeeMode {
	return p.feeMode
}

// StrictDecisions reports whether repeated decisions are rejected
func (p *Program) StrictDecisions() bool {
	return p.strictDecisions
}

// Process decodes and executes one instruction
func (p *Program) Process(host Host, data []byte) error {
	inst, err := DecodeInstruction(data)
	if err != nil {
		return err
	}
	return p.Execute(host, inst)
}

// Execute runs a decoded instruction
func (p *Program) Execute(host Host, inst *Instruction) error {
	if err := inst.validate(); err != nil {
		return err
	}
	var err error
	switch {
	case inst.CreateConfiguration != nil:
		err = p.createConfiguration(host, inst.CreateConfiguration)
	case inst.TransferAdministration != nil:
		err = p.transferAdministration(host, inst.TransferAdministration)
	case inst.SetFee != nil:
		err = p.setFee(host, inst.SetFee)
	case inst.CreateRequest != nil:
		err = p.createRequest(host, inst.CreateRequest)
	case inst.Decide != nil:
		err = p.decide(host, inst.Decide)
	case inst.SetEnabled != nil:
		err = p.setEnabled(host, inst.SetEnabled)
	case inst.UpdateMetadata != nil:
		err = p.updateMetadata(host, inst.UpdateMetadata)
	case inst.Refund != nil:
		err = p.refund(host, inst.Refund)
	}
	p.metrics.observeInstruction(inst.Name(), err)
	if err != nil {
		p.logger.Debug(
			"instruction failed",
			"instruction", inst.Name(),
			"error", err,
		)
		return fmt.Errorf("%s: %w", inst.Name(), err)
	}
	return nil
}

// loadConfig reads and decodes a configuration account
func (p *Program) loadConfig(
	r AccountReader,
	addr address.Address,
) (*Config, error) {
	acct, err := r.Account(addr)
	if err != nil {
		return nil, err
	}
	if !acct.HasData() {
		return nil, fmt.Errorf("%w: configuration %s", ErrNotFound, addr)
	}
	if acct.Owner != p.programID {
		return nil, fmt.Errorf("%w: %s is not owned by the registry", ErrWrongAccountType, addr)
	}
	return DecodeConfig(acct.Data)
}

// loadRequest reads and decodes a listing request account
func (p *Program) loadRequest(
	r AccountReader,
	addr address.Address,
) (*ListingRequest, *AccountInfo, error) {
	acct, err := r.Account(addr)
	if err != nil {
		return nil, nil, err
	}
	if !acct.HasData() {
		return nil, nil, fmt.Errorf("%w: listing request %s", ErrNotFound, addr)
	}
	if acct.Owner != p.programID {
		return nil, nil, fmt.Errorf("%w: %s is not owned by the registry", ErrWrongAccountType, addr)
	}
	req, err := DecodeListingRequest(acct.Data)
	if err != nil {
		return nil, nil, err
	}
	return req, acct, nil
}

func (p *Program) storeConfig(host Host, addr address.Address, cfg *Config) error {
	data, err := EncodeConfig(cfg)
	if err != nil {
		return err
	}
	return host.WriteAccount(addr, data)
}

func (p *Program) storeRequest(
	host Host,
	addr address.Address,
	req *ListingRequest,
) error {
	data, err := EncodeListingRequest(req)
	if err != nil {
		return err
	}
	return host.WriteAccount(addr, data)
}

// requireSigner fails with ErrUnauthorized unless addr signed
func requireSigner(host Host, addr address.Address, role string) error {
	if addr.IsZero() || !host.IsSigner(addr) {
		return fmt.Errorf("%w: %s %s did not sign", ErrUnauthorized, role, addr)
	}
	return nil
}

// validateAdministrator rejects administrators that can never sign: the
// empty address and program derived addresses
func validateAdministrator(addr address.Address) error {
	if addr.IsZero() {
		return fmt.Errorf("%w: administrator is empty", ErrInvalidArgument)
	}
	if !address.IsOnCurve(addr) {
		return fmt.Errorf(
			"%w: administrator %s is not a signing identity",
			ErrInvalidArgument,
			addr,
		)
	}
	return nil
}

// requireAdministrator checks that the request belongs to the configuration
// and that the configuration's administrator signed
func requireAdministrator(
	host Host,
	cfgAddr address.Address,
	cfg *Config,
	req *ListingRequest,
) error {
	if req.Config != cfgAddr {
		return fmt.Errorf(
			"%w: request is governed by %s, not %s",
			ErrInvalidCrossReference,
			req.Config,
			cfgAddr,
		)
	}
	return requireSigner(host, cfg.Administrator, "administrator")
}

// requireEditor checks that signer is the requestor or resource authority of
// the request and that it signed
func requireEditor(host Host, signer address.Address, req *ListingRequest) error {
	if signer != req.Requestor && signer != req.ResourceAuthority {
		return fmt.Errorf(
			"%w: %s is neither requestor nor resource authority",
			ErrUnauthorized,
			signer,
		)
	}
	return requireSigner(host, signer, "editor")
}
