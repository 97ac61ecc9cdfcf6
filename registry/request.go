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
)

func (p *Program) createRequest(host Host, args *CreateRequestArgs) error {
	if err := args.Metadata.validate(); err != nil {
		return err
	}
	if err := requireSigner(host, args.Requestor, "requestor"); err != nil {
		return err
	}
	cfg, err := p.loadConfig(host, args.Config)
	if err != nil {
		return err
	}
	// The seed must be one of the identities being registered, and the
	// target must be the address derived from it
	if args.Seed != args.ResourceIdentifier &&
		args.Seed != args.ResourceAuthority {
		return fmt.Errorf(
			"%w: seed %s is neither the resource identifier nor the resource authority",
			ErrAddressMismatch,
			args.Seed,
		)
	}
	derived, bump, err := DeriveRequestAddress(p.programID, args.Config, args.Seed)
	if err != nil {
		return err
	}
	if derived != args.Request {
		return fmt.Errorf(
			"%w: expected %s, got %s",
			ErrAddressMismatch,
			derived,
			args.Request,
		)
	}
	acct, err := host.Account(args.Request)
	if err != nil {
		return err
	}
	if acct.HasData() {
		return fmt.Errorf("%w: listing request %s", ErrAlreadyExists, args.Request)
	}
	req := &ListingRequest{
		Metadata:            args.Metadata,
		Requestor:           args.Requestor,
		ResourceIdentifier:  args.ResourceIdentifier,
		ResourceAuthority:   args.ResourceAuthority,
		Config:              args.Config,
		GovernanceReference: args.GovernanceReference,
		Marketplace:         args.Marketplace,
		FeeSnapshot:         cfg.Fee,
		ApprovalState:       ApprovalStatePending,
		Enabled:             true,
		Bump:                bump,
	}
	data, err := EncodeListingRequest(req)
	if err != nil {
		return err
	}
	if err := host.CreateAccount(args.Request, data); err != nil {
		return err
	}
	p.logger.Info(
		"listing request created",
		"request", args.Request.String(),
		"config", args.Config.String(),
		"requestor", args.Requestor.String(),
		"name", req.Metadata.Name,
	)
	host.Emit(
		RequestCreatedEventType,
		RequestCreatedEvent{
			Address:            args.Request,
			Config:             args.Config,
			Requestor:          req.Requestor,
			ResourceIdentifier: req.ResourceIdentifier,
			Name:               req.Metadata.Name,
			FeeSnapshot:        req.FeeSnapshot,
		},
	)
	return nil
}

func (p *Program) decide(host Host, args *DecideArgs) error {
	req, acct, err := p.loadRequest(host, args.Request)
	if err != nil {
		return err
	}
	cfg, err := p.loadConfig(host, args.Config)
	if err != nil {
		return err
	}
	if err := requireAdministrator(host, args.Config, cfg, req); err != nil {
		return err
	}
	if p.strictDecisions && req.ApprovalState != ApprovalStatePending {
		return fmt.Errorf(
			"%w: request is %s",
			ErrAlreadyDecided,
			req.ApprovalState,
		)
	}
	fee := cfg.Fee
	if p.feeMode == FeeModeSnapshot {
		fee = req.FeeSnapshot
	}
	if acct.Lamports < fee {
		return fmt.Errorf(
			"%w: escrow holds %d, fee is %d",
			ErrInsufficientBalance,
			acct.Lamports,
			fee,
		)
	}
	recipient := cfg.Administrator
	req.ApprovalState = ApprovalStateApproved
	if !args.Approved {
		recipient = req.Requestor
		req.ApprovalState = ApprovalStateDenied
	}
	if err := host.Transfer(args.Request, recipient, fee); err != nil {
		return err
	}
	if err := p.storeRequest(host, args.Request, req); err != nil {
		return err
	}
	p.metrics.observeDecision(req.ApprovalState, fee)
	p.logger.Info(
		"listing request decided",
		"request", args.Request.String(),
		"state", req.ApprovalState.String(),
		"fee", fee,
		"recipient", recipient.String(),
	)
	host.Emit(
		RequestDecidedEventType,
		RequestDecidedEvent{
			Address:   args.Request,
			Config:    args.Config,
			Recipient: recipient,
			State:     req.ApprovalState,
			Fee:       fee,
		},
	)
	return nil
}

func (p *Program) setEnabled(host Host, args *SetEnabledArgs) error {
	req, _, err := p.loadRequest(host, args.Request)
	if err != nil {
		return err
	}
	cfg, err := p.loadConfig(host, args.Config)
	if err != nil {
		return err
	}
	if err := requireAdministrator(host, args.Config, cfg, req); err != nil {
		return err
	}
	req.Enabled = args.Enabled
	if err := p.storeRequest(host, args.Request, req); err != nil {
		return err
	}
	p.logger.Info(
		"listing request enabled flag set",
		"request", args.Request.String(),
		"enabled", req.Enabled,
	)
	host.Emit(
		RequestUpdatedEventType,
		RequestUpdatedEvent{
			Address: args.Request,
			Enabled: req.Enabled,
		},
	)
	return nil
}

func (p *Program) updateMetadata(host Host, args *UpdateMetadataArgs) error {
	req, _, err := p.loadRequest(host, args.Request)
	if err != nil {
		return err
	}
	if err := requireEditor(host, args.Signer, req); err != nil {
		return err
	}
	tmpMetadata := req.Metadata
	for _, f := range []struct {
		src *string
		dst *string
	}{
		{args.Name, &tmpMetadata.Name},
		{args.MetadataURL, &tmpMetadata.MetadataURL},
		{args.VanityURL, &tmpMetadata.VanityURL},
		{args.TokenType, &tmpMetadata.TokenType},
		{args.RequestType, &tmpMetadata.RequestType},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if err := tmpMetadata.validate(); err != nil {
		return err
	}
	req.Metadata = tmpMetadata
	if err := p.storeRequest(host, args.Request, req); err != nil {
		return err
	}
	p.logger.Debug(
		"listing request metadata updated",
		"request", args.Request.String(),
		"signer", args.Signer.String(),
	)
	host.Emit(
		RequestUpdatedEventType,
		RequestUpdatedEvent{
			Address: args.Request,
			Enabled: req.Enabled,
		},
	)
	return nil
}

func (p *Program) refund(host Host, args *RefundArgs) error {
	req, acct, err := p.loadRequest(host, args.Request)
	if err != nil {
		return err
	}
	if err := requireSigner(host, req.Requestor, "requestor"); err != nil {
		return err
	}
	amount := acct.Lamports
	if amount == 0 {
		return nil
	}
	if err := host.Transfer(args.Request, req.Requestor, amount); err != nil {
		return err
	}
	p.metrics.observeRefund(amount)
	p.logger.Info(
		"listing request refunded",
		"request", args.Request.String(),
		"requestor", req.Requestor.String(),
		"amount", amount,
	)
	host.Emit(
		RequestRefundedEventType,
		RequestRefundedEvent{
			Address:   args.Request,
			Requestor: req.Requestor,
			Amount:    amount,
		},
	)
	return nil
}
