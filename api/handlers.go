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

package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/ledger"
	"github.com/blinklabs-io/boarding/registry"
	"github.com/go-chi/chi/v5"
)

const (
	contentTypeCBOR = "application/cbor"
	maxBodySize     = ledger.MaxTransactionSize * 3
)

// writeJSON writes a JSON response with the given status code
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response
func writeError(
	w http.ResponseWriter,
	status int,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// errorStatus maps ledger and registry errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, registry.ErrAlreadyExists),
		errors.Is(err, registry.ErrAlreadyDecided),
		errors.Is(err, ledger.ErrDuplicateTransaction):
		return http.StatusConflict
	case errors.Is(err, registry.ErrUnauthorized),
		errors.Is(err, ledger.ErrInvalidSignature),
		errors.Is(err, ledger.ErrMissingSignature),
		errors.Is(err, ledger.ErrAirdropDisabled):
		return http.StatusForbidden
	case errors.Is(err, registry.ErrInsufficientBalance),
		errors.Is(err, registry.ErrAddressMismatch),
		errors.Is(err, registry.ErrInvalidCrossReference),
		errors.Is(err, registry.ErrInvalidArgument),
		errors.Is(err, registry.ErrWrongAccountType),
		errors.Is(err, ledger.ErrAccountNotOwned),
		errors.Is(err, ledger.ErrUnknownProgram),
		errors.Is(err, ledger.ErrBalanceOverflow),
		errors.Is(err, ledger.ErrAirdropLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, registry.ErrInvalidInstruction),
		errors.Is(err, ledger.ErrInvalidTransaction),
		errors.Is(err, ledger.ErrEmptyTransaction):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeLedgerError writes the response for an error returned by the node.
// Internal errors are logged and not exposed to the client
func (s *Server) writeLedgerError(
	w http.ResponseWriter,
	r *http.Request,
	msg string,
	err error,
) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), msg, "error", err)
		writeError(w, status, msg)
		return
	}
	writeError(w, status, err.Error())
}

// addressParam parses the {address} URL parameter. It writes a 400 response
// and returns false when the parameter is not a valid address
func addressParam(
	w http.ResponseWriter,
	r *http.Request,
) (address.Address, bool) {
	return parseAddress(w, "address", chi.URLParam(r, "address"))
}

func parseAddress(
	w http.ResponseWriter,
	name string,
	value string,
) (address.Address, bool) {
	addr, err := address.Parse(value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name+": "+err.Error())
		return address.Zero, false
	}
	return addr, true
}

// handleHealth handles GET /health
func (s *Server) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

// handleAccount handles GET /api/v1/accounts/{address}
func (s *Server) handleAccount(
	w http.ResponseWriter,
	r *http.Request,
) {
	addr, ok := addressParam(w, r)
	if !ok {
		return
	}
	acct, err := s.node.Account(addr)
	if err != nil {
		s.writeLedgerError(w, r, "failed to get account", err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{
		Address:  addr,
		Owner:    acct.Owner,
		Lamports: acct.Lamports,
		DataLen:  len(acct.Data),
	})
}

// handleConfig handles GET /api/v1/configs/{address}
func (s *Server) handleConfig(
	w http.ResponseWriter,
	r *http.Request,
) {
	addr, ok := addressParam(w, r)
	if !ok {
		return
	}
	cfg, err := s.node.GetConfig(addr)
	if err != nil {
		s.writeLedgerError(w, r, "failed to get configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, ConfigResponse{
		Address:       addr,
		Administrator: cfg.Administrator,
		Fee:           cfg.Fee,
	})
}

// handleConfigRequests handles GET /api/v1/configs/{address}/requests with
// an optional state filter
func (s *Server) handleConfigRequests(
	w http.ResponseWriter,
	r *http.Request,
) {
	addr, ok := addressParam(w, r)
	if !ok {
		return
	}
	var stateFilter *registry.ApprovalState
	if stateParam := r.URL.Query().Get("state"); stateParam != "" {
		state, err := registry.ParseApprovalState(stateParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		stateFilter = &state
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reqs, err := s.node.ListingRequestsByConfig(addr, stateFilter)
	if err != nil {
		s.writeLedgerError(w, r, "failed to list listing requests", err)
		return
	}
	s.writeListingRequests(w, reqs, params)
}

// handleRequestorRequests handles GET /api/v1/requestors/{address}/requests
func (s *Server) handleRequestorRequests(
	w http.ResponseWriter,
	r *http.Request,
) {
	addr, ok := addressParam(w, r)
	if !ok {
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reqs, err := s.node.ListingRequestsByRequestor(addr)
	if err != nil {
		s.writeLedgerError(w, r, "failed to list listing requests", err)
		return
	}
	s.writeListingRequests(w, reqs, params)
}

func (s *Server) writeListingRequests(
	w http.ResponseWriter,
	reqs []ledger.ListingRequestInfo,
	params PaginationParams,
) {
	SetPaginationHeaders(w, len(reqs), params)
	page := paginate(reqs, params)
	ret := make([]ListingRequestResponse, 0, len(page))
	for i := range page {
		ret = append(ret, toListingRequestResponse(&page[i]))
	}
	writeJSON(w, http.StatusOK, ret)
}

// handleRequest handles GET /api/v1/requests/{address}
func (s *Server) handleRequest(
	w http.ResponseWriter,
	r *http.Request,
) {
	addr, ok := addressParam(w, r)
	if !ok {
		return
	}
	info, err := s.node.GetListingRequest(addr)
	if err != nil {
		s.writeLedgerError(w, r, "failed to get listing request", err)
		return
	}
	writeJSON(w, http.StatusOK, toListingRequestResponse(info))
}

// handleRequestApproved handles GET /api/v1/requests/{address}/approved
func (s *Server) handleRequestApproved(
	w http.ResponseWriter,
	r *http.Request,
) {
	addr, ok := addressParam(w, r)
	if !ok {
		return
	}
	approved, err := s.node.IsApproved(addr)
	if err != nil {
		s.writeLedgerError(w, r, "failed to get listing request", err)
		return
	}
	writeJSON(w, http.StatusOK, ApprovedResponse{
		Address:  addr,
		Approved: approved,
	})
}

// handleDerive handles GET /api/v1/derive?config=...&seed=... and returns the
// listing request address for the pair
func (s *Server) handleDerive(
	w http.ResponseWriter,
	r *http.Request,
) {
	query := r.URL.Query()
	config, ok := parseAddress(w, "config", query.Get("config"))
	if !ok {
		return
	}
	seed, ok := parseAddress(w, "seed", query.Get("seed"))
	if !ok {
		return
	}
	addr, bump, err := registry.DeriveRequestAddress(
		s.node.Registry().ID(),
		config,
		seed,
	)
	if err != nil {
		s.writeLedgerError(w, r, "failed to derive address", err)
		return
	}
	writeJSON(w, http.StatusOK, DeriveResponse{
		Address: addr,
		Config:  config,
		Seed:    seed,
		Bump:    bump,
	})
}

// handleSubmitTransaction handles POST /api/v1/transactions. The body is
// either the raw encoded transaction with an application/cbor content type
// or a JSON object carrying it hex encoded
func (s *Server) handleSubmitTransaction(
	w http.ResponseWriter,
	r *http.Request,
) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	txData := body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != contentTypeCBOR {
		var req SubmitTransactionRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		txData, err = hex.DecodeString(req.Transaction)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid transaction hex: "+err.Error())
			return
		}
	}
	txID, err := s.node.SubmitTransactionBytes(r.Context(), txData)
	if err != nil {
		s.writeLedgerError(w, r, "failed to submit transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, TransactionResponse{
		ID:        txID,
		Committed: true,
	})
}

// handleTransactionStatus handles GET /api/v1/transactions/{id}
func (s *Server) handleTransactionStatus(
	w http.ResponseWriter,
	r *http.Request,
) {
	txID, err := ledger.ParseTxID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	found, err := s.node.HasTransaction(txID)
	if err != nil {
		s.writeLedgerError(w, r, "failed to get transaction", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, TransactionResponse{
		ID:        txID,
		Committed: true,
	})
}

// handleAirdrop handles POST /api/v1/airdrop
func (s *Server) handleAirdrop(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req AirdropRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Address.IsZero() || req.Lamports == 0 {
		writeError(w, http.StatusBadRequest, "address and lamports are required")
		return
	}
	if err := s.node.Airdrop(r.Context(), req.Address, req.Lamports); err != nil {
		s.writeLedgerError(w, r, "failed to airdrop", err)
		return
	}
	acct, err := s.node.Account(req.Address)
	if err != nil {
		s.writeLedgerError(w, r, "failed to get account", err)
		return
	}
	writeJSON(w, http.StatusOK, AccountResponse{
		Address:  req.Address,
		Owner:    acct.Owner,
		Lamports: acct.Lamports,
		DataLen:  len(acct.Data),
	})
}
