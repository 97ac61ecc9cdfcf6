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

import "errors"

var (
	// ErrAlreadyExists is returned when creating a record at an address that
	// already holds data
	ErrAlreadyExists = errors.New("account already exists")
	// ErrNotFound is returned when an operation names a record or
	// configuration that does not exist
	ErrNotFound = errors.New("account not found")
	// ErrAddressMismatch is returned when the supplied request address is
	// not the address derived from the configuration and seed
	ErrAddressMismatch = errors.New("address does not match derived address")
	// ErrUnauthorized is returned when a required signer is missing
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInsufficientBalance is returned when an escrow transfer exceeds the
	// available balance
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidCrossReference is returned when a listing request does not
	// belong to the supplied configuration
	ErrInvalidCrossReference = errors.New("listing request belongs to another configuration")
	// ErrInvalidArgument is returned for malformed instruction arguments
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyDecided is returned in strict mode when deciding a request
	// that is no longer pending
	ErrAlreadyDecided = errors.New("listing request already decided")
	// ErrWrongAccountType is returned when an account is owned by another
	// program or holds a different record type
	ErrWrongAccountType = errors.New("wrong account type")
	// ErrInvalidInstruction is returned when instruction data can't be decoded
	ErrInvalidInstruction = errors.New("invalid instruction")
)
