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

	"github.com/blinklabs-io/boarding/address"
)

type CreateConfigurationArgs struct {
	Config        address.Address `cbor:"1,keyasint" json:"config"`
	Administrator address.Address `cbor:"2,keyasint" json:"administrator"`
	Fee           uint64          `cbor:"3,keyasint" json:"fee"`
}

type TransferAdministrationArgs struct {
	Config           address.Address `cbor:"1,keyasint" json:"config"`
	NewAdministrator address.Address `cbor:"2,keyasint" json:"newAdministrator"`
}

type SetFeeArgs struct {
	Config address.Address `cbor:"1,keyasint" json:"config"`
	Fee    uint64          `cbor:"2,keyasint" json:"fee"`
}

type CreateRequestArgs struct {
	Metadata            Metadata         `cbor:"1,keyasint"           json:"metadata"`
	Config              address.Address  `cbor:"2,keyasint"           json:"config"`
	Request             address.Address  `cbor:"3,keyasint"           json:"request"`
	Requestor           address.Address  `cbor:"4,keyasint"           json:"requestor"`
	Seed                address.Address  `cbor:"5,keyasint"           json:"seed"`
	ResourceIdentifier  address.Address  `cbor:"6,keyasint"           json:"resourceIdentifier"`
	ResourceAuthority   address.Address  `cbor:"7,keyasint"           json:"resourceAuthority"`
	GovernanceReference *address.Address `cbor:"8,keyasint,omitempty" json:"governanceReference,omitempty"`
	Marketplace         *address.Address `cbor:"9,keyasint,omitempty" json:"marketplace,omitempty"`
}

type DecideArgs struct {
	Request  address.Address `cbor:"1,keyasint" json:"request"`
	Config   address.Address `cbor:"2,keyasint" json:"config"`
	Approved bool            `cbor:"3,keyasint" json:"approved"`
}

type SetEnabledArgs struct {
	Request address.Address `cbor:"1,keyasint" json:"request"`
	Config  address.Address `cbor:"2,keyasint" json:"config"`
	Enabled bool            `cbor:"3,keyasint" json:"enabled"`
}

// UpdateMetadataArgs updates the descriptive fields of a listing request.
// Nil fields are left unchanged. Signer must be the requestor or the
// resource authority
type UpdateMetadataArgs struct {
	Name        *string         `cbor:"1,keyasint,omitempty" json:"name,omitempty"`
	MetadataURL *string         `cbor:"2,keyasint,omitempty" json:"metadataUrl,omitempty"`
	VanityURL   *string         `cbor:"3,keyasint,omitempty" json:"vanityUrl,omitempty"`
	TokenType   *string         `cbor:"4,keyasint,omitempty" json:"tokenType,omitempty"`
	RequestType *string         `cbor:"5,keyasint,omitempty" json:"requestType,omitempty"`
	Request     address.Address `cbor:"6,keyasint"           json:"request"`
	Signer      address.Address `cbor:"7,keyasint"           json:"signer"`
}

type RefundArgs struct {
	Request address.Address `cbor:"1,keyasint" json:"request"`
}

// Instruction is a single registry operation. Exactly one field is set
type Instruction struct {
	CreateConfiguration    *CreateConfigurationArgs    `cbor:"1,keyasint,omitempty" json:"createConfiguration,omitempty"`
	TransferAdministration *TransferAdministrationArgs `cbor:"2,keyasint,omitempty" json:"transferAdministration,omitempty"`
	SetFee                 *SetFeeArgs                 `cbor:"3,keyasint,omitempty" json:"setFee,omitempty"`
	CreateRequest          *CreateRequestArgs          `cbor:"4,keyasint,omitempty" json:"createRequest,omitempty"`
	Decide                 *DecideArgs                 `cbor:"5,keyasint,omitempty" json:"decide,omitempty"`
	SetEnabled             *SetEnabledArgs             `cbor:"6,keyasint,omitempty" json:"setEnabled,omitempty"`
	UpdateMetadata         *UpdateMetadataArgs         `cbor:"7,keyasint,omitempty" json:"updateMetadata,omitempty"`
	Refund                 *RefundArgs                 `cbor:"8,keyasint,omitempty" json:"refund,omitempty"`
}

// Name returns the name of the operation carried by the instruction
func (i *Instruction) Name() string {
	switch {
	case i.CreateConfiguration != nil:
		return "create_configuration"
	case i.TransferAdministration != nil:
		return "transfer_administration"
	case i.SetFee != nil:
		return "set_fee"
	case i.CreateRequest != nil:
		return "create_request"
	case i.Decide != nil:
		return "decide"
	case i.SetEnabled != nil:
		return "set_enabled"
	case i.UpdateMetadata != nil:
		return "update_metadata"
	case i.Refund != nil:
		return "refund"
	default:
		return "unknown"
	}
}

func (i *Instruction) validate() error {
	count := 0
	for _, set := range []bool{
		i.CreateConfiguration != nil,
		i.TransferAdministration != nil,
		i.SetFee != nil,
		i.CreateRequest != nil,
		i.Decide != nil,
		i.SetEnabled != nil,
		i.UpdateMetadata != nil,
		i.Refund != nil,
	} {
		if set {
			count++
		}
	}
	if count != 1 {
		return fmt.Errorf(
			"%w: expected exactly one operation, found %d",
			ErrInvalidInstruction,
			count,
		)
	}
	return nil
}

// Encode returns the wire form of the instruction
func (i *Instruction) Encode() ([]byte, error) {
	if err := i.validate(); err != nil {
		return nil, err
	}
	return encMode.Marshal(i)
}

// DecodeInstruction decodes the wire form of an instruction
func DecodeInstruction(data []byte) (*Instruction, error) {
	ret := &Instruction{}
	if err := decMode.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInstruction, err)
	}
	if err := ret.validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
