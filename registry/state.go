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
	"bytes"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/blinklabs-io/boarding/address"
	"github.com/fxamacker/cbor/v2"
)

const (
	// MaxTextLength is the maximum length of the name and URL fields
	MaxTextLength = 200
	// MaxTypeLength is the maximum length of the token and request type fields
	MaxTypeLength = 32

	discriminatorSize = 8
)

var (
	configDiscriminator  = accountDiscriminator("RegistryConfig")
	requestDiscriminator = accountDiscriminator("ListingRequest")
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: 1024,
		MaxMapPairs:      1024,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

func accountDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("account:" + name))
	return sum[:discriminatorSize]
}

// ApprovalState is the decision state of a listing request
type ApprovalState uint8

const (
	ApprovalStatePending ApprovalState = iota
	ApprovalStateApproved
	ApprovalStateDenied
)

func (s ApprovalState) String() string {
	switch s {
	case ApprovalStatePending:
		return "pending"
	case ApprovalStateApproved:
		return "approved"
	case ApprovalStateDenied:
		return "denied"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

func (s ApprovalState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseApprovalState parses the text form of an approval state
func ParseApprovalState(s string) (ApprovalState, error) {
	switch strings.ToLower(s) {
	case "pending":
		return ApprovalStatePending, nil
	case "approved":
		return ApprovalStateApproved, nil
	case "denied":
		return ApprovalStateDenied, nil
	default:
		return 0, fmt.Errorf("%w: unknown approval state %q", ErrInvalidArgument, s)
	}
}

// Config is the registry configuration holding the administrator and the
// current fee
type Config struct {
	Administrator address.Address `cbor:"1,keyasint" json:"administrator"`
	Fee           uint64          `cbor:"2,keyasint" json:"fee"`
}

// Metadata holds the descriptive fields of a listing request
type Metadata struct {
	Name        string `cbor:"1,keyasint" json:"name"`
	MetadataURL string `cbor:"2,keyasint" json:"metadataUrl"`
	VanityURL   string `cbor:"3,keyasint" json:"vanityUrl"`
	TokenType   string `cbor:"4,keyasint" json:"tokenType"`
	RequestType string `cbor:"5,keyasint" json:"requestType"`
}

func (m Metadata) validate() error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"name", m.Name, MaxTextLength},
		{"metadata URL", m.MetadataURL, MaxTextLength},
		{"vanity URL", m.VanityURL, MaxTextLength},
		{"token type", m.TokenType, MaxTypeLength},
		{"request type", m.RequestType, MaxTypeLength},
	} {
		if len(f.value) > f.max {
			return fmt.Errorf(
				"%w: %s exceeds %d bytes",
				ErrInvalidArgument,
				f.name,
				f.max,
			)
		}
	}
	return nil
}

// ListingRequest is an escrow-backed request to list a resource
type ListingRequest struct {
	Metadata            Metadata         `cbor:"1,keyasint"            json:"metadata"`
	Requestor           address.Address  `cbor:"2,keyasint"            json:"requestor"`
	ResourceIdentifier  address.Address  `cbor:"3,keyasint"            json:"resourceIdentifier"`
	ResourceAuthority   address.Address  `cbor:"4,keyasint"            json:"resourceAuthority"`
	Config              address.Address  `cbor:"5,keyasint"            json:"config"`
	GovernanceReference *address.Address `cbor:"6,keyasint,omitempty" json:"governanceReference,omitempty"`
	Marketplace         *address.Address `cbor:"7,keyasint,omitempty" json:"marketplace,omitempty"`
	FeeSnapshot         uint64           `cbor:"8,keyasint"            json:"feeSnapshot"`
	ApprovalState       ApprovalState    `cbor:"9,keyasint"            json:"approvalState"`
	Enabled             bool             `cbor:"10,keyasint"           json:"enabled"`
	Bump                uint8            `cbor:"11,keyasint"           json:"bump"`
}

// IsApproved reports whether the request has been approved
func (r *ListingRequest) IsApproved() bool {
	return r.ApprovalState == ApprovalStateApproved
}

func encodeAccount(discriminator []byte, v any) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, err
	}
	ret := make([]byte, 0, len(discriminator)+len(data))
	ret = append(ret, discriminator...)
	return append(ret, data...), nil
}

func decodeAccount(discriminator []byte, data []byte, v any) error {
	if len(data) < discriminatorSize ||
		!bytes.Equal(data[:discriminatorSize], discriminator) {
		return ErrWrongAccountType
	}
	if err := decMode.Unmarshal(data[discriminatorSize:], v); err != nil {
		return fmt.Errorf("%w: %w", ErrWrongAccountType, err)
	}
	return nil
}

// EncodeConfig returns the account data for a registry configuration
func EncodeConfig(cfg *Config) ([]byte, error) {
	return encodeAccount(configDiscriminator, cfg)
}

// DecodeConfig decodes registry configuration account data
func DecodeConfig(data []byte) (*Config, error) {
	ret := &Config{}
	if err := decodeAccount(configDiscriminator, data, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// EncodeListingRequest returns the account data for a listing request
func EncodeListingRequest(req *ListingRequest) ([]byte, error) {
	return encodeAccount(requestDiscriminator, req)
}

// DecodeListingRequest decodes listing request account data
func DecodeListingRequest(data []byte) (*ListingRequest, error) {
	ret := &ListingRequest{}
	if err := decodeAccount(requestDiscriminator, data, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// IsConfigData reports whether account data holds a registry configuration
func IsConfigData(data []byte) bool {
	return len(data) >= discriminatorSize &&
		bytes.Equal(data[:discriminatorSize], configDiscriminator)
}

// IsListingRequestData reports whether account data holds a listing request
func IsListingRequestData(data []byte) bool {
	return len(data) >= discriminatorSize &&
		bytes.Equal(data[:discriminatorSize], requestDiscriminator)
}
