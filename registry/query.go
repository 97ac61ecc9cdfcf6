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
	"github.com/blinklabs-io/boarding/address"
)

// GetConfig returns the registry configuration at addr
func (p *Program) GetConfig(
	r AccountReader,
	addr address.Address,
) (*Config, error) {
	return p.loadConfig(r, addr)
}

// GetListingRequest returns the listing request at addr along with its
// escrow balance
func (p *Program) GetListingRequest(
	r AccountReader,
	addr address.Address,
) (*ListingRequest, uint64, error) {
	req, acct, err := p.loadRequest(r, addr)
	if err != nil {
		return nil, 0, err
	}
	return req, acct.Lamports, nil
}

// IsApproved reports whether the listing request at addr has been approved
func (p *Program) IsApproved(
	r AccountReader,
	addr address.Address,
) (bool, error) {
	req, _, err := p.loadRequest(r, addr)
	if err != nil {
		return false, err
	}
	return req.IsApproved(), nil
}
