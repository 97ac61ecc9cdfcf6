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

package models

import (
	"github.com/blinklabs-io/boarding/database/types"
)

// RegistryConfig indexes registry configuration accounts
type RegistryConfig struct {
	Address       []byte `gorm:"uniqueIndex;size:32"`
	Administrator []byte `gorm:"index;size:32"`
	ID            uint   `gorm:"primarykey"`
	Fee           types.Uint64
}

func (RegistryConfig) TableName() string {
	return "registry_config"
}

// ListingRequest indexes listing request accounts for lookup by
// configuration, resource or requestor
type ListingRequest struct {
	Address            []byte `gorm:"uniqueIndex;size:32"`
	Config             []byte `gorm:"index;size:32"`
	ResourceIdentifier []byte `gorm:"index;size:32"`
	ResourceAuthority  []byte `gorm:"index;size:32"`
	Requestor          []byte `gorm:"index;size:32"`
	Name               string
	ID                 uint `gorm:"primarykey"`
	FeeSnapshot        types.Uint64
	ApprovalState      uint8 `gorm:"index"`
	Enabled            bool
}

func (ListingRequest) TableName() string {
	return "listing_request"
}
