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
	"github.com/blinklabs-io/boarding/event"
)

const (
	ConfigurationCreatedEventType event.EventType = "registry.configuration_created"
	ConfigurationUpdatedEventType event.EventType = "registry.configuration_updated"
	RequestCreatedEventType       event.EventType = "registry.request_created"
	RequestDecidedEventType       event.EventType = "registry.request_decided"
	RequestUpdatedEventType       event.EventType = "registry.request_updated"
	RequestRefundedEventType      event.EventType = "registry.request_refunded"
)

// ConfigurationEvent is emitted when a configuration is created or changed
type ConfigurationEvent struct {
	Address       address.Address
	Administrator address.Address
	Fee           uint64
}

// RequestCreatedEvent is emitted when a listing request is created
type RequestCreatedEvent struct {
	Address            address.Address
	Config             address.Address
	Requestor          address.Address
	ResourceIdentifier address.Address
	Name               string
	FeeSnapshot        uint64
}

// RequestDecidedEvent is emitted when the administrator approves or denies a
// listing request
type RequestDecidedEvent struct {
	Address   address.Address
	Config    address.Address
	Recipient address.Address
	State     ApprovalState
	Fee       uint64
}

// RequestUpdatedEvent is emitted when the enabled flag or metadata of a
// listing request changes
type RequestUpdatedEvent struct {
	Address address.Address
	Enabled bool
}

// RequestRefundedEvent is emitted when escrow is returned to the requestor
type RequestRefundedEvent struct {
	Address   address.Address
	Requestor address.Address
	Amount    uint64
}
