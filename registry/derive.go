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

// DefaultProgramID is the address the registry program is deployed at
var DefaultProgramID = address.MustParse(
	"8Dk32gShk85fpj2xDC99p3svCrWDuJf8tQ9JWWfddev3",
)

// DeriveRequestAddress returns the listing request address for a
// configuration and seed identity along with its bump
func DeriveRequestAddress(
	programID address.Address,
	config address.Address,
	seed address.Address,
) (address.Address, uint8, error) {
	return address.FindProgramAddress(
		[][]byte{config.Bytes(), seed.Bytes()},
		programID,
	)
}
