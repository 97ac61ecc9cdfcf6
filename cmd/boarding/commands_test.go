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

package main

import (
	"bytes"
	"crypto/sha256"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/keystore"
	"github.com/blinklabs-io/boarding/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress(label string) address.Address {
	return address.Address(sha256.Sum256([]byte(label)))
}

func TestDeriveCommand(t *testing.T) {
	configAddr := testAddress("config")
	seed := testAddress("collection")
	expected, bump, err := registry.DeriveRequestAddress(
		registry.DefaultProgramID,
		configAddr,
		seed,
	)
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := deriveCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{configAddr.String(), seed.String()})
	require.NoError(t, cmd.Execute())
	fields := strings.Fields(out.String())
	require.Len(t, fields, 2)
	assert.Equal(t, expected.String(), fields[0])
	parsedBump, err := strconv.ParseUint(fields[1], 10, 8)
	require.NoError(t, err)
	assert.Equal(t, bump, uint8(parsedBump))
}

func TestDeriveCommandInvalidAddress(t *testing.T) {
	cmd := deriveCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"0OIl", testAddress("seed").String()})
	require.Error(t, cmd.Execute())
}

func TestKeygenAndAddressCommands(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "admin.skey")

	var out bytes.Buffer
	cmd := keygenCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--description", "admin", keyFile})
	require.NoError(t, cmd.Execute())
	generated := strings.TrimSpace(out.String())

	ident, err := keystore.LoadIdentity(keyFile)
	require.NoError(t, err)
	assert.Equal(t, ident.Address().String(), generated)
	assert.Equal(t, "admin", ident.Description())

	out.Reset()
	cmd = addressCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{keyFile})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, generated, strings.TrimSpace(out.String()))

	// Existing key files are never overwritten
	cmd = keygenCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{keyFile})
	require.ErrorIs(t, cmd.Execute(), keystore.ErrKeyFileExists)
}
