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

package keystore

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fxamacker/cbor/v2"
)

const (
	// SigningKeyType is the envelope type of identity key files
	SigningKeyType = "SigningKeyEd25519"

	// Limit reads to 1 MiB to guard against accidentally pointing at a
	// large file. Valid key files are well under this size.
	maxKeyFileSize = 1 << 20
)

// keyFileEnvelope represents the JSON structure of a key file.
type keyFileEnvelope struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	CborHex     string `json:"cborHex"`
}

// LoadIdentity loads an identity from a key file.
// Returns ErrInsecureFileMode if the file has group or other access.
//
// The file is opened first and permissions are checked on the open handle
// to avoid a TOCTOU race between the permission check and the read.
func LoadIdentity(path string) (*Identity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file %q: %w", path, err)
	}
	defer f.Close()

	if err := checkOpenFilePermissions(f); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(f, maxKeyFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	ident, err := parseKeyEnvelope(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key file %q: %w", path, err)
	}
	return ident, nil
}

// SaveIdentity writes an identity to a new key file with owner-only
// permissions. It refuses to overwrite an existing file
func SaveIdentity(path string, ident *Identity) error {
	data, err := marshalKeyEnvelope(ident)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrKeyFileExists, path)
		}
		return fmt.Errorf("failed to create key file %q: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write key file %q: %w", path, err)
	}
	return f.Close()
}

func marshalKeyEnvelope(ident *Identity) ([]byte, error) {
	// Seed followed by public key
	keyBytes := bytes.Join(
		[][]byte{ident.seed(), ident.Address().Bytes()},
		nil,
	)
	cborData, err := cbor.Marshal(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode key: %w", err)
	}
	env := keyFileEnvelope{
		Type:        SigningKeyType,
		Description: ident.Description(),
		CborHex:     hex.EncodeToString(cborData),
	}
	data, err := json.MarshalIndent(env, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// parseKeyEnvelope parses a key file envelope.
func parseKeyEnvelope(fileBytes []byte) (*Identity, error) {
	var env keyFileEnvelope
	if err := json.Unmarshal(fileBytes, &env); err != nil {
		return nil, fmt.Errorf("could not parse key file envelope: %w", err)
	}
	if env.Type != SigningKeyType {
		return nil, fmt.Errorf("%w: unknown key type: %s", ErrInvalidKey, env.Type)
	}
	cborData, err := hex.DecodeString(env.CborHex)
	if err != nil {
		return nil, fmt.Errorf("could not decode key from hex: %w", err)
	}
	var keyBytes []byte
	if err := cbor.Unmarshal(cborData, &keyBytes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal key CBOR: %w", err)
	}
	switch len(keyBytes) {
	case ed25519.SeedSize:
		return NewIdentity(keyBytes, env.Description)
	case ed25519.SeedSize + ed25519.PublicKeySize:
		// Derive the public key from the seed rather than trusting file contents
		ident, err := NewIdentity(keyBytes[:ed25519.SeedSize], env.Description)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(ident.Address().Bytes(), keyBytes[ed25519.SeedSize:]) {
			return nil, fmt.Errorf(
				"%w: public key does not match seed",
				ErrInvalidKey,
			)
		}
		return ident, nil
	default:
		return nil, fmt.Errorf(
			"%w: expected %d or %d key bytes, got %d",
			ErrInvalidKey,
			ed25519.SeedSize,
			ed25519.SeedSize+ed25519.PublicKeySize,
			len(keyBytes),
		)
	}
}
