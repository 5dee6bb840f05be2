// Copyright (C) 2026 Christian Rößner
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package util

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"regexp"
	"strconv"

	"github.com/croessner/nauthilus-sqlpassdb/server/errors"
)

// {SSHA256}payload, {SSHA512.HEX}payload or {SSHA256.B64}payload. Without an option the payload is base64.
var saltedSHAPattern = regexp.MustCompile(`^\{SSHA(256|512)(?:\.(HEX|B64))?}(.+)$`)

// SaltedSHA is an LDAP style salted SHA-2 password: the digest of password and salt, followed by the salt.
type SaltedSHA struct {
	Bits   int
	Hex    bool
	Digest []byte
	Salt   []byte
}

func newDigest(bits int) (hash.Hash, error) {
	switch bits {
	case 256:
		return sha256.New(), nil
	case 512:
		return sha512.New(), nil
	default:
		return nil, errors.ErrUnsupportedAlgorithm
	}
}

// NewSaltedSHA hashes password with salt using SHA-256 or SHA-512.
func NewSaltedSHA(password string, salt []byte, bits int, useHex bool) (*SaltedSHA, error) {
	digest, err := newDigest(bits)
	if err != nil {
		return nil, err
	}

	digest.Write([]byte(password))
	digest.Write(salt)

	return &SaltedSHA{Bits: bits, Hex: useHex, Digest: digest.Sum(nil), Salt: bytes.Clone(salt)}, nil
}

// ParseSaltedSHA decodes a {SSHA256} or {SSHA512} value. The payload must hold at least one byte of salt.
func ParseSaltedSHA(value string) (*SaltedSHA, error) {
	subs := saltedSHAPattern.FindStringSubmatch(value)
	if subs == nil {
		return nil, errors.ErrUnsupportedAlgorithm
	}

	bits, _ := strconv.Atoi(subs[1])
	stored := &SaltedSHA{Bits: bits, Hex: subs[2] == "HEX"}

	var (
		payload []byte
		err     error
	)

	if stored.Hex {
		payload, err = hex.DecodeString(subs[3])
	} else {
		payload, err = base64.StdEncoding.DecodeString(subs[3])
	}

	if err != nil || len(payload) <= bits/8 {
		return nil, errors.ErrMalformedHash
	}

	stored.Digest, stored.Salt = payload[:bits/8], payload[bits/8:]

	return stored, nil
}

// Matches hashes password with the stored salt and compares the digests in constant time.
func (s *SaltedSHA) Matches(password string) bool {
	candidate, err := NewSaltedSHA(password, s.Salt, s.Bits, s.Hex)
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(candidate.Digest, s.Digest) == 1
}

func (s *SaltedSHA) String() string {
	payload := append(bytes.Clone(s.Digest), s.Salt...)

	if s.Hex {
		return fmt.Sprintf("{SSHA%d.HEX}%s", s.Bits, hex.EncodeToString(payload))
	}

	return fmt.Sprintf("{SSHA%d}%s", s.Bits, base64.StdEncoding.EncodeToString(payload))
}
