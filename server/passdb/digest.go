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

package passdb

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/errors"
)

// verifyIteratedDigest checks "$sha$<digest>" values whose salt lives in a separate column.
func verifyIteratedDigest(password string, stored string, salt *string, pepper string) (bool, error) {
	if salt == nil {
		return false, errors.ErrMissingSalt
	}

	parts := strings.Split(stored, "$")
	if len(parts) < 3 || parts[2] == "" {
		return false, errors.ErrMalformedHash
	}

	computed := iteratedDigest(password, *salt, pepper)

	return subtle.ConstantTimeCompare([]byte(computed), []byte(parts[2])) == 1, nil
}

// iteratedDigest seeds the digest with the pepper and hashes digest, salt, password and pepper joined by "--" ten
// times. Each round works on the lower-case hex form of the previous one.
func iteratedDigest(password string, salt string, pepper string) string {
	return iteratedDigestWithRounds(password, salt, pepper, definitions.IteratedDigestRounds)
}

func iteratedDigestWithRounds(password string, salt string, pepper string, rounds int) string {
	digest := pepper

	for range rounds {
		sum := sha1.Sum([]byte(strings.Join([]string{digest, salt, password, pepper}, definitions.IteratedDigestSeparator)))
		digest = hex.EncodeToString(sum[:])
	}

	return digest
}
