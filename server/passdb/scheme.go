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
	"strings"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/util"
)

// verifyFunc checks password against a stored value. salt is nil unless a salt column is configured and set.
type verifyFunc func(password string, stored string, salt *string, pepper string) (bool, error)

// magic returns the scheme identifier of a modular crypt value, i.e. "2a" for "$2a$10$...".
func magic(stored string) string {
	if !strings.HasPrefix(stored, "$") {
		return ""
	}

	parts := strings.Split(stored, "$")
	if len(parts) < 2 {
		return ""
	}

	return parts[1]
}

// DetectScheme determines how a stored password was encoded by looking at its structure only.
func DetectScheme(stored string) definitions.Scheme {
	if stored == "" {
		return definitions.SchemeUnknown
	}

	switch magic(stored) {
	case "2", "2a", "2b", "2y":
		return definitions.SchemeBcrypt
	case "H", "P":
		return definitions.SchemePHPass
	case "sha", "s":
		return definitions.SchemeIteratedDigest
	}

	if util.IsCryptFormat(stored) {
		return definitions.SchemeCrypt
	}

	return definitions.SchemePlain
}

// verifierFor returns the check for scheme. Unknown schemes never match.
func verifierFor(scheme definitions.Scheme) verifyFunc {
	switch scheme {
	case definitions.SchemeBcrypt:
		return verifyBcrypt
	case definitions.SchemePHPass:
		return verifyPHPass
	case definitions.SchemeIteratedDigest:
		return verifyIteratedDigest
	case definitions.SchemeCrypt:
		return verifyCryptOrPlain
	case definitions.SchemePlain:
		return verifyPlain
	default:
		return func(string, string, *string, string) (bool, error) {
			return false, nil
		}
	}
}
