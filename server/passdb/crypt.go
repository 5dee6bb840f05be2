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
	"crypto/subtle"

	"github.com/croessner/nauthilus-sqlpassdb/server/util"
)

// verifyCryptOrPlain tries the crypt family first and falls back to a literal comparison. Both checks are
// independent, an error from the first one does not prevent the second.
func verifyCryptOrPlain(password string, stored string, salt *string, pepper string) (bool, error) {
	matched, err := verifyCrypt(password, stored, salt, pepper)
	if matched {
		return true, nil
	}

	if plain, _ := verifyPlain(password, stored, salt, pepper); plain {
		return true, nil
	}

	return false, err
}

// verifyCrypt handles DES-crypt, MD5-crypt, SHA-crypt, argon2 and {SSHA256}/{SSHA512} values. The pepper is not
// used.
func verifyCrypt(password string, stored string, _ *string, _ string) (bool, error) {
	return util.ComparePasswords(stored, password)
}

// verifyPlain compares the stored value literally.
func verifyPlain(password string, stored string, _ *string, _ string) (bool, error) {
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1, nil
}
