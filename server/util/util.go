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
	"crypto/subtle"
	stderrors "errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
	"github.com/croessner/nauthilus-sqlpassdb/server/errors"
	"github.com/croessner/nauthilus-sqlpassdb/server/log"
	"github.com/croessner/nauthilus-sqlpassdb/server/log/level"

	"github.com/simia-tech/crypt"
	"golang.org/x/crypto/bcrypt"
)

// SQL identifiers must be plain names, optionally qualified by one schema name. Quoting characters, whitespace and
// anything else that could change the statement are rejected.
var sqlIdentifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// cryptPattern matches the modular crypt format "$<id>$..." used by MD5-crypt, SHA-crypt, bcrypt and argon2.
var cryptPattern = regexp.MustCompile(`^\$[0-9A-Za-z]+\$[^$]`)

// bcryptPattern matches every bcrypt minor version: $2$, $2a$, $2b$ and $2y$.
var bcryptPattern = regexp.MustCompile(`^\$2[aby]?\$`)

// ValidateSQLIdentifier reports whether name can be interpolated into a statement as table or column name.
func ValidateSQLIdentifier(name string) bool {
	return sqlIdentifierPattern.MatchString(name)
}

// IsCryptFormat reports whether value follows the grammar understood by ComparePasswords.
func IsCryptFormat(value string) bool {
	return cryptPattern.MatchString(value) || saltedSHAPattern.MatchString(value) || desCryptPattern.MatchString(value)
}

// FormatDurationMs formats a time.Duration as milliseconds with three fractional digits, e.g. "12.345ms".
func FormatDurationMs(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)

	return fmt.Sprintf("%.3fms", ms)
}

// ComparePasswords hashes plainPassword with the parameters found in hashPassword and compares both in constant
// time. Salted SHA values ({SSHA256}, {SSHA512}) and traditional DES-crypt are handled here, bcrypt goes through
// x/crypto/bcrypt and everything else in modular crypt format is delegated to simia-tech/crypt (MD5-crypt,
// SHA-256/512-crypt, argon2). Values that cannot be parsed return an error and false.
func ComparePasswords(hashPassword string, plainPassword string) (bool, error) {
	if strings.HasPrefix(hashPassword, "{SSHA") {
		stored, err := ParseSaltedSHA(hashPassword)
		if err != nil {
			return false, err
		}

		return stored.Matches(plainPassword), nil
	}

	if desCryptPattern.MatchString(hashPassword) {
		encoded, err := DESCrypt(plainPassword, hashPassword[:2])
		if err != nil {
			return false, err
		}

		return subtle.ConstantTimeCompare([]byte(encoded), []byte(hashPassword)) == 1, nil
	}

	if bcryptPattern.MatchString(hashPassword) {
		err := bcrypt.CompareHashAndPassword([]byte(hashPassword), []byte(plainPassword))
		if err == nil {
			return true, nil
		}

		if stderrors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}

		return false, err
	}

	if !cryptPattern.MatchString(hashPassword) {
		return false, errors.ErrUnsupportedAlgorithm
	}

	_, _, _, pwhash, err := crypt.DecodeSettings(hashPassword)
	if err != nil {
		return false, err
	}

	if pwhash == "" {
		return false, errors.ErrMalformedHash
	}

	settings, _, found := strings.Cut(hashPassword, pwhash)
	if !found {
		return false, errors.ErrUnsupportedAlgorithm
	}

	encoded, err := crypt.Crypt(plainPassword, settings)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare([]byte(encoded), []byte(hashPassword)) == 1, nil
}

// NormalizeValue converts a value returned by a SQL driver into a nullable string. MariaDB and MySQL return text
// columns as []uint8, SQLite returns int64 for booleans and PostgreSQL returns typed values.
func NormalizeValue(value any) *string {
	var result string

	switch v := value.(type) {
	case nil:
		return nil
	case string:
		result = v
	case []byte:
		result = string(v)
	case int64:
		result = strconv.FormatInt(v, 10)
	case int32:
		result = strconv.FormatInt(int64(v), 10)
	case int:
		result = strconv.Itoa(v)
	case uint64:
		result = strconv.FormatUint(v, 10)
	case float64:
		result = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		result = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		result = strconv.FormatBool(v)
	case time.Time:
		result = v.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		result = v.String()
	default:
		result = fmt.Sprint(v)
	}

	return &result
}

// DebugModule logs keyvals at debug level tagged with the given debug module.
func DebugModule(module definitions.DbgModule, keyvals ...any) {
	keyvals = append([]any{definitions.LogKeyDebugModule, module.String()}, keyvals...)

	level.Debug(log.Logger).Log(keyvals...)
}
