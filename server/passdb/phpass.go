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
	"crypto/md5"
	"crypto/subtle"
	"strings"

	"github.com/croessner/nauthilus-sqlpassdb/server/errors"
)

const (
	itoa64 = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	phpassSettingLen = 12
	phpassHashLen    = 34
	phpassMinCostLog = 7
	phpassMaxCostLog = 30
)

// verifyPHPass checks portable phpass hashes ("$P$" and "$H$"). The pepper is not used.
func verifyPHPass(password string, stored string, _ *string, _ string) (bool, error) {
	computed, err := phpassCrypt(password, stored)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) == 1, nil
}

// phpassCrypt hashes password with the cost and salt taken from setting.
func phpassCrypt(password string, setting string) (string, error) {
	if len(setting) != phpassHashLen {
		return "", errors.ErrMalformedHash
	}

	if id := setting[:3]; id != "$P$" && id != "$H$" {
		return "", errors.ErrMalformedHash
	}

	costLog := strings.IndexByte(itoa64, setting[3])
	if costLog < phpassMinCostLog || costLog > phpassMaxCostLog {
		return "", errors.ErrMalformedHash
	}

	salt := setting[4:phpassSettingLen]
	count := 1 << costLog

	hash := md5.Sum([]byte(salt + password))

	for ; count > 0; count-- {
		hash = md5.Sum(append(hash[:], password...))
	}

	return setting[:phpassSettingLen] + phpassEncode64(hash[:]), nil
}

// phpassEncode64 is the little-endian base64 variant used by phpass. It differs from crypt(3) encodings in the
// order in which bits are consumed.
func phpassEncode64(input []byte) string {
	var sb strings.Builder

	count := len(input)
	index := 0

	for index < count {
		value := int(input[index])
		index++

		sb.WriteByte(itoa64[value&0x3f])

		if index < count {
			value |= int(input[index]) << 8
		}

		sb.WriteByte(itoa64[(value>>6)&0x3f])

		if index >= count {
			break
		}

		index++

		if index < count {
			value |= int(input[index]) << 16
		}

		sb.WriteByte(itoa64[(value>>12)&0x3f])

		if index >= count {
			break
		}

		index++

		sb.WriteByte(itoa64[(value>>18)&0x3f])
	}

	return sb.String()
}
