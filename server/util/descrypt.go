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
	"regexp"
	"strings"

	"github.com/croessner/nauthilus-sqlpassdb/server/errors"
)

// desCryptAlphabet is the 64 character alphabet of traditional crypt(3) values.
const desCryptAlphabet = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// desCryptPattern matches a traditional DES-crypt value: two salt characters followed by eleven hash characters.
var desCryptPattern = regexp.MustCompile(`^[./0-9A-Za-z]{13}$`)

// Bit permutations of DES, 1-based as published in FIPS 46.
var (
	desIP = [...]byte{
		58, 50, 42, 34, 26, 18, 10, 2, 60, 52, 44, 36, 28, 20, 12, 4,
		62, 54, 46, 38, 30, 22, 14, 6, 64, 56, 48, 40, 32, 24, 16, 8,
		57, 49, 41, 33, 25, 17, 9, 1, 59, 51, 43, 35, 27, 19, 11, 3,
		61, 53, 45, 37, 29, 21, 13, 5, 63, 55, 47, 39, 31, 23, 15, 7,
	}

	desFP = [...]byte{
		40, 8, 48, 16, 56, 24, 64, 32, 39, 7, 47, 15, 55, 23, 63, 31,
		38, 6, 46, 14, 54, 22, 62, 30, 37, 5, 45, 13, 53, 21, 61, 29,
		36, 4, 44, 12, 52, 20, 60, 28, 35, 3, 43, 11, 51, 19, 59, 27,
		34, 2, 42, 10, 50, 18, 58, 26, 33, 1, 41, 9, 49, 17, 57, 25,
	}

	desPC1C = [...]byte{
		57, 49, 41, 33, 25, 17, 9, 1, 58, 50, 42, 34, 26, 18, 10, 2,
		59, 51, 43, 35, 27, 19, 11, 3, 60, 52, 44, 36,
	}

	desPC1D = [...]byte{
		63, 55, 47, 39, 31, 23, 15, 7, 62, 54, 46, 38, 30, 22, 14, 6,
		61, 53, 45, 37, 29, 21, 13, 5, 28, 20, 12, 4,
	}

	desShifts = [...]byte{
		1, 1, 2, 2, 2, 2, 2, 2, 1, 2, 2, 2, 2, 2, 2, 1,
	}

	desPC2C = [...]byte{
		14, 17, 11, 24, 1, 5, 3, 28, 15, 6, 21, 10, 23, 19, 12, 4,
		26, 8, 16, 7, 27, 20, 13, 2,
	}

	desPC2D = [...]byte{
		41, 52, 31, 37, 47, 55, 30, 40, 51, 45, 33, 48, 44, 49, 39, 56,
		34, 53, 46, 42, 50, 36, 29, 32,
	}

	desE = [...]byte{
		32, 1, 2, 3, 4, 5, 4, 5, 6, 7, 8, 9, 8, 9, 10, 11,
		12, 13, 12, 13, 14, 15, 16, 17, 16, 17, 18, 19, 20, 21, 20, 21,
		22, 23, 24, 25, 24, 25, 26, 27, 28, 29, 28, 29, 30, 31, 32, 1,
	}

	desP = [...]byte{
		16, 7, 20, 21, 29, 12, 28, 17, 1, 15, 23, 26, 5, 18, 31, 10,
		2, 8, 24, 14, 32, 27, 3, 9, 19, 13, 30, 6, 22, 11, 4, 25,
	}

	desS = [8][64]byte{
		{
			14, 4, 13, 1, 2, 15, 11, 8, 3, 10, 6, 12, 5, 9, 0, 7,
			0, 15, 7, 4, 14, 2, 13, 1, 10, 6, 12, 11, 9, 5, 3, 8,
			4, 1, 14, 8, 13, 6, 2, 11, 15, 12, 9, 7, 3, 10, 5, 0,
			15, 12, 8, 2, 4, 9, 1, 7, 5, 11, 3, 14, 10, 0, 6, 13,
		},
		{
			15, 1, 8, 14, 6, 11, 3, 4, 9, 7, 2, 13, 12, 0, 5, 10,
			3, 13, 4, 7, 15, 2, 8, 14, 12, 0, 1, 10, 6, 9, 11, 5,
			0, 14, 7, 11, 10, 4, 13, 1, 5, 8, 12, 6, 9, 3, 2, 15,
			13, 8, 10, 1, 3, 15, 4, 2, 11, 6, 7, 12, 0, 5, 14, 9,
		},
		{
			10, 0, 9, 14, 6, 3, 15, 5, 1, 13, 12, 7, 11, 4, 2, 8,
			13, 7, 0, 9, 3, 4, 6, 10, 2, 8, 5, 14, 12, 11, 15, 1,
			13, 6, 4, 9, 8, 15, 3, 0, 11, 1, 2, 12, 5, 10, 14, 7,
			1, 10, 13, 0, 6, 9, 8, 7, 4, 15, 14, 3, 11, 5, 2, 12,
		},
		{
			7, 13, 14, 3, 0, 6, 9, 10, 1, 2, 8, 5, 11, 12, 4, 15,
			13, 8, 11, 5, 6, 15, 0, 3, 4, 7, 2, 12, 1, 10, 14, 9,
			10, 6, 9, 0, 12, 11, 7, 13, 15, 1, 3, 14, 5, 2, 8, 4,
			3, 15, 0, 6, 10, 1, 13, 8, 9, 4, 5, 11, 12, 7, 2, 14,
		},
		{
			2, 12, 4, 1, 7, 10, 11, 6, 8, 5, 3, 15, 13, 0, 14, 9,
			14, 11, 2, 12, 4, 7, 13, 1, 5, 0, 15, 10, 3, 9, 8, 6,
			4, 2, 1, 11, 10, 13, 7, 8, 15, 9, 12, 5, 6, 3, 0, 14,
			11, 8, 12, 7, 1, 14, 2, 13, 6, 15, 0, 9, 10, 4, 5, 3,
		},
		{
			12, 1, 10, 15, 9, 2, 6, 8, 0, 13, 3, 4, 14, 7, 5, 11,
			10, 15, 4, 2, 7, 12, 9, 5, 6, 1, 13, 14, 0, 11, 3, 8,
			9, 14, 15, 5, 2, 8, 12, 3, 7, 0, 4, 10, 1, 13, 11, 6,
			4, 3, 2, 12, 9, 5, 15, 10, 11, 14, 1, 7, 6, 0, 8, 13,
		},
		{
			4, 11, 2, 14, 15, 0, 8, 13, 3, 12, 9, 7, 5, 10, 6, 1,
			13, 0, 11, 7, 4, 9, 1, 10, 14, 3, 5, 12, 2, 15, 8, 6,
			1, 4, 11, 13, 12, 3, 7, 14, 10, 15, 6, 8, 0, 5, 9, 2,
			6, 11, 13, 8, 1, 4, 10, 7, 9, 5, 0, 15, 14, 2, 3, 12,
		},
		{
			13, 2, 8, 4, 6, 15, 11, 1, 10, 9, 3, 14, 5, 0, 12, 7,
			1, 15, 13, 8, 10, 3, 7, 4, 12, 5, 6, 11, 0, 14, 9, 2,
			7, 11, 4, 1, 9, 12, 14, 2, 0, 6, 10, 13, 15, 3, 5, 8,
			2, 1, 14, 7, 4, 10, 8, 13, 15, 12, 9, 0, 3, 5, 6, 11,
		},
	}
)

// IsDESCrypt reports whether value has the shape of a traditional DES-crypt hash.
func IsDESCrypt(value string) bool {
	return desCryptPattern.MatchString(value)
}

// DESCrypt computes the traditional crypt(3) value for password. Only the first eight characters of the password
// and seven bits of each character are significant. The first two characters of salt perturb the expansion table.
func DESCrypt(password string, salt string) (string, error) {
	if len(salt) < 2 || !strings.ContainsRune(desCryptAlphabet, rune(salt[0])) ||
		!strings.ContainsRune(desCryptAlphabet, rune(salt[1])) {
		return "", errors.ErrMalformedHash
	}

	keys := desKeySchedule(password)
	expansion := desE

	for i := range 2 {
		value := strings.IndexByte(desCryptAlphabet, salt[i])

		for j := range 6 {
			if (value>>j)&1 == 1 {
				expansion[6*i+j], expansion[6*i+j+24] = expansion[6*i+j+24], expansion[6*i+j]
			}
		}
	}

	var block [66]byte

	for range 25 {
		desEncryptBlock((*[64]byte)(block[:64]), &keys, &expansion)
	}

	var result strings.Builder

	result.Grow(13)
	result.WriteString(salt[:2])

	for i := range 11 {
		var value byte

		for j := range 6 {
			value = value<<1 | block[6*i+j]
		}

		result.WriteByte(desCryptAlphabet[value])
	}

	return result.String(), nil
}

// desKeySchedule derives the sixteen round keys from the low seven bits of the first eight password bytes.
func desKeySchedule(password string) [16][48]byte {
	var (
		key  [64]byte
		c, d [28]byte
		keys [16][48]byte
	)

	for i := 0; i < len(password) && i < 8; i++ {
		for j := range 7 {
			key[i*8+j] = (password[i] >> (6 - j)) & 1
		}
	}

	for i := range 28 {
		c[i] = key[desPC1C[i]-1]
		d[i] = key[desPC1D[i]-1]
	}

	for round, shift := range desShifts {
		for range shift {
			c = [28]byte(append(c[1:], c[0]))
			d = [28]byte(append(d[1:], d[0]))
		}

		for i := range 24 {
			keys[round][i] = c[desPC2C[i]-1]
			keys[round][i+24] = d[desPC2D[i]-28-1]
		}
	}

	return keys
}

// desEncryptBlock encrypts block in place, one bit per byte, using the salted expansion table.
func desEncryptBlock(block *[64]byte, keys *[16][48]byte, expansion *[48]byte) {
	var (
		lr     [64]byte
		preS   [48]byte
		f      [32]byte
		output [64]byte
	)

	for i := range 64 {
		lr[i] = block[desIP[i]-1]
	}

	left := [32]byte(lr[:32])
	right := [32]byte(lr[32:])

	for round := range 16 {
		for i := range 48 {
			preS[i] = right[expansion[i]-1] ^ keys[round][i]
		}

		for box := range 8 {
			t := 6 * box
			index := preS[t]<<5 | preS[t+5]<<4 | preS[t+1]<<3 | preS[t+2]<<2 | preS[t+3]<<1 | preS[t+4]
			value := desS[box][index]

			for bit := range 4 {
				f[4*box+bit] = (value >> (3 - bit)) & 1
			}
		}

		next := left

		for i := range 32 {
			next[i] ^= f[desP[i]-1]
		}

		left, right = right, next
	}

	copy(lr[:32], right[:])
	copy(lr[32:], left[:])

	for i := range 64 {
		output[i] = lr[desFP[i]-1]
	}

	*block = output
}
