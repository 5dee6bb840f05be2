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

package definitions

// Scheme identifies the password encoding found in a stored password value.
type Scheme uint8

// Driver is a numeric identifier for a supported SQL driver.
type Driver uint8

// DbgModule represents a debug module identifier.
type DbgModule uint8

func (s Scheme) String() string {
	switch s {
	case SchemeBcrypt:
		return SchemeBcryptName
	case SchemePHPass:
		return SchemePHPassName
	case SchemeIteratedDigest:
		return SchemeIteratedDigestName
	case SchemeCrypt:
		return SchemeCryptName
	case SchemePlain:
		return SchemePlainName
	default:
		return SchemeUnknownName
	}
}

func (d Driver) String() string {
	switch d {
	case DriverMySQL:
		return DriverMySQLName
	case DriverPostgres:
		return DriverPostgresName
	case DriverSQLite:
		return DriverSQLiteName
	default:
		return DriverUnknownName
	}
}

func (d DbgModule) String() string {
	switch d {
	case DbgAll:
		return DbgAllName
	case DbgPassDB:
		return DbgPassDBName
	case DbgSQL:
		return DbgSQLName
	case DbgConfig:
		return DbgConfigName
	default:
		return ""
	}
}
