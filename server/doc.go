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


/*
sqlpassdb checks a username and password against an existing SQL user table. The table may contain password hashes
of several legacy schemes (bcrypt, phpass, iterated SHA1 digests, crypt(3) and plain text), which are detected by
their structure.

Usage:

	sqlpassdb --config /etc/sqlpassdb/sqlpassdb.yml --username alice
	echo "secret" | sqlpassdb --config sqlpassdb.yml --username alice --password-stdin
	sqlpassdb --config sqlpassdb.yml --username alice --lookup-only

On success the user data is printed as JSON. The exit status is 0 on success, 1 for a failed authentication or an
unknown user, 2 for configuration and usage errors and 3 if the database could not be queried.
*/

package main
