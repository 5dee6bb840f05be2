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

package monitoring

import (
	"net"
	"os"
	"strings"

	"github.com/croessner/nauthilus-sqlpassdb/server/definitions"
)

// ResolveServiceName returns the first usable OpenTelemetry service name out of the configured tracing service
// name, the instance name, the host name and fallbackName. Values that look like IP addresses are skipped.
func ResolveServiceName(tracingServiceName string, instanceName string, fallbackName string) string {
	candidates := []string{tracingServiceName, instanceName}

	if hostname, err := os.Hostname(); err == nil {
		candidates = append(candidates, hostname)
	}

	for _, candidate := range candidates {
		if name := strings.TrimSpace(candidate); name != "" && !looksLikeIP(name) {
			return name
		}
	}

	if name := strings.TrimSpace(fallbackName); name != "" {
		return name
	}

	return definitions.InstanceName
}

func looksLikeIP(s string) bool {
	host := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "["), "]")

	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	return net.ParseIP(host) != nil
}
