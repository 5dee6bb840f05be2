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

package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ValidationsCounter counts password validations per model and result (success, failure, not_found, lookup_error).
	ValidationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlpassdb_validations_total",
			Help: "Number of password validations.",
		},
		[]string{"model", "result"})

	// UserDataCounter counts profile lookups without a password check.
	UserDataCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlpassdb_user_data_total",
			Help: "Number of user data lookups.",
		},
		[]string{"model", "result"})

	// SchemeCounter counts which password scheme was detected for stored values.
	SchemeCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlpassdb_scheme_total",
			Help: "Number of verifications per detected password scheme.",
		},
		[]string{"scheme"})

	// LookupDurationHist measures the duration of row lookups.
	LookupDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sqlpassdb_lookup_duration_seconds",
			Help:    "Duration of SQL row lookups.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"})

	// LookupErrorsCounter counts lookups that failed with a backend error.
	LookupErrorsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlpassdb_lookup_errors_total",
			Help: "Number of SQL row lookups that failed.",
		},
		[]string{"model"})

	// LookupsInFlight is the number of lookups currently holding a connection.
	LookupsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sqlpassdb_lookups_in_flight",
			Help: "Number of SQL row lookups currently running.",
		},
		[]string{"model"})
)
