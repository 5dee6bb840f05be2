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

package config

import "fmt"

// Tracing configures OpenTelemetry. Spans are only recorded if Enabled is true.
type Tracing struct {
	Enabled          bool     `mapstructure:"enabled"`
	Exporter         string   `mapstructure:"exporter" validate:"omitempty,oneof=otlphttp none"`
	Endpoint         string   `mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure         bool     `mapstructure:"insecure"`
	ServiceName      string   `mapstructure:"service_name" validate:"omitempty,printascii"`
	SamplerRatio     float64  `mapstructure:"sampler_ratio" validate:"gte=0,lte=1"`
	Propagators      []string `mapstructure:"propagators" validate:"omitempty,dive,oneof=tracecontext baggage b3 b3multi jaeger"`
	LogExportResults bool     `mapstructure:"log_export_results"`
}

func (t *Tracing) String() string {
	if t == nil {
		return "<nil>"
	}

	return fmt.Sprintf("Tracing{Enabled:%t Exporter:'%s' Endpoint:'%s' SamplerRatio:%g}", t.Enabled, t.GetExporter(), t.Endpoint, t.SamplerRatio)
}

func (t *Tracing) IsEnabled() bool {
	if t == nil {
		return false
	}

	return t.Enabled
}

// GetExporter returns the exporter name, "otlphttp" if unset.
func (t *Tracing) GetExporter() string {
	if t == nil || t.Exporter == "" {
		return "otlphttp"
	}

	return t.Exporter
}

func (t *Tracing) GetEndpoint() string {
	if t == nil {
		return ""
	}

	return t.Endpoint
}

func (t *Tracing) IsInsecure() bool {
	if t == nil {
		return false
	}

	return t.Insecure
}

func (t *Tracing) GetServiceName() string {
	if t == nil {
		return ""
	}

	return t.ServiceName
}

// GetSamplerRatio returns the ratio of sampled root spans. Zero means sample everything.
func (t *Tracing) GetSamplerRatio() float64 {
	if t == nil || t.SamplerRatio == 0 {
		return 1
	}

	return t.SamplerRatio
}

func (t *Tracing) GetPropagators() []string {
	if t == nil {
		return nil
	}

	return t.Propagators
}

func (t *Tracing) IsLogExportResultsEnabled() bool {
	if t == nil {
		return false
	}

	return t.LogExportResults
}
