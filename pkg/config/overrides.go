// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/spf13/viper"
)

// Viper keys understood by ApplyOverrides. Each is also readable from the
// environment as KHV_<KEY> with dashes turned into underscores.
const (
	KeyCABundle        = "ca-bundle"
	KeyTimeout         = "timeout"
	KeySecretsProvider = "secrets-provider"
	KeyTelemetry       = "telemetry"
)

// ApplyOverrides layers flag and environment values held by v over c. Only
// keys that were explicitly set are applied.
func ApplyOverrides(c *Config, v *viper.Viper) {
	if v == nil {
		return
	}
	if v.IsSet(KeyCABundle) {
		c.Network.CABundle = v.GetString(KeyCABundle)
	}
	if v.IsSet(KeyTimeout) {
		if d := v.GetDuration(KeyTimeout); d > 0 {
			c.Network.Timeout = d
		}
	}
	if v.IsSet(KeySecretsProvider) {
		c.Secrets.ProviderType = v.GetString(KeySecretsProvider)
	}
	if v.IsSet(KeyTelemetry) {
		c.Telemetry.Enabled = v.GetBool(KeyTelemetry)
	}
}
