// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package config

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. ACR_PROVISIONER_SUBSCRIPTION_ID.
const EnvPrefix = "ACR_PROVISIONER"

// Config holds everything a provisioning run needs. Values are bound
// from flags, environment and an optional config file via viper.
type Config struct {
	SubscriptionID string `mapstructure:"subscription-id"`
	Location       string `mapstructure:"location"`
	ResourceGroup  string `mapstructure:"resource-group"`

	// ResourceToken is the uniqueness suffix appended to the registry
	// abbreviation. Minted with naming.NewResourceToken when empty.
	ResourceToken string            `mapstructure:"resource-token"`
	Tags          map[string]string `mapstructure:"tags"`
	Abbreviations map[string]string `mapstructure:"abbreviations"`

	// Role assignment inputs.
	DoRoleAssignments bool   `mapstructure:"role-assignments"`
	PrincipalID       string `mapstructure:"principal-id"`
	PrincipalType     string `mapstructure:"principal-type"`

	// Registry knobs passed through to ARM.
	SKU              string `mapstructure:"sku"`
	AdminUserEnabled bool   `mapstructure:"admin-enabled"`

	// Bootstrap options.
	CreateResourceGroup bool `mapstructure:"create-resource-group"`
	CreateIdentity      bool `mapstructure:"create-identity"`

	// Operation policy.
	RetryTransient bool          `mapstructure:"retry-transient"`
	Timeout        time.Duration `mapstructure:"timeout"`

	// Output format: text, json or dotenv.
	Output string `mapstructure:"output"`
}

// Load unmarshals the bound viper state into a Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToAzureCredential creates Azure credentials using the default
// credential chain: environment variables (AZURE_CLIENT_ID,
// AZURE_CLIENT_SECRET, AZURE_TENANT_ID), managed identity, Azure CLI,
// and so on.
func (c *Config) ToAzureCredential(ctx context.Context) (azcore.TokenCredential, error) {
	return azidentity.NewDefaultAzureCredential(nil)
}
