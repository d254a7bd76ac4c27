// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package cmd contains the command-line interface for acr-provisioner.
// The root command provisions an Azure Container Registry and,
// conditionally, an AcrPull role assignment for a principal, then
// prints the registry's login server, resource ID and name.
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/platform-engineering-labs/acr-provisioner/pkg/client"
	"github.com/platform-engineering-labs/acr-provisioner/pkg/config"
	"github.com/platform-engineering-labs/acr-provisioner/pkg/naming"
	"github.com/platform-engineering-labs/acr-provisioner/pkg/provision"
)

// Execute runs the root command and exits on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		logrus.WithError(err).Fatal("Provisioning failed")
	}
}

// NewRootCommand builds the root command with a fresh viper instance
// so tests can run commands in isolation.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "acr-provisioner",
		Short: "Provision an Azure Container Registry with optional pull access",
		Long: `acr-provisioner creates an Azure Container Registry named by
convention (abbreviation + resource token), optionally grants a
principal the AcrPull role on it, and prints the registry login
server, resource ID and name for downstream pipelines.`,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			v.SetEnvPrefix(config.EnvPrefix)
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()

			if v.GetBool("debug") {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return runProvision(cmd, cfg)
		},
	}

	registerFlags(rootCmd.Flags())
	rootCmd.AddCommand(newTokenCommand())
	return rootCmd
}

func registerFlags(flags *pflag.FlagSet) {
	flags.String("subscription-id", "", "Azure subscription ID")
	flags.String("location", "", "Azure region for the registry")
	flags.String("resource-group", "", "resource group the registry lands in")
	flags.String("resource-token", "", "uniqueness suffix for resource names (minted when empty)")
	flags.StringToString("tags", nil, "tags applied to created resources (key=value)")
	flags.StringToString("abbreviations", nil, "naming-convention abbreviation overrides")

	flags.Bool("role-assignments", false, "grant the principal AcrPull on the registry")
	flags.String("principal-id", "", "object ID of the grantee")
	flags.String("principal-type", "User", "principal type: User, ServicePrincipal, Group, ForeignGroup or Device")

	flags.String("sku", "Basic", "registry SKU: Basic, Standard or Premium")
	flags.Bool("admin-enabled", false, "enable the registry admin user")

	flags.Bool("create-resource-group", false, "create the resource group before the registry")
	flags.Bool("create-identity", false, "create a user-assigned identity and use it as the grantee")

	flags.Bool("retry-transient", false, "retry throttled/timeout/network failures with backoff")
	flags.Duration("timeout", 15*time.Minute, "overall operation timeout")

	flags.String("output", "text", "output format: text, json or dotenv")
	flags.Bool("debug", false, "enable debug logging")
}

func runProvision(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.SubscriptionID == "" {
		return fmt.Errorf("subscription ID is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	azureClient, err := client.NewClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create Azure client: %w", err)
	}

	spec := specFromConfig(cfg)
	log := logrus.StandardLogger()

	bootstrap := &provision.Bootstrap{
		Groups:     azureClient,
		Identities: azureClient,
		Log:        log,
	}
	if cfg.CreateResourceGroup {
		if err := bootstrap.EnsureResourceGroup(ctx, spec); err != nil {
			return err
		}
	}
	if cfg.CreateIdentity {
		principalID, err := bootstrap.EnsureIdentity(ctx, spec)
		if err != nil {
			return err
		}
		spec.PrincipalID = principalID
		spec.PrincipalType = "ServicePrincipal"
	}

	provisioner := &provision.Provisioner{
		Registries:     azureClient,
		Roles:          azureClient,
		RoleDefs:       azureClient,
		SubscriptionID: cfg.SubscriptionID,
		Log:            log,
	}
	if cfg.RetryTransient {
		provisioner.Retry = provision.DefaultRetryPolicy()
	}

	result, err := provisioner.Provision(ctx, spec)
	if err != nil {
		return err
	}

	output, err := renderResult(result, cfg.Output)
	if err != nil {
		return err
	}
	cmd.Println(output)
	return nil
}

// specFromConfig maps the bound configuration onto a provisioning
// spec, minting a resource token when none was supplied.
func specFromConfig(cfg *config.Config) *provision.Spec {
	token := cfg.ResourceToken
	if token == "" {
		token = naming.NewResourceToken()
		logrus.WithField("resourceToken", token).Debug("Minted resource token")
	}

	return &provision.Spec{
		Location:          cfg.Location,
		Tags:              cfg.Tags,
		Abbrs:             naming.Abbreviations(cfg.Abbreviations),
		ResourceToken:     token,
		ResourceGroup:     cfg.ResourceGroup,
		PrincipalID:       cfg.PrincipalID,
		PrincipalType:     cfg.PrincipalType,
		DoRoleAssignments: cfg.DoRoleAssignments,
		SKU:               cfg.SKU,
		AdminUserEnabled:  cfg.AdminUserEnabled,
	}
}
