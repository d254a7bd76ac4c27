// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build integration

package provision

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platform-engineering-labs/acr-provisioner/pkg/client"
	"github.com/platform-engineering-labs/acr-provisioner/pkg/config"
	"github.com/platform-engineering-labs/acr-provisioner/pkg/naming"
)

func getTestSubscriptionID(t *testing.T) string {
	subID := os.Getenv("AZURE_SUBSCRIPTION_ID")
	if subID == "" {
		t.Skip("AZURE_SUBSCRIPTION_ID environment variable not set")
	}
	return subID
}

func newTestClient(t *testing.T, subscriptionID string) *client.Client {
	cfg := &config.Config{SubscriptionID: subscriptionID}
	azureClient, err := client.NewClient(context.Background(), cfg)
	require.NoError(t, err)
	return azureClient
}

// deleteResourceGroup removes the test resource group and everything in it.
func deleteResourceGroup(ctx context.Context, azureClient *client.Client, rgName string) {
	poller, err := azureClient.ResourceGroupsClient.BeginDelete(ctx, rgName, nil)
	if err != nil {
		log.Printf("Failed to start deletion of resource group %s: %v\n", rgName, err)
		return
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		log.Printf("Failed to delete resource group %s: %v\n", rgName, err)
	} else {
		log.Printf("Successfully deleted resource group: %s\n", rgName)
	}
}

func TestProvision_Integration(t *testing.T) {
	ctx := context.Background()
	subscriptionID := getTestSubscriptionID(t)
	azureClient := newTestClient(t, subscriptionID)

	token := naming.NewResourceToken()
	spec := &Spec{
		Location:      "eastus",
		ResourceGroup: fmt.Sprintf("rg-acrprov-test-%d", time.Now().Unix()),
		ResourceToken: token,
		Tags: map[string]string{
			"test":    "acr-provisioner",
			"purpose": "integration-test",
		},
	}

	bootstrap := &Bootstrap{Groups: azureClient, Identities: azureClient}
	require.NoError(t, bootstrap.EnsureResourceGroup(ctx, spec))
	t.Cleanup(func() {
		deleteResourceGroup(context.Background(), azureClient, spec.ResourceGroup)
	})

	// Use a managed identity as the grantee so the run does not depend
	// on any pre-existing principal.
	principalID, err := bootstrap.EnsureIdentity(ctx, spec)
	require.NoError(t, err)
	spec.PrincipalID = principalID
	spec.PrincipalType = "ServicePrincipal"
	spec.DoRoleAssignments = true

	provisioner := &Provisioner{
		Registries:     azureClient,
		Roles:          azureClient,
		RoleDefs:       azureClient,
		SubscriptionID: subscriptionID,
		Retry:          DefaultRetryPolicy(),
	}

	result, err := provisioner.Provision(ctx, spec)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "cr"+token, result.Name)
	assert.True(t, strings.HasSuffix(result.LoginServer, ".azurecr.io"))
	assert.Contains(t, result.ResourceID, "Microsoft.ContainerRegistry/registries/"+result.Name)
	t.Logf("Provisioned registry %s at %s", result.Name, result.LoginServer)
}

func TestProvision_Integration_Conflict(t *testing.T) {
	ctx := context.Background()
	subscriptionID := getTestSubscriptionID(t)
	azureClient := newTestClient(t, subscriptionID)

	token := naming.NewResourceToken()
	spec := &Spec{
		Location:      "eastus",
		ResourceGroup: fmt.Sprintf("rg-acrprov-test-%d", time.Now().Unix()),
		ResourceToken: token,
	}

	bootstrap := &Bootstrap{Groups: azureClient}
	require.NoError(t, bootstrap.EnsureResourceGroup(ctx, spec))
	t.Cleanup(func() {
		deleteResourceGroup(context.Background(), azureClient, spec.ResourceGroup)
	})

	provisioner := &Provisioner{
		Registries:     azureClient,
		Roles:          azureClient,
		RoleDefs:       azureClient,
		SubscriptionID: subscriptionID,
	}

	_, err := provisioner.Provision(ctx, spec)
	require.NoError(t, err)

	// Second create with a bad SKU against the same name is rejected
	// downstream and surfaces as a ProvisioningError.
	spec.SKU = "NoSuchSKU"
	result, err := provisioner.Provision(ctx, spec)
	require.Error(t, err)
	assert.Nil(t, result)

	var pe *ProvisioningError
	require.ErrorAs(t, err, &pe)
	t.Logf("Downstream rejection: kind=%s code=%s", pe.Kind, pe.Code)
}
