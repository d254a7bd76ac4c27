// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package client

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/containerregistry/armcontainerregistry"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/msi/armmsi"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/platform-engineering-labs/acr-provisioner/pkg/config"
)

// Client wraps the Azure SDK clients this tool needs.
//
// We use resource-specific clients for type-safe operations, following
// Azure SDK conventions. Long-running operations are driven to
// completion here (PollUntilDone) so that callers see a single
// synchronous request/response; the SDK poller owns the polling policy.
type Client struct {
	Config                       *config.Config
	RegistriesClient             *armcontainerregistry.RegistriesClient
	RoleAssignmentsClient        *armauthorization.RoleAssignmentsClient
	RoleDefinitionsClient        *armauthorization.RoleDefinitionsClient
	ResourceGroupsClient         *armresources.ResourceGroupsClient
	UserAssignedIdentitiesClient *armmsi.UserAssignedIdentitiesClient
	credential                   azcore.TokenCredential
}

// NewClient creates a new Azure client wrapper.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	cred, err := cfg.ToAzureCredential(ctx)
	if err != nil {
		return nil, err
	}

	clientOptions := &arm.ClientOptions{}

	registriesClient, err := armcontainerregistry.NewRegistriesClient(cfg.SubscriptionID, cred, clientOptions)
	if err != nil {
		return nil, err
	}

	roleAssignmentsClient, err := armauthorization.NewRoleAssignmentsClient(cfg.SubscriptionID, cred, clientOptions)
	if err != nil {
		return nil, err
	}

	roleDefinitionsClient, err := armauthorization.NewRoleDefinitionsClient(cred, clientOptions)
	if err != nil {
		return nil, err
	}

	resourceGroupsClient, err := armresources.NewResourceGroupsClient(cfg.SubscriptionID, cred, clientOptions)
	if err != nil {
		return nil, err
	}

	userAssignedIdentitiesClient, err := armmsi.NewUserAssignedIdentitiesClient(cfg.SubscriptionID, cred, clientOptions)
	if err != nil {
		return nil, err
	}

	return &Client{
		Config:                       cfg,
		RegistriesClient:             registriesClient,
		RoleAssignmentsClient:        roleAssignmentsClient,
		RoleDefinitionsClient:        roleDefinitionsClient,
		ResourceGroupsClient:         resourceGroupsClient,
		UserAssignedIdentitiesClient: userAssignedIdentitiesClient,
		credential:                   cred,
	}, nil
}

// CreateRegistry issues the registry create-or-update and blocks until
// the long-running operation completes.
func (c *Client) CreateRegistry(ctx context.Context, resourceGroup, name string, params armcontainerregistry.Registry) (armcontainerregistry.Registry, error) {
	poller, err := c.RegistriesClient.BeginCreate(ctx, resourceGroup, name, params, nil)
	if err != nil {
		return armcontainerregistry.Registry{}, err
	}
	resp, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return armcontainerregistry.Registry{}, err
	}
	return resp.Registry, nil
}

// CreateRoleAssignment creates a role assignment at the given scope.
// Role assignment creation is synchronous.
func (c *Client) CreateRoleAssignment(ctx context.Context, scope, name string, params armauthorization.RoleAssignmentCreateParameters) (armauthorization.RoleAssignment, error) {
	resp, err := c.RoleAssignmentsClient.Create(ctx, scope, name, params, nil)
	if err != nil {
		return armauthorization.RoleAssignment{}, err
	}
	return resp.RoleAssignment, nil
}

// ResolveRoleDefinition looks up a role definition ID by role name at
// the given scope, e.g. "AcrPull" within a subscription.
func (c *Client) ResolveRoleDefinition(ctx context.Context, scope, roleName string) (string, error) {
	filter := "roleName eq '" + roleName + "'"
	pager := c.RoleDefinitionsClient.NewListPager(scope, &armauthorization.RoleDefinitionsClientListOptions{
		Filter: &filter,
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return "", err
		}
		for _, def := range page.Value {
			if def.ID != nil {
				return *def.ID, nil
			}
		}
	}
	return "", nil
}

// EnsureResourceGroup creates or updates a resource group.
func (c *Client) EnsureResourceGroup(ctx context.Context, name string, params armresources.ResourceGroup) (armresources.ResourceGroup, error) {
	resp, err := c.ResourceGroupsClient.CreateOrUpdate(ctx, name, params, nil)
	if err != nil {
		return armresources.ResourceGroup{}, err
	}
	return resp.ResourceGroup, nil
}

// CreateUserAssignedIdentity creates or updates a user-assigned
// managed identity.
func (c *Client) CreateUserAssignedIdentity(ctx context.Context, resourceGroup, name string, params armmsi.Identity) (armmsi.Identity, error) {
	resp, err := c.UserAssignedIdentitiesClient.CreateOrUpdate(ctx, resourceGroup, name, params, nil)
	if err != nil {
		return armmsi.Identity{}, err
	}
	return resp.Identity, nil
}
