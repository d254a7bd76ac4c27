// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package provision

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/msi/armmsi"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/sirupsen/logrus"

	"github.com/platform-engineering-labs/acr-provisioner/pkg/naming"
)

// ResourceGroupEnsurer creates or updates resource groups.
type ResourceGroupEnsurer interface {
	EnsureResourceGroup(ctx context.Context, name string, params armresources.ResourceGroup) (armresources.ResourceGroup, error)
}

// IdentityCreator creates user-assigned managed identities.
type IdentityCreator interface {
	CreateUserAssignedIdentity(ctx context.Context, resourceGroup, name string, params armmsi.Identity) (armmsi.Identity, error)
}

// Bootstrap provisions the optional prerequisites of a registry run:
// the resource group it lands in and a managed identity to act as the
// grantee.
type Bootstrap struct {
	Groups     ResourceGroupEnsurer
	Identities IdentityCreator
	Log        logrus.FieldLogger
}

// EnsureResourceGroup creates or updates the resource group named in
// the spec at the spec's location.
func (b *Bootstrap) EnsureResourceGroup(ctx context.Context, spec *Spec) error {
	b.log().WithField("resourceGroup", spec.ResourceGroup).Info("Ensuring resource group")

	_, err := b.Groups.EnsureResourceGroup(ctx, spec.ResourceGroup, armresources.ResourceGroup{
		Location: stringPtr(spec.Location),
		Tags:     tagsToAzure(spec.Tags),
	})
	if err != nil {
		return wrapErr("ensure resource group", err)
	}
	return nil
}

// EnsureIdentity creates a user-assigned managed identity named after
// the resource token and returns its principal ID. The caller wires
// the principal into the spec as a ServicePrincipal grantee.
func (b *Bootstrap) EnsureIdentity(ctx context.Context, spec *Spec) (string, error) {
	name := spec.Abbrs.For(naming.KeyManagedIdentity) + spec.ResourceToken
	b.log().WithField("identity", name).Info("Ensuring user-assigned identity")

	identity, err := b.Identities.CreateUserAssignedIdentity(ctx, spec.ResourceGroup, name, armmsi.Identity{
		Location: stringPtr(spec.Location),
		Tags:     tagsToAzure(spec.Tags),
	})
	if err != nil {
		return "", wrapErr("ensure user-assigned identity", err)
	}
	if identity.Properties == nil || identity.Properties.PrincipalID == nil {
		return "", fmt.Errorf("ensure user-assigned identity: service returned no principal ID")
	}
	return *identity.Properties.PrincipalID, nil
}

func (b *Bootstrap) log() logrus.FieldLogger {
	if b.Log != nil {
		return b.Log
	}
	return logrus.StandardLogger()
}
