// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package provision creates an Azure Container Registry and optionally
// grants a principal pull access on it. One conditional branch, one
// create request, three outputs republished verbatim.
package provision

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/containerregistry/armcontainerregistry"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/platform-engineering-labs/acr-provisioner/pkg/naming"
)

// RegistryCreator is the slice of the ARM surface the provisioner
// needs for the registry itself. *client.Client implements it.
type RegistryCreator interface {
	CreateRegistry(ctx context.Context, resourceGroup, name string, params armcontainerregistry.Registry) (armcontainerregistry.Registry, error)
}

// RoleAssigner creates role assignments at a scope.
type RoleAssigner interface {
	CreateRoleAssignment(ctx context.Context, scope, name string, params armauthorization.RoleAssignmentCreateParameters) (armauthorization.RoleAssignment, error)
}

// Spec is the parameter set for one provisioning run. Constructed
// once, immutable, consumed by Provision.
type Spec struct {
	Location      string
	Tags          map[string]string
	Abbrs         naming.Abbreviations
	ResourceToken string
	ResourceGroup string

	PrincipalID       string
	PrincipalType     string
	DoRoleAssignments bool

	// Pass-through registry settings. SKU defaults to Basic.
	SKU              string
	AdminUserEnabled bool
}

// RoleAssignment binds a principal to a role on the registry.
type RoleAssignment struct {
	PrincipalID            string
	PrincipalType          string
	RoleDefinitionIDOrName string
}

// Result holds the three output values, taken verbatim from the
// service response.
type Result struct {
	LoginServer string `json:"loginServer"`
	ResourceID  string `json:"resourceId"`
	Name        string `json:"name"`
}

// Provisioner issues the registry create and the conditional role
// assignment. It holds no cross-call state; each invocation is
// independent.
type Provisioner struct {
	Registries     RegistryCreator
	Roles          RoleAssigner
	RoleDefs       RoleResolver
	SubscriptionID string
	Retry          RetryPolicy
	Log            logrus.FieldLogger
}

// RegistryName computes the registry name: the abbreviation under
// "containerRegistryRegistries" concatenated with the resource token.
func (s *Spec) RegistryName() string {
	return naming.RegistryName(s.Abbrs, s.ResourceToken)
}

// RoleAssignments builds the role assignment list: empty unless
// DoRoleAssignments, then exactly one AcrPull binding for the supplied
// principal. PrincipalType defaults to User.
func (s *Spec) RoleAssignments() []RoleAssignment {
	if !s.DoRoleAssignments {
		return nil
	}
	principalType := s.PrincipalType
	if principalType == "" {
		principalType = string(armauthorization.PrincipalTypeUser)
	}
	return []RoleAssignment{{
		PrincipalID:            s.PrincipalID,
		PrincipalType:          principalType,
		RoleDefinitionIDOrName: RoleAcrPull,
	}}
}

// validate checks presence of required inputs only. Anything beyond
// presence is left to the downstream service and surfaces as a
// ProvisioningError.
func (s *Spec) validate() error {
	if s.Location == "" {
		return fmt.Errorf("location is required")
	}
	if s.ResourceGroup == "" {
		return fmt.Errorf("resource group is required")
	}
	if s.ResourceToken == "" {
		return fmt.Errorf("resource token is required")
	}
	if s.DoRoleAssignments && s.PrincipalID == "" {
		return fmt.Errorf("principal ID is required when role assignments are enabled")
	}
	return nil
}

// registryParameters builds the ARM request body. Public network
// access is always Enabled; it is never input-driven.
func (s *Spec) registryParameters() armcontainerregistry.Registry {
	skuName := armcontainerregistry.SKUNameBasic
	if s.SKU != "" {
		skuName = armcontainerregistry.SKUName(s.SKU)
	}
	publicAccess := armcontainerregistry.PublicNetworkAccessEnabled

	return armcontainerregistry.Registry{
		Location: stringPtr(s.Location),
		SKU:      &armcontainerregistry.SKU{Name: &skuName},
		Tags:     tagsToAzure(s.Tags),
		Properties: &armcontainerregistry.RegistryProperties{
			AdminUserEnabled:    boolPtr(s.AdminUserEnabled),
			PublicNetworkAccess: &publicAccess,
		},
	}
}

// Provision creates the registry, applies the role assignments, and
// returns the outputs. On failure nothing is returned: no partial
// result accompanies an error.
func (p *Provisioner) Provision(ctx context.Context, spec *Spec) (*Result, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	name := spec.RegistryName()
	log := p.log().WithFields(logrus.Fields{
		"registry":      name,
		"resourceGroup": spec.ResourceGroup,
		"location":      spec.Location,
	})

	log.Info("Creating container registry")
	reg, err := withRetry(ctx, p.Retry, log, func() (armcontainerregistry.Registry, error) {
		return p.Registries.CreateRegistry(ctx, spec.ResourceGroup, name, spec.registryParameters())
	})
	if err != nil {
		return nil, wrapErr("create container registry", err)
	}
	if reg.ID == nil {
		return nil, fmt.Errorf("create container registry: service returned no resource ID")
	}

	for _, ra := range spec.RoleAssignments() {
		if err := p.assignRole(ctx, log, *reg.ID, ra); err != nil {
			return nil, err
		}
	}

	result := &Result{
		ResourceID: *reg.ID,
		Name:       derefString(reg.Name),
	}
	if reg.Properties != nil {
		result.LoginServer = derefString(reg.Properties.LoginServer)
	}

	log.WithField("loginServer", result.LoginServer).Info("Container registry provisioned")
	return result, nil
}

// assignRole grants ra on the registry identified by scope. ARM
// requires role assignment names to be UUIDs; one is generated per
// call.
func (p *Provisioner) assignRole(ctx context.Context, log logrus.FieldLogger, scope string, ra RoleAssignment) error {
	definitionID, err := roleDefinitionID(ctx, p.RoleDefs, p.SubscriptionID, ra.RoleDefinitionIDOrName)
	if err != nil {
		return err
	}

	principalType := armauthorization.PrincipalType(ra.PrincipalType)
	params := armauthorization.RoleAssignmentCreateParameters{
		Properties: &armauthorization.RoleAssignmentProperties{
			PrincipalID:      stringPtr(ra.PrincipalID),
			PrincipalType:    &principalType,
			RoleDefinitionID: stringPtr(definitionID),
		},
	}

	log.WithFields(logrus.Fields{
		"principalId": ra.PrincipalID,
		"role":        ra.RoleDefinitionIDOrName,
	}).Info("Creating role assignment")

	_, err = withRetry(ctx, p.Retry, log, func() (armauthorization.RoleAssignment, error) {
		return p.Roles.CreateRoleAssignment(ctx, scope, uuid.New().String(), params)
	})
	if err != nil {
		return wrapErr("create role assignment", err)
	}
	return nil
}

func (p *Provisioner) log() logrus.FieldLogger {
	if p.Log != nil {
		return p.Log
	}
	return logrus.StandardLogger()
}
