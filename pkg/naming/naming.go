// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package naming implements the resource naming convention:
// a per-resource-type abbreviation prefix joined with an opaque
// resource token that keeps names unique across deployments.
package naming

import (
	"strings"

	"github.com/segmentio/ksuid"
)

// Abbreviation keys understood by this tool. The values follow the
// Azure Cloud Adoption Framework prefixes.
const (
	KeyContainerRegistry = "containerRegistryRegistries"
	KeyResourceGroup     = "resourcesResourceGroups"
	KeyManagedIdentity   = "managedIdentityUserAssignedIdentities"
)

// Abbreviations maps resource-type keys to name prefixes.
type Abbreviations map[string]string

// Default returns the built-in abbreviation table. Callers may supply
// their own table to override individual entries.
func Default() Abbreviations {
	return Abbreviations{
		KeyContainerRegistry: "cr",
		KeyResourceGroup:     "rg-",
		KeyManagedIdentity:   "id-",
	}
}

// For returns the abbreviation for key, falling back to the built-in
// table when the entry is absent. Returns "" for unknown keys.
func (a Abbreviations) For(key string) string {
	if v, ok := a[key]; ok {
		return v
	}
	return Default()[key]
}

// RegistryName computes the container registry name: the registry
// abbreviation concatenated with the resource token, no transformation.
func RegistryName(abbrs Abbreviations, resourceToken string) string {
	return abbrs.For(KeyContainerRegistry) + resourceToken
}

// NewResourceToken mints a fresh uniqueness suffix. KSUIDs are
// K-sortable and collision-free; lowercased so the result stays valid
// inside registry names, which only allow alphanumerics.
func NewResourceToken() string {
	return strings.ToLower(ksuid.New().String())
}
