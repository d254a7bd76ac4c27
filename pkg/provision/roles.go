// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RoleAcrPull is the role granted when role assignments are requested:
// pull access to the registry, the minimum a deployment pipeline needs.
const RoleAcrPull = "AcrPull"

// builtinRoleIDs maps well-known role names to their ARM role
// definition GUIDs. These GUIDs are fixed across all Azure tenants.
var builtinRoleIDs = map[string]string{
	"AcrPull":        "7f951dda-4ed3-4680-a7ca-43fe172d538d",
	"AcrPush":        "8311e382-0749-4cb8-b61a-304f252e45ec",
	"AcrDelete":      "c2f4ef07-c644-48eb-af81-4b1b4947fb11",
	"AcrImageSigner": "6cef56e8-d556-48e5-a04f-b8e64114680f",
}

// RoleResolver looks up a role definition ID by display name at a
// scope. Used only for role names outside the built-in table.
type RoleResolver interface {
	ResolveRoleDefinition(ctx context.Context, scope, roleName string) (string, error)
}

// roleDefinitionID expands a roleDefinitionIdOrName into a full ARM
// role definition ID. Accepted forms: a full resource ID (returned
// as-is), a bare GUID, or a role name resolved via the built-in table
// and then the resolver.
func roleDefinitionID(ctx context.Context, resolver RoleResolver, subscriptionID, idOrName string) (string, error) {
	if strings.HasPrefix(idOrName, "/") {
		return idOrName, nil
	}
	if _, err := uuid.Parse(idOrName); err == nil {
		return subscriptionRoleDefinitionID(subscriptionID, idOrName), nil
	}
	if guid, ok := builtinRoleIDs[idOrName]; ok {
		return subscriptionRoleDefinitionID(subscriptionID, guid), nil
	}
	if resolver == nil {
		return "", fmt.Errorf("unknown role %q and no role resolver configured", idOrName)
	}
	id, err := resolver.ResolveRoleDefinition(ctx, "/subscriptions/"+subscriptionID, idOrName)
	if err != nil {
		return "", wrapErr("resolve role definition", err)
	}
	if id == "" {
		return "", fmt.Errorf("role %q not found in subscription %s", idOrName, subscriptionID)
	}
	return id, nil
}

func subscriptionRoleDefinitionID(subscriptionID, guid string) string {
	return fmt.Sprintf("/subscriptions/%s/providers/Microsoft.Authorization/roleDefinitions/%s",
		subscriptionID, guid)
}
