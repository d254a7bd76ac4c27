// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/platform-engineering-labs/acr-provisioner/pkg/provision"
)

// renderResult formats the three output values. The dotenv form uses
// the variable names deployment pipelines conventionally read.
func renderResult(result *provision.Result, format string) (string, error) {
	switch format {
	case "", "text":
		var b strings.Builder
		fmt.Fprintf(&b, "loginServer: %s\n", result.LoginServer)
		fmt.Fprintf(&b, "resourceId:  %s\n", result.ResourceID)
		fmt.Fprintf(&b, "name:        %s", result.Name)
		return b.String(), nil

	case "json":
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil

	case "dotenv":
		var b strings.Builder
		fmt.Fprintf(&b, "AZURE_CONTAINER_REGISTRY_ENDPOINT=%s\n", result.LoginServer)
		fmt.Fprintf(&b, "AZURE_CONTAINER_REGISTRY_ID=%s\n", result.ResourceID)
		fmt.Fprintf(&b, "AZURE_CONTAINER_REGISTRY_NAME=%s", result.Name)
		return b.String(), nil

	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}
