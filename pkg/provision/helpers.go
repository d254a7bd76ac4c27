// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package provision

// tagsToAzure converts plain tags to the Azure SDK format.
// Returns nil if the input map is empty.
func tagsToAzure(tags map[string]string) map[string]*string {
	if len(tags) == 0 {
		return nil
	}
	azureTags := make(map[string]*string, len(tags))
	for k, v := range tags {
		val := v
		azureTags[k] = &val
	}
	return azureTags
}

// stringPtr returns a pointer to a string. Useful for Azure SDK calls.
func stringPtr(s string) *string {
	return &s
}

// boolPtr returns a pointer to a bool.
func boolPtr(b bool) *bool {
	return &b
}

// derefString returns the pointed-to string, or "" for nil.
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
