package framework

import "cmdbd/src/security"

// HasTypeCapability decides whether the group holds the capability on the
// type, honoring the type's activation flag.
func HasTypeCapability(t *CmdbType, groupID int64, permission security.Permission) bool {
	return t.Access.GrantsAccess(groupID, permission)
}

// FilterTypesForGroup returns the subset of types granting the capability to
// the group, preserving input order.
func FilterTypesForGroup(types []CmdbType, groupID int64, permission security.Permission) []CmdbType {
	filtered := make([]CmdbType, 0, len(types))
	for _, t := range types {
		if t.Access.GrantsAccess(groupID, permission) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
