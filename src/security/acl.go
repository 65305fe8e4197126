package security

import "strconv"

// Permission is one ACL capability.
type Permission string

const (
	PermissionCreate Permission = "CREATE"
	PermissionRead   Permission = "READ"
	PermissionUpdate Permission = "UPDATE"
	PermissionDelete Permission = "DELETE"
)

// GroupGrants is the capability set granted to one group.
type GroupGrants struct {
	Permissions []Permission `bson:"permissions" json:"permissions"`
}

// Contains reports whether the grant set includes the permission.
func (g GroupGrants) Contains(p Permission) bool {
	for _, granted := range g.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// AccessControlList is the per-type access block: an activation flag plus a
// mapping from group id to granted capability set. Group ids are stored as
// decimal strings since the store requires string document keys.
type AccessControlList struct {
	Activated bool `bson:"activated" json:"activated"`

	Groups map[string]GroupGrants `bson:"groups,omitempty" json:"groups,omitempty"`
}

// GrantAccess adds a permission to the group's capability set.
func (acl *AccessControlList) GrantAccess(groupID int64, permissions ...Permission) {
	if acl.Groups == nil {
		acl.Groups = make(map[string]GroupGrants)
	}
	key := strconv.FormatInt(groupID, 10)
	grants := acl.Groups[key]
	for _, p := range permissions {
		if !grants.Contains(p) {
			grants.Permissions = append(grants.Permissions, p)
		}
	}
	acl.Groups[key] = grants
}

// RevokeAccess removes a permission from the group's capability set.
func (acl *AccessControlList) RevokeAccess(groupID int64, permission Permission) {
	key := strconv.FormatInt(groupID, 10)
	grants, ok := acl.Groups[key]
	if !ok {
		return
	}
	kept := grants.Permissions[:0]
	for _, p := range grants.Permissions {
		if p != permission {
			kept = append(kept, p)
		}
	}
	grants.Permissions = kept
	acl.Groups[key] = grants
}

// GrantsAccess decides whether the group holds the capability. A deactivated
// access block grants every capability to everyone. An activated block grants
// only groups present in the mapping; absence denies all capabilities.
func (acl *AccessControlList) GrantsAccess(groupID int64, permission Permission) bool {
	if !acl.Activated {
		return true
	}
	grants, ok := acl.Groups[strconv.FormatInt(groupID, 10)]
	if !ok {
		return false
	}
	return grants.Contains(permission)
}

// AccessDeniedError reports a failed capability check.
type AccessDeniedError struct {
	GroupID    int64
	Permission Permission
}

func (e *AccessDeniedError) Error() string {
	return "group " + strconv.FormatInt(e.GroupID, 10) +
		" lacks permission " + string(e.Permission)
}
