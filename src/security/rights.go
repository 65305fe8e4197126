package security

import "strings"

// Right is one entry of the flat rights catalog used for navigation-level
// gating. Names are dotted paths, e.g. "framework.object.view".
type Right struct {
	Name        string `bson:"name" json:"name"`
	Label       string `bson:"label" json:"label"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Level       int    `bson:"level" json:"level"`
}

// ExtendedRight returns the wildcard right one level above the given right:
// "framework.object.view" extends to "framework.object.*". A right already at
// the top level extends to the global wildcard.
func ExtendedRight(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return "*"
	}
	return name[:idx+1] + "*"
}

// HasRequiredRight resolves the two-tier permission check: the action is
// permitted if the basic right is granted outright, or, failing that, if the
// extended right is granted. An empty right name never gates anything.
func HasRequiredRight(granted func(name string) bool, right string) bool {
	if right == "" || granted(right) {
		return true
	}
	return granted(ExtendedRight(right))
}
