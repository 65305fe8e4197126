package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdbd/src/security"
)

func TestBuildCategoryTreeNestsChildren(t *testing.T) {
	categories := []Category{
		{PublicID: 1, Name: "hardware", Label: "Hardware"},
		{PublicID: 2, Name: "servers", Label: "Servers", ParentID: 1},
		{PublicID: 3, Name: "software", Label: "Software"},
	}
	types := []CmdbType{
		{PublicID: 10, Name: "rack-server", CategoryID: 2},
		{PublicID: 11, Name: "license", CategoryID: 3},
	}

	roots, err := BuildCategoryTree(categories, types)
	require.NoError(t, err)
	require.Len(t, roots, 2)

	hardware := roots[0]
	assert.Equal(t, int64(1), hardware.Category.PublicID)
	require.Len(t, hardware.Children, 1)
	require.Len(t, hardware.Children[0].Types, 1)
	assert.Equal(t, "rack-server", hardware.Children[0].Types[0].Name)
}

func TestBuildCategoryTreeDuplicateInputIsIdempotent(t *testing.T) {
	categories := []Category{
		{PublicID: 1, Name: "hardware"},
		{PublicID: 2, Name: "servers", ParentID: 1},
		{PublicID: 2, Name: "servers", ParentID: 1},
	}

	roots, err := BuildCategoryTree(categories, nil)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Len(t, roots[0].Children, 1)
}

func TestBuildCategoryTreeDetectsParentCycle(t *testing.T) {
	categories := []Category{
		{PublicID: 1, Name: "a", ParentID: 2},
		{PublicID: 2, Name: "b", ParentID: 1},
	}

	_, err := BuildCategoryTree(categories, nil)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestBuildCategoryTreeRejectsSelfParent(t *testing.T) {
	categories := []Category{{PublicID: 1, Name: "a", ParentID: 1}}

	_, err := BuildCategoryTree(categories, nil)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestBuildCategoryTreeCollectsUncategorizedTypes(t *testing.T) {
	categories := []Category{{PublicID: 1, Name: "hardware"}}
	types := []CmdbType{
		{PublicID: 10, Name: "loose"},
		{PublicID: 11, Name: "dangling", CategoryID: 99},
	}

	roots, err := BuildCategoryTree(categories, types)
	require.NoError(t, err)
	require.Len(t, roots, 2)

	uncategorized := roots[1]
	assert.Equal(t, UncategorizedID, uncategorized.Category.PublicID)
	assert.Len(t, uncategorized.Types, 2)
}

func TestFilterTreeForGroupPrunesUnreadableTypes(t *testing.T) {
	restricted := security.AccessControlList{Activated: true}
	restricted.GrantAccess(7, security.PermissionRead)

	locked := security.AccessControlList{Activated: true}

	categories := []Category{{PublicID: 1, Name: "hardware"}}
	types := []CmdbType{
		{PublicID: 10, Name: "visible", CategoryID: 1, Access: restricted},
		{PublicID: 11, Name: "hidden", CategoryID: 1, Access: locked},
	}

	roots, err := BuildCategoryTree(categories, types)
	require.NoError(t, err)

	filtered := FilterTreeForGroup(roots, 7)
	require.Len(t, filtered, 1)
	require.Len(t, filtered[0].Types, 1)
	assert.Equal(t, "visible", filtered[0].Types[0].Name)

	// The unfiltered tree is untouched.
	assert.Len(t, roots[0].Types, 2)
}
