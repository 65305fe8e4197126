package framework

import (
	"sort"

	"cmdbd/src/security"
)

// UncategorizedID is the public id of the implicit node collecting types
// without a category.
const UncategorizedID int64 = 0

// CategoryNode is one node of the assembled category tree.
type CategoryNode struct {
	Category Category        `json:"category"`
	Children []*CategoryNode `json:"children"`
	Types    []CmdbType      `json:"types"`
}

// BuildCategoryTree assembles the navigation tree from a flat category list
// and the types attaching to them. Duplicate category records collapse to one
// node. Types referencing a missing or zero category land under the implicit
// uncategorized node. A parent cycle fails with CycleError instead of
// recursing indefinitely.
func BuildCategoryTree(categories []Category, types []CmdbType) ([]*CategoryNode, error) {
	nodes := make(map[int64]*CategoryNode)
	for _, category := range categories {
		if category.PublicID == UncategorizedID {
			continue
		}
		// Duplicate input records are idempotent.
		if _, exists := nodes[category.PublicID]; exists {
			continue
		}
		nodes[category.PublicID] = &CategoryNode{Category: category}
	}

	if err := detectParentCycles(nodes); err != nil {
		return nil, err
	}

	uncategorized := &CategoryNode{
		Category: Category{
			PublicID: UncategorizedID,
			Name:     "uncategorized",
			Label:    "Uncategorized",
		},
	}

	for _, t := range types {
		if node, ok := nodes[t.CategoryID]; ok {
			node.Types = append(node.Types, t)
		} else {
			uncategorized.Types = append(uncategorized.Types, t)
		}
	}

	var roots []*CategoryNode
	ids := make([]int64, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		node := nodes[id]
		parent, hasParent := nodes[node.Category.ParentID]
		if hasParent {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	if len(uncategorized.Types) > 0 {
		roots = append(roots, uncategorized)
	}
	return roots, nil
}

// detectParentCycles walks every parent chain. A node whose chain revisits
// itself fails the build.
func detectParentCycles(nodes map[int64]*CategoryNode) error {
	for id := range nodes {
		seen := map[int64]bool{}
		current := id
		for {
			if seen[current] {
				return &CycleError{CategoryID: current}
			}
			seen[current] = true
			node, ok := nodes[current]
			if !ok || node.Category.ParentID == 0 {
				break
			}
			if node.Category.ParentID == current {
				return &CycleError{CategoryID: current}
			}
			current = node.Category.ParentID
			if _, ok := nodes[current]; !ok {
				break
			}
		}
	}
	return nil
}

// FilterTreeForGroup prunes from every node the types the group may not read.
// The denial is non-fatal: the viewer gets a restricted tree, never an error.
// The input tree is left untouched.
func FilterTreeForGroup(roots []*CategoryNode, groupID int64) []*CategoryNode {
	filtered := make([]*CategoryNode, 0, len(roots))
	for _, node := range roots {
		filtered = append(filtered, &CategoryNode{
			Category: node.Category,
			Children: FilterTreeForGroup(node.Children, groupID),
			Types:    FilterTypesForGroup(node.Types, groupID, security.PermissionRead),
		})
	}
	return filtered
}
