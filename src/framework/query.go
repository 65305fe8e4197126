package framework

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SortDirection is the sort order of a list view, in store notation.
type SortDirection int

const (
	SortAscending  SortDirection = 1
	SortDescending SortDirection = -1
)

// ListQueryState is the transient filter/sort/page state of one list view.
type ListQueryState struct {
	FilterText    string
	SortField     string
	SortDirection SortDirection
	Page          int
	PageSize      int

	// ActiveOnly restricts the view to records with the active flag set.
	ActiveOnly bool
}

// NewListQueryState returns the initial state of a list view: newest records
// first, first page.
func NewListQueryState(pageSize int) ListQueryState {
	return ListQueryState{
		SortField:     "public_id",
		SortDirection: SortDescending,
		Page:          1,
		PageSize:      pageSize,
	}
}

// SetFilterText replaces the free-text filter. Searching restarts the view
// from the first matching page.
func (s *ListQueryState) SetFilterText(text string) {
	s.FilterText = text
	s.Page = 1
}

// SetSort replaces the single sort pair and restarts from the first page.
func (s *ListQueryState) SetSort(field string, direction SortDirection) {
	s.SortField = field
	s.SortDirection = direction
	s.Page = 1
}

// SetPage moves the view to a 1-based page.
func (s *ListQueryState) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.Page = page
}

// SetPageSize changes the page size and resets the view to the first page, so
// a shrinking result set never leaves the view pointing past the end.
func (s *ListQueryState) SetPageSize(size int) {
	s.PageSize = size
	s.Page = 1
}

// QuerySpec is the filter + sort + paging directive sent to the backing
// store.
type QuerySpec struct {
	// Filter is the store filter expression. Nil means no filter clause.
	Filter bson.M

	SortField string
	Order     SortDirection

	// Page is 1-based.
	Page     int
	PageSize int
}

// Skip returns the number of records the store skips before the page.
func (q QuerySpec) Skip() int64 {
	page := q.Page
	if page < 1 {
		page = 1
	}
	return int64(page-1) * int64(q.PageSize)
}

// BuildQuery translates the list state into a store query. A non-empty
// filter becomes a case-insensitive substring match on every searchable
// field, OR-combined with a match on the stringified public id, so a
// numeric-looking filter finds records by id even though the id is stored as
// a number.
func BuildQuery(state ListQueryState, searchableFields []string) QuerySpec {
	spec := QuerySpec{
		SortField: state.SortField,
		Order:     state.SortDirection,
		Page:      state.Page,
		PageSize:  state.PageSize,
	}

	var clauses []bson.M
	if state.ActiveOnly {
		clauses = append(clauses, bson.M{"active": true})
	}
	if state.FilterText != "" {
		pattern := regexp.QuoteMeta(state.FilterText)
		or := bson.A{}
		for _, field := range searchableFields {
			or = append(or, bson.M{
				field: primitive.Regex{Pattern: pattern, Options: "i"},
			})
		}
		or = append(or, bson.M{
			"$expr": bson.M{
				"$regexMatch": bson.M{
					"input":   bson.M{"$toString": "$public_id"},
					"regex":   pattern,
					"options": "i",
				},
			},
		})
		clauses = append(clauses, bson.M{"$or": or})
	}

	switch len(clauses) {
	case 0:
	case 1:
		spec.Filter = clauses[0]
	default:
		spec.Filter = bson.M{"$and": bson.A{clauses[0], clauses[1]}}
	}
	return spec
}
