package directors

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"cmdbd/src/datastore"
	"cmdbd/src/framework"
	"cmdbd/src/settings"
)

// nameProbeQuiescence is how long category name input must be quiet before
// the uniqueness probe fires.
const nameProbeQuiescence = 500 * time.Millisecond

// CategoryService owns the category records and assembles the navigation
// tree with types attached, pruned per viewer.
type CategoryService struct {
	store     datastore.Store
	types     *TypeService
	settings  *settings.Arguments
	logger    *zap.SugaredLogger
	validator *framework.QuiescentValidator
}

func NewCategoryService(store datastore.Store, types *TypeService,
	logger *zap.SugaredLogger, settings *settings.Arguments) *CategoryService {
	return &CategoryService{
		store:     store,
		types:     types,
		settings:  settings,
		logger:    logger,
		validator: framework.NewQuiescentValidator(nameProbeQuiescence),
	}
}

// CreateCategory persists a category. Names are unique.
func (s *CategoryService) CreateCategory(ctx context.Context, category *framework.Category) (int64, error) {
	if err := s.checkNameUnused(ctx, category.Name); err != nil {
		return 0, err
	}

	publicID, err := s.store.NextPublicID(ctx, framework.CategoryCollection)
	if err != nil {
		return 0, err
	}
	category.PublicID = publicID
	return s.store.Insert(ctx, framework.CategoryCollection, publicID, category)
}

// GetCategory returns a category by public id.
func (s *CategoryService) GetCategory(ctx context.Context, publicID int64) (*framework.Category, error) {
	var category framework.Category
	if err := s.store.FindOne(ctx, framework.CategoryCollection, bson.M{"public_id": publicID}, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory replaces a stored category.
func (s *CategoryService) UpdateCategory(ctx context.Context, category *framework.Category) (int64, error) {
	return s.store.Update(ctx, framework.CategoryCollection, category.PublicID, category)
}

// DeleteCategory removes a category. Types attached to it fall back to the
// implicit uncategorized node on the next tree build.
func (s *CategoryService) DeleteCategory(ctx context.Context, publicID int64) (int64, error) {
	return s.store.Delete(ctx, framework.CategoryCollection, publicID)
}

// Tree builds the nested category tree with types attached, restricted to
// the types the viewer's group may read.
func (s *CategoryService) Tree(ctx context.Context, groupID int64) ([]*framework.CategoryNode, error) {
	categories, err := s.allCategories(ctx)
	if err != nil {
		return nil, err
	}

	state := framework.NewListQueryState(0)
	var types []framework.CmdbType
	if _, err := s.store.Find(ctx, framework.TypeCollection, framework.BuildQuery(state, nil), &types); err != nil {
		return nil, err
	}

	tree, err := framework.BuildCategoryTree(categories, types)
	if err != nil {
		return nil, err
	}
	return framework.FilterTreeForGroup(tree, groupID), nil
}

// ValidateNameQuiescent probes name uniqueness once the input has settled,
// superseding any probe still in flight for the same input key. The report
// callback receives nil for a free name and SchemaError for a taken one.
func (s *CategoryService) ValidateNameQuiescent(ctx context.Context, key, name string, report func(error)) {
	s.validator.Validate(ctx, key, name, func(ctx context.Context, value string) error {
		return s.checkNameUnused(ctx, value)
	}, report)
}

func (s *CategoryService) checkNameUnused(ctx context.Context, name string) error {
	var existing framework.Category
	err := s.store.FindOne(ctx, framework.CategoryCollection, bson.M{"name": name}, &existing)
	if err == nil {
		return framework.NewSchemaError("category %q already exists", name)
	}
	if framework.IsNotFound(err) {
		return nil
	}
	return err
}

// allCategories pages through the whole category collection. A page size of
// zero disables paging in the store adapter.
func (s *CategoryService) allCategories(ctx context.Context) ([]framework.Category, error) {
	state := framework.NewListQueryState(0)
	state.SortField = "public_id"
	state.SortDirection = framework.SortAscending

	var categories []framework.Category
	if _, err := s.store.Find(ctx, framework.CategoryCollection, framework.BuildQuery(state, nil), &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
