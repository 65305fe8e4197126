package directors

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"cmdbd/src/datastore"
	"cmdbd/src/framework"
	"cmdbd/src/security"
	"cmdbd/src/settings"
)

// TypeService owns the lifecycle of type schemas: create, read, update,
// delete, and ACL-filtered listing. Updates may only touch non-identity
// metadata and the access block; the type name and the field set are
// immutable once persisted.
type TypeService struct {
	store    datastore.Store
	settings *settings.Arguments
	logger   *zap.SugaredLogger

	mu    sync.RWMutex
	types map[int64]*framework.CmdbType
}

func NewTypeService(store datastore.Store, logger *zap.SugaredLogger, settings *settings.Arguments) *TypeService {
	return &TypeService{
		store:    store,
		settings: settings,
		logger:   logger,
		types:    make(map[int64]*framework.CmdbType),
	}
}

// CreateType persists a freshly built type and returns its assigned public
// id. The schema invariants hold regardless of how the type was composed, and
// the type name must be unused.
func (s *TypeService) CreateType(ctx context.Context, t *framework.CmdbType) (int64, error) {
	if err := framework.ValidateType(t); err != nil {
		return 0, err
	}
	if _, err := s.GetTypeByName(ctx, t.Name); err == nil {
		return 0, framework.NewSchemaError("type %q already exists", t.Name)
	} else if !framework.IsNotFound(err) {
		return 0, err
	}

	publicID, err := s.store.NextPublicID(ctx, framework.TypeCollection)
	if err != nil {
		return 0, err
	}
	t.PublicID = publicID

	if _, err := s.store.Insert(ctx, framework.TypeCollection, publicID, t); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.types[publicID] = t
	s.mu.Unlock()

	if s.settings.Debug {
		s.logger.Infof("Created type '%s' with public id %d", t.Name, publicID)
	}
	return publicID, nil
}

// GetType returns a type by public id, from cache if possible.
func (s *TypeService) GetType(ctx context.Context, publicID int64) (*framework.CmdbType, error) {
	s.mu.RLock()
	cached, ok := s.types[publicID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var t framework.CmdbType
	if err := s.store.FindOne(ctx, framework.TypeCollection, bson.M{"public_id": publicID}, &t); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.types[publicID] = &t
	s.mu.Unlock()
	return &t, nil
}

// GetTypeByName returns a type by its immutable name.
func (s *TypeService) GetTypeByName(ctx context.Context, name string) (*framework.CmdbType, error) {
	s.mu.RLock()
	for _, cached := range s.types {
		if cached.Name == name {
			s.mu.RUnlock()
			return cached, nil
		}
	}
	s.mu.RUnlock()

	var t framework.CmdbType
	if err := s.store.FindOne(ctx, framework.TypeCollection, bson.M{"name": name}, &t); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.types[t.PublicID] = &t
	s.mu.Unlock()
	return &t, nil
}

// UpdateType applies an update to a persisted type. Identity is frozen: a
// changed type name, a changed field-name set, a changed field kind or a
// reshaped section layout is rejected with SchemaError. Labels, description,
// version, active flag, render metadata, category, the access block and the
// non-identity field metadata (label, validator, default, required) may
// change.
func (s *TypeService) UpdateType(ctx context.Context, updated *framework.CmdbType) (int64, error) {
	existing, err := s.GetType(ctx, updated.PublicID)
	if err != nil {
		return 0, err
	}

	if updated.Name != existing.Name {
		return 0, framework.NewSchemaError("type %q cannot be renamed to %q",
			existing.Name, updated.Name)
	}
	if err := checkFieldsUnchanged(existing, updated); err != nil {
		return 0, err
	}
	if err := checkSectionsUnchanged(existing, updated); err != nil {
		return 0, err
	}
	fields, err := mergeFieldDefinitions(existing, updated)
	if err != nil {
		return 0, err
	}

	merged := *existing
	merged.Label = updated.Label
	merged.Description = updated.Description
	merged.Version = updated.Version
	merged.Active = updated.Active
	merged.RenderMeta = updated.RenderMeta
	merged.Access = updated.Access
	merged.CategoryID = updated.CategoryID
	merged.Fields = fields
	merged.Sections = updated.Sections

	if err := framework.ValidateType(&merged); err != nil {
		return 0, err
	}
	if _, err := s.store.Update(ctx, framework.TypeCollection, merged.PublicID, &merged); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.types[merged.PublicID] = &merged
	s.mu.Unlock()
	return merged.PublicID, nil
}

// DeleteType removes a type. Objects referencing it become unrenderable and
// are skipped by batch renders, not errors.
func (s *TypeService) DeleteType(ctx context.Context, publicID int64) (int64, error) {
	if _, err := s.store.Delete(ctx, framework.TypeCollection, publicID); err != nil {
		return 0, err
	}
	s.mu.Lock()
	delete(s.types, publicID)
	s.mu.Unlock()
	return publicID, nil
}

// TypeSearchFields are the store fields the type list view searches.
var TypeSearchFields = []string{"name", "label"}

// ListTypes returns one page of types matching the list state, restricted to
// those the group may read. The restriction preserves store order.
func (s *TypeService) ListTypes(ctx context.Context, state framework.ListQueryState, groupID int64) ([]framework.CmdbType, int64, error) {
	spec := framework.BuildQuery(state, TypeSearchFields)

	var types []framework.CmdbType
	total, err := s.store.Find(ctx, framework.TypeCollection, spec, &types)
	if err != nil {
		return nil, 0, err
	}
	return framework.FilterTypesForGroup(types, groupID, security.PermissionRead), total, nil
}

func checkFieldsUnchanged(existing, updated *framework.CmdbType) error {
	if len(existing.Fields) != len(updated.Fields) {
		return framework.NewSchemaError("the field set of type %q is immutable", existing.Name)
	}
	names := make(map[string]bool, len(existing.Fields))
	for _, field := range existing.Fields {
		names[field.Name] = true
	}
	for _, field := range updated.Fields {
		if !names[field.Name] {
			return framework.NewSchemaError("field %q cannot be added or renamed on persisted type %q",
				field.Name, existing.Name)
		}
	}
	return nil
}

func checkSectionsUnchanged(existing, updated *framework.CmdbType) error {
	if len(existing.Sections) != len(updated.Sections) {
		return framework.NewSchemaError("the section layout of type %q is immutable", existing.Name)
	}
	membership := make(map[string][]string, len(existing.Sections))
	for _, section := range existing.Sections {
		membership[section.Identifier] = section.Fields
	}
	matched := make(map[string]bool, len(existing.Sections))
	for _, section := range updated.Sections {
		fields, ok := membership[section.Identifier]
		if !ok {
			return framework.NewSchemaError("section %q is not part of persisted type %q",
				section.Name, existing.Name)
		}
		if matched[section.Identifier] {
			return framework.NewSchemaError("section %q appears more than once in the update of type %q",
				section.Name, existing.Name)
		}
		matched[section.Identifier] = true
		if len(fields) != len(section.Fields) {
			return framework.NewSchemaError("the field membership of section %q is immutable", section.Name)
		}
		for i, name := range section.Fields {
			if fields[i] != name {
				return framework.NewSchemaError("the field membership of section %q is immutable", section.Name)
			}
		}
	}
	return nil
}

// mergeFieldDefinitions takes the updated metadata of every field while
// keeping the persisted definition order. Names are already known to match;
// the kind is part of the field's identity since stored objects were
// validated against it.
func mergeFieldDefinitions(existing, updated *framework.CmdbType) ([]framework.FieldDefinition, error) {
	byName := make(map[string]framework.FieldDefinition, len(updated.Fields))
	for _, field := range updated.Fields {
		byName[field.Name] = field
	}

	fields := make([]framework.FieldDefinition, 0, len(existing.Fields))
	for _, current := range existing.Fields {
		next := byName[current.Name]
		if next.Kind != current.Kind {
			return nil, framework.NewSchemaError("the kind of field %q on type %q is immutable",
				current.Name, existing.Name)
		}
		fields = append(fields, next)
	}
	return fields, nil
}
