package directors

import (
	"context"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"cmdbd/src/datastore"
	"cmdbd/src/framework"
	"cmdbd/src/security"
	"cmdbd/src/settings"
)

// ObjectListResult is the produced list API surface: one page of render
// results plus the total match count across all pages.
type ObjectListResult struct {
	Results []*framework.RenderResult `json:"results"`
	Total   int64                     `json:"total"`
}

// ObjectService owns object instances: validation against their type schema,
// persistence, and the list pipeline that turns list state into rendered,
// ACL-filtered pages.
type ObjectService struct {
	store    datastore.Store
	types    *TypeService
	renderer *framework.Renderer
	settings *settings.Arguments
	logger   *zap.SugaredLogger

	// seq orders list fetches; results of a superseded fetch are discarded.
	seq atomic.Uint64
}

func NewObjectService(store datastore.Store, types *TypeService, renderer *framework.Renderer,
	logger *zap.SugaredLogger, settings *settings.Arguments) *ObjectService {
	return &ObjectService{
		store:    store,
		types:    types,
		renderer: renderer,
		settings: settings,
		logger:   logger,
	}
}

// CreateObject validates the object's values against its type schema,
// applies defaults for absent fields, and persists it.
func (s *ObjectService) CreateObject(ctx context.Context, object *framework.CmdbObject) (int64, error) {
	t, err := s.types.GetType(ctx, object.TypeID)
	if err != nil {
		return 0, err
	}
	if err := validateObjectFields(object, t); err != nil {
		return 0, err
	}

	publicID, err := s.store.NextPublicID(ctx, framework.ObjectCollection)
	if err != nil {
		return 0, err
	}
	object.PublicID = publicID
	object.Active = true
	object.CreationTime = time.Now().UTC()

	if _, err := s.store.Insert(ctx, framework.ObjectCollection, publicID, object); err != nil {
		return 0, err
	}
	if s.settings.Debug {
		s.logger.Infof("Created object %d of type '%s'", publicID, t.Name)
	}
	return publicID, nil
}

// GetObject returns a raw object by public id.
func (s *ObjectService) GetObject(ctx context.Context, publicID int64) (*framework.CmdbObject, error) {
	var object framework.CmdbObject
	if err := s.store.FindOne(ctx, framework.ObjectCollection, bson.M{"public_id": publicID}, &object); err != nil {
		return nil, err
	}
	return &object, nil
}

// RenderObject returns the display-ready projection of one object. The
// result is derived on every call, never cached.
func (s *ObjectService) RenderObject(ctx context.Context, publicID int64) (*framework.RenderResult, error) {
	object, err := s.GetObject(ctx, publicID)
	if err != nil {
		return nil, err
	}
	t, err := s.types.GetType(ctx, object.TypeID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(object, t)
}

// UpdateObject replaces the mutable parts of a stored object. The owning
// type reference is immutable.
func (s *ObjectService) UpdateObject(ctx context.Context, object *framework.CmdbObject, editorID int64) (int64, error) {
	existing, err := s.GetObject(ctx, object.PublicID)
	if err != nil {
		return 0, err
	}
	if object.TypeID != existing.TypeID {
		return 0, framework.NewSchemaError("object %d cannot move from type %d to type %d",
			object.PublicID, existing.TypeID, object.TypeID)
	}

	t, err := s.types.GetType(ctx, object.TypeID)
	if err != nil {
		return 0, err
	}
	if err := validateObjectFields(object, t); err != nil {
		return 0, err
	}

	merged := *existing
	merged.Fields = object.Fields
	merged.Active = object.Active
	merged.Version = object.Version
	merged.EditorID = editorID
	merged.LastEditTime = time.Now().UTC()

	return s.store.Update(ctx, framework.ObjectCollection, merged.PublicID, &merged)
}

// DeleteObject removes an object.
func (s *ObjectService) DeleteObject(ctx context.Context, publicID int64) (int64, error) {
	return s.store.Delete(ctx, framework.ObjectCollection, publicID)
}

// SearchableFieldPaths returns the store paths of the type's text-like
// fields, for use as the searchable set of an object list view.
func SearchableFieldPaths(t *framework.CmdbType) []string {
	paths := make([]string, 0, len(t.Fields))
	for _, field := range t.Fields {
		switch field.Kind {
		case framework.FieldKindText, framework.FieldKindSelect:
			paths = append(paths, "fields."+field.Name)
		}
	}
	return paths
}

// List runs the full list pipeline: translate the list state into a store
// query, fetch one page of raw objects, render them against their types and
// drop everything the viewer's group may not read. Objects whose type is
// gone render as unrenderable and are skipped. If a newer List call was
// issued while this one was in flight, the stale result is discarded and
// ErrSuperseded returned; the latest query always wins.
func (s *ObjectService) List(ctx context.Context, state framework.ListQueryState,
	searchableFields []string, groupID int64) (*ObjectListResult, error) {
	return s.list(ctx, framework.BuildQuery(state, searchableFields), groupID)
}

// ListByType returns one page of objects owned by a single type.
func (s *ObjectService) ListByType(ctx context.Context, typeID int64,
	state framework.ListQueryState, groupID int64) (*ObjectListResult, error) {

	t, err := s.types.GetType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	spec := framework.BuildQuery(state, SearchableFieldPaths(t))
	typeClause := bson.M{"type_id": typeID}
	if spec.Filter == nil {
		spec.Filter = typeClause
	} else {
		spec.Filter = bson.M{"$and": bson.A{typeClause, spec.Filter}}
	}
	return s.list(ctx, spec, groupID)
}

func (s *ObjectService) list(ctx context.Context, spec framework.QuerySpec, groupID int64) (*ObjectListResult, error) {
	token := s.seq.Add(1)

	var raw []framework.CmdbObject
	total, err := s.store.Find(ctx, framework.ObjectCollection, spec, &raw)
	if err != nil {
		return nil, err
	}

	objects := make([]*framework.CmdbObject, len(raw))
	for i := range raw {
		objects[i] = &raw[i]
	}

	resolve := func(typeID int64) (*framework.CmdbType, error) {
		t, err := s.types.GetType(ctx, typeID)
		if err != nil {
			return nil, err
		}
		if !t.Access.GrantsAccess(groupID, security.PermissionRead) {
			return nil, &security.AccessDeniedError{GroupID: groupID, Permission: security.PermissionRead}
		}
		return t, nil
	}
	results := s.renderer.RenderMany(objects, resolve)

	if s.seq.Load() != token {
		return nil, framework.ErrSuperseded
	}
	return &ObjectListResult{Results: results, Total: total}, nil
}

// validateObjectFields checks the raw value bag against the field
// definitions at the boundary. Unknown keys are rejected here; drift is only
// tolerated on already-stored objects, where the renderer flags it.
func validateObjectFields(object *framework.CmdbObject, t *framework.CmdbType) error {
	for name := range object.Fields {
		if _, defined := t.FieldByName(name); !defined {
			return &framework.ValidationError{FieldName: name,
				Reason: "field is not defined by type " + t.Name}
		}
	}
	for i := range t.Fields {
		def := &t.Fields[i]
		value, present := object.Fields[def.Name]
		if !present {
			if def.DefaultValue != nil {
				if object.Fields == nil {
					object.Fields = make(map[string]interface{})
				}
				object.Fields[def.Name] = def.DefaultValue
				continue
			}
			if def.Required {
				return &framework.ValidationError{FieldName: def.Name,
					Reason: "required field has no value"}
			}
			continue
		}
		if err := def.ValidateValue(value); err != nil {
			return err
		}
	}
	return nil
}
