package directors

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"cmdbd/src/auth"
	"cmdbd/src/framework"
	"cmdbd/src/settings"
)

// mockStore is the in-memory Store the service tests run against. It honors
// the parts of the query contract the services exercise: collection scoping,
// the type_id clause of scoped object lists, and public_id/name lookups.
type mockStore struct {
	mu         sync.Mutex
	types      []framework.CmdbType
	objects    []framework.CmdbObject
	categories []framework.Category
	users      []auth.User
	groups     []auth.UserGroup
	counters   map[string]int64

	// findHook runs at the start of every Find when set.
	findHook func(collection string)
}

func newMockStore() *mockStore {
	return &mockStore{counters: make(map[string]int64)}
}

func newTestServices(store *mockStore) (*TypeService, *ObjectService, *CategoryService, *UserService) {
	logger := zap.NewNop().Sugar()
	args := &settings.Arguments{DefaultPageSize: 25}

	types := NewTypeService(store, logger, args)
	users := NewUserService(store, logger, args)
	renderer := framework.NewRenderer(users, logger)
	objects := NewObjectService(store, types, renderer, logger, args)
	categories := NewCategoryService(store, types, logger, args)
	return types, objects, categories, users
}

func (m *mockStore) Find(ctx context.Context, collection string, spec framework.QuerySpec, results interface{}) (int64, error) {
	if m.findHook != nil {
		m.findHook(collection)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	switch out := results.(type) {
	case *[]framework.CmdbType:
		*out = append([]framework.CmdbType(nil), m.types...)
		return int64(len(*out)), nil
	case *[]framework.Category:
		*out = append([]framework.Category(nil), m.categories...)
		return int64(len(*out)), nil
	case *[]framework.CmdbObject:
		typeID, scoped := typeClause(spec.Filter)
		matched := make([]framework.CmdbObject, 0, len(m.objects))
		for _, object := range m.objects {
			if scoped && object.TypeID != typeID {
				continue
			}
			matched = append(matched, object)
		}
		*out = matched
		return int64(len(matched)), nil
	}
	return 0, nil
}

// typeClause digs the type_id scope out of a filter, whether it stands alone
// or is $and-combined with a search clause.
func typeClause(filter bson.M) (int64, bool) {
	if filter == nil {
		return 0, false
	}
	if id, ok := filter["type_id"].(int64); ok {
		return id, true
	}
	if and, ok := filter["$and"].(bson.A); ok {
		for _, clause := range and {
			if m, ok := clause.(bson.M); ok {
				if id, ok := m["type_id"].(int64); ok {
					return id, true
				}
			}
		}
	}
	return 0, false
}

func (m *mockStore) FindOne(ctx context.Context, collection string, filter bson.M, result interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	publicID, _ := filter["public_id"].(int64)
	name, _ := filter["name"].(string)
	userName, _ := filter["user_name"].(string)

	switch out := result.(type) {
	case *framework.CmdbType:
		for _, t := range m.types {
			if t.PublicID == publicID || (name != "" && t.Name == name) {
				*out = t
				return nil
			}
		}
	case *framework.CmdbObject:
		for _, object := range m.objects {
			if object.PublicID == publicID {
				*out = object
				return nil
			}
		}
	case *framework.Category:
		for _, category := range m.categories {
			if category.PublicID == publicID || (name != "" && category.Name == name) {
				*out = category
				return nil
			}
		}
	case *auth.User:
		for _, user := range m.users {
			if user.PublicID == publicID || (userName != "" && user.UserName == userName) {
				*out = user
				return nil
			}
		}
	case *auth.UserGroup:
		for _, group := range m.groups {
			if group.PublicID == publicID {
				*out = group
				return nil
			}
		}
	}
	return &framework.NotFoundError{Collection: collection, PublicID: publicID, Name: name}
}

func (m *mockStore) NextPublicID(ctx context.Context, collection string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[collection]++
	return m.counters[collection], nil
}

func (m *mockStore) Insert(ctx context.Context, collection string, publicID int64, document interface{}) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch doc := document.(type) {
	case *framework.CmdbType:
		m.types = append(m.types, *doc)
	case *framework.CmdbObject:
		m.objects = append(m.objects, *doc)
	case *framework.Category:
		m.categories = append(m.categories, *doc)
	case *auth.User:
		m.users = append(m.users, *doc)
	case *auth.UserGroup:
		m.groups = append(m.groups, *doc)
	}
	return publicID, nil
}

func (m *mockStore) Update(ctx context.Context, collection string, publicID int64, document interface{}) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch doc := document.(type) {
	case *framework.CmdbType:
		for i := range m.types {
			if m.types[i].PublicID == publicID {
				m.types[i] = *doc
				return publicID, nil
			}
		}
	case *framework.CmdbObject:
		for i := range m.objects {
			if m.objects[i].PublicID == publicID {
				m.objects[i] = *doc
				return publicID, nil
			}
		}
	case *framework.Category:
		for i := range m.categories {
			if m.categories[i].PublicID == publicID {
				m.categories[i] = *doc
				return publicID, nil
			}
		}
	}
	return 0, &framework.NotFoundError{Collection: collection, PublicID: publicID}
}

func (m *mockStore) Delete(ctx context.Context, collection string, publicID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch collection {
	case framework.TypeCollection:
		for i := range m.types {
			if m.types[i].PublicID == publicID {
				m.types = append(m.types[:i], m.types[i+1:]...)
				return publicID, nil
			}
		}
	case framework.ObjectCollection:
		for i := range m.objects {
			if m.objects[i].PublicID == publicID {
				m.objects = append(m.objects[:i], m.objects[i+1:]...)
				return publicID, nil
			}
		}
	case framework.CategoryCollection:
		for i := range m.categories {
			if m.categories[i].PublicID == publicID {
				m.categories = append(m.categories[:i], m.categories[i+1:]...)
				return publicID, nil
			}
		}
	}
	return 0, &framework.NotFoundError{Collection: collection, PublicID: publicID}
}
