package directors

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"cmdbd/src/auth"
	"cmdbd/src/datastore"
	"cmdbd/src/security"
	"cmdbd/src/settings"
)

// UserService manages accounts and groups and serves as the user-lookup
// collaborator of the renderer.
type UserService struct {
	store    datastore.Store
	settings *settings.Arguments
	logger   *zap.SugaredLogger

	mu     sync.RWMutex
	users  map[int64]*auth.User
	groups map[int64]*auth.UserGroup
}

func NewUserService(store datastore.Store, logger *zap.SugaredLogger, settings *settings.Arguments) *UserService {
	return &UserService{
		store:    store,
		settings: settings,
		logger:   logger,
		users:    make(map[int64]*auth.User),
		groups:   make(map[int64]*auth.UserGroup),
	}
}

// AddUser hashes the credentials and persists the account.
func (s *UserService) AddUser(ctx context.Context, newUser auth.NewUser) (*auth.User, error) {
	if _, err := s.GetUserByName(ctx, newUser.UserName); err == nil {
		return nil, auth.ErrUserAlreadyExists
	}

	hash, err := auth.HashPassword(newUser.Password)
	if err != nil {
		return nil, err
	}
	publicID, err := s.store.NextPublicID(ctx, auth.UserCollection)
	if err != nil {
		return nil, err
	}

	user := &auth.User{
		PublicID:         publicID,
		UserName:         newUser.UserName,
		FirstName:        newUser.FirstName,
		LastName:         newUser.LastName,
		Email:            newUser.Email,
		GroupID:          newUser.GroupID,
		Active:           true,
		PasswordHash:     hash,
		RegistrationTime: time.Now().UTC(),
	}
	if _, err := s.store.Insert(ctx, auth.UserCollection, publicID, user); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.users[publicID] = user
	s.mu.Unlock()

	if s.settings.Debug {
		s.logger.Infof("Added user '%s' with public id %d", user.UserName, publicID)
	}
	return user, nil
}

// GetUser returns an account by public id, from cache if possible.
func (s *UserService) GetUser(ctx context.Context, publicID int64) (*auth.User, error) {
	s.mu.RLock()
	cached, ok := s.users[publicID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var user auth.User
	if err := s.store.FindOne(ctx, auth.UserCollection, bson.M{"public_id": publicID}, &user); err != nil {
		return nil, auth.ErrUserNotFound
	}

	s.mu.Lock()
	s.users[publicID] = &user
	s.mu.Unlock()
	return &user, nil
}

// GetUserByName returns an account by its account name.
func (s *UserService) GetUserByName(ctx context.Context, userName string) (*auth.User, error) {
	s.mu.RLock()
	for _, cached := range s.users {
		if cached.UserName == userName {
			s.mu.RUnlock()
			return cached, nil
		}
	}
	s.mu.RUnlock()

	var user auth.User
	if err := s.store.FindOne(ctx, auth.UserCollection, bson.M{"user_name": userName}, &user); err != nil {
		return nil, auth.ErrUserNotFound
	}

	s.mu.Lock()
	s.users[user.PublicID] = &user
	s.mu.Unlock()
	return &user, nil
}

// Authenticate verifies an account's credentials.
func (s *UserService) Authenticate(ctx context.Context, userName, password string) (*auth.User, error) {
	user, err := s.GetUserByName(ctx, userName)
	if err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, auth.ErrInvalidCredentials
	}
	return user, nil
}

// ResolveDisplayName implements the renderer's user lookup. Misses are
// reported as errors; the renderer falls back to the raw id.
func (s *UserService) ResolveDisplayName(userID int64) (string, error) {
	// The renderer contract carries no context; lookups are cache-first and
	// bounded by the cache-miss store read.
	user, err := s.GetUser(context.TODO(), userID)
	if err != nil {
		return "", err
	}
	return user.DisplayName(), nil
}

// AddGroup persists a permission group.
func (s *UserService) AddGroup(ctx context.Context, group *auth.UserGroup) (int64, error) {
	publicID, err := s.store.NextPublicID(ctx, auth.GroupCollection)
	if err != nil {
		return 0, err
	}
	group.PublicID = publicID
	if _, err := s.store.Insert(ctx, auth.GroupCollection, publicID, group); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.groups[publicID] = group
	s.mu.Unlock()
	return publicID, nil
}

// GetGroup returns a permission group by public id.
func (s *UserService) GetGroup(ctx context.Context, publicID int64) (*auth.UserGroup, error) {
	s.mu.RLock()
	cached, ok := s.groups[publicID]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var group auth.UserGroup
	if err := s.store.FindOne(ctx, auth.GroupCollection, bson.M{"public_id": publicID}, &group); err != nil {
		return nil, auth.ErrGroupNotFound
	}

	s.mu.Lock()
	s.groups[publicID] = &group
	s.mu.Unlock()
	return &group, nil
}

// GroupPermitted resolves the two-tier navigation gate for a group: the
// basic right outright, or the extended wildcard right when the basic one is
// absent.
func (s *UserService) GroupPermitted(ctx context.Context, groupID int64, right string) (bool, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return false, err
	}
	return security.HasRequiredRight(group.HasRight, right), nil
}
