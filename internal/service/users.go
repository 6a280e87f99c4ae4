// Package service provides the user business logic: id assignment,
// lookup, modification and removal over a whole-collection repository.
package service

import (
	"context"
	"errors"
	"sync"

	"github.com/atinyakov/usersvc/internal/models"
)

// ErrNotFound is returned when no user has the requested id.
var ErrNotFound = errors.New("user not found")

// UserRepository defines the persistence operations
// required by the user service.
type UserRepository interface {
	// ReadUsers loads the full persisted collection.
	ReadUsers(ctx context.Context) (models.Collection, error)
	// WriteUsers replaces the full persisted collection.
	WriteUsers(ctx context.Context, users models.Collection) error
}

// UserService implements user operations as read-modify-write cycles
// over a UserRepository. Every operation reloads the collection.
type UserService struct {
	// repo performs the data-layer operations.
	repo UserRepository
	// mu serializes mutations so concurrent writers cannot lose updates
	// or hand out the same id.
	mu sync.Mutex
}

// NewUserService constructs a new UserService using the provided repository.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// List returns every stored user in collection order.
func (s *UserService) List(ctx context.Context) (models.Collection, error) {
	return s.repo.ReadUsers(ctx)
}

// Get returns the user with the given id or ErrNotFound.
func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	users, err := s.repo.ReadUsers(ctx)
	if err != nil {
		return nil, err
	}
	u := users.Find(id)
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// Create appends a user built from req and returns its new id.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.repo.ReadUsers(ctx)
	if err != nil {
		return 0, err
	}

	id := users.NextID()
	users = append(users, models.User{
		ID:         id,
		Firstname:  req.Firstname,
		Secondname: req.Secondname,
		Age:        req.Age,
		City:       req.City,
	})
	if err := s.repo.WriteUsers(ctx, users); err != nil {
		return 0, err
	}
	return id, nil
}

// Update overwrites the name, age and city of the user with the given id.
// A city absent from req clears the stored one.
func (s *UserService) Update(ctx context.Context, id int, req models.UpdateUserRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.repo.ReadUsers(ctx)
	if err != nil {
		return nil, err
	}
	u := users.Find(id)
	if u == nil {
		return nil, ErrNotFound
	}

	u.Firstname = value(req.Firstname)
	u.Secondname = value(req.Secondname)
	u.Age = value(req.Age)
	u.City = value(req.City)
	if err := s.repo.WriteUsers(ctx, users); err != nil {
		return nil, err
	}

	updated := *u
	return &updated, nil
}

// Delete removes the user with the given id and returns it.
func (s *UserService) Delete(ctx context.Context, id int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.repo.ReadUsers(ctx)
	if err != nil {
		return nil, err
	}
	i := users.Index(id)
	if i < 0 {
		return nil, ErrNotFound
	}

	removed := users[i]
	users = append(users[:i], users[i+1:]...)
	if err := s.repo.WriteUsers(ctx, users); err != nil {
		return nil, err
	}
	return &removed, nil
}

// value dereferences p, yielding the zero value for nil.
func value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
