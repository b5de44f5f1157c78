package service

import (
	"context"
	"time"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

// ConnectionService manages directed friend edges.
type ConnectionService struct {
	users       domain.UserRepository
	connections domain.ConnectionRepository
	nowFn       func() time.Time
}

// NewConnectionService builds a ConnectionService.
func NewConnectionService(users domain.UserRepository, connections domain.ConnectionRepository) *ConnectionService {
	return &ConnectionService{users: users, connections: connections, nowFn: time.Now}
}

// WithClock allows overriding the time source (useful for tests).
func (s *ConnectionService) WithClock(fn func() time.Time) *ConnectionService {
	if fn != nil {
		s.nowFn = fn
	}
	return s
}

// CreateConnection stores the edge userID -> connectionID. Both users must
// exist. Self edges are not rejected here; creating an existing edge returns
// it unchanged.
func (s *ConnectionService) CreateConnection(ctx context.Context, userID, connectionID string) (domain.Connection, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return domain.Connection{}, err
	}
	target, err := s.requireUser(ctx, connectionID)
	if err != nil {
		return domain.Connection{}, err
	}
	return s.connections.Save(ctx, domain.Connection{
		User:       user,
		Connection: target,
		CreatedAt:  s.nowFn().UTC(),
	})
}

// GetConnectionsByUser lists the edges leaving userID.
func (s *ConnectionService) GetConnectionsByUser(ctx context.Context, userID string) ([]domain.Connection, error) {
	if _, err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return nonNil(s.connections.FindByUser(ctx, userID))
}

// GetConnectionsByConnection lists the edges pointing at connectionID.
func (s *ConnectionService) GetConnectionsByConnection(ctx context.Context, connectionID string) ([]domain.Connection, error) {
	if _, err := s.requireUser(ctx, connectionID); err != nil {
		return nil, err
	}
	return nonNil(s.connections.FindByConnection(ctx, connectionID))
}

// DeleteConnection removes the edge identified by key, if present.
func (s *ConnectionService) DeleteConnection(ctx context.Context, key domain.ConnectionKey) error {
	return s.connections.Delete(ctx, key)
}

// AddFriendByEmail connects caller to the user registered under email.
func (s *ConnectionService) AddFriendByEmail(ctx context.Context, caller domain.User, email string) (domain.Connection, error) {
	friend, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return domain.Connection{}, err
	}
	if friend == nil {
		return domain.Connection{}, domain.Invalid(domain.ErrUserNotFound, "no user with this email")
	}
	if friend.ID == caller.ID {
		return domain.Connection{}, domain.ErrSelfConnection
	}
	return s.CreateConnection(ctx, caller.ID, friend.ID)
}

// ListFriends returns the users caller is connected to.
func (s *ConnectionService) ListFriends(ctx context.Context, caller domain.User) ([]domain.User, error) {
	conns, err := s.GetConnectionsByUser(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	friends := make([]domain.User, 0, len(conns))
	for _, c := range conns {
		friends = append(friends, c.Connection.Public())
	}
	return friends, nil
}

// RemoveFriend deletes the edge caller -> friendID.
func (s *ConnectionService) RemoveFriend(ctx context.Context, caller domain.User, friendID string) error {
	return s.DeleteConnection(ctx, domain.ConnectionKey{UserID: caller.ID, ConnectionID: friendID})
}

func (s *ConnectionService) requireUser(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *user, nil
}
