package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/auth"
	"github.com/cmlabs-hris/hr-backoffice-go/internal/domain/user"
	"github.com/google/uuid"
)

type UserRepository struct {
	mu   sync.RWMutex
	rows map[string]user.User
}

var _ user.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{rows: make(map[string]user.User)}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.rows {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.rows[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	if exists, _ := r.ExistsByEmail(ctx, u.Email); exists {
		return user.User{}, user.ErrUserEmailExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	u.ID = uuid.Must(uuid.NewV7()).String()
	u.CreatedAt, u.UpdatedAt = now, now
	r.rows[u.ID] = u
	return u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.rows)), nil
}

type refreshToken struct {
	userID    string
	expiresAt time.Time
	revoked   bool
}

// TokenRepository stores refresh tokens by their raw value.
type TokenRepository struct {
	mu   sync.Mutex
	rows map[string]*refreshToken
}

func NewTokenRepository() *TokenRepository {
	return &TokenRepository{rows: make(map[string]*refreshToken)}
}

func (r *TokenRepository) CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, sessionReq auth.SessionTrackingRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[token] = &refreshToken{userID: userID, expiresAt: time.Unix(expiresAt, 0)}
	return nil
}

func (r *TokenRepository) IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[token]
	if !ok {
		return false, auth.ErrInvalidToken
	}
	return t.revoked || !t.expiresAt.After(time.Now()), nil
}

func (r *TokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.rows[token]; ok {
		t.revoked = true
	}
	return nil
}
