package ports

import (
	"context"
	"time"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

// UserRepository is the Directory: persistent user identity records.
//
// Username and email are each unique. Writes that would break either
// constraint fail with domain.ErrDuplicate; the caller decides which field
// collided. Lookups that match nothing return domain.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsernameAndEmail(ctx context.Context, username, email string) (*domain.User, error)
	List(ctx context.Context, search string, page domain.PageRequest) ([]*domain.User, int64, error)
	Update(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	// TouchLogin moves last_login from prev to at, which invalidates every
	// outstanding confirmation code. It fails with domain.ErrUserNotFound when
	// the stored last_login no longer equals prev.
	TouchLogin(ctx context.Context, id int64, prev *time.Time, at time.Time) (*domain.User, error)
}
