package ports

import (
	"context"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

// CreateUserInput carries an administrative user creation.
type CreateUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      string
}

// UserService manages Directory records on behalf of admins and of users
// editing their own profile.
type UserService interface {
	List(ctx context.Context, search string, page domain.PageRequest) ([]*domain.User, int64, error)
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, username string, update domain.UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, username string) error

	// UpdateSelf applies update to the caller's own record; role is never changed.
	UpdateSelf(ctx context.Context, self *domain.User, update domain.UserUpdate) (*domain.User, error)
}
