package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/yamdb-api/internal/core/domain"
	"github.com/yamdb/yamdb-api/internal/core/ports"
)

type UserService struct {
	users    ports.UserRepository
	reviews  ports.ReviewRepository
	comments ports.CommentRepository
	log      zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	reviews ports.ReviewRepository,
	comments ports.CommentRepository,
	log zerolog.Logger,
) *UserService {
	return &UserService{users: users, reviews: reviews, comments: comments, log: log}
}

func (s *UserService) List(ctx context.Context, search string, page domain.PageRequest) ([]*domain.User, int64, error) {
	users, total, err := s.users.List(ctx, search, page.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// Create adds a user on behalf of an admin. Role defaults to "user".
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if _, err := domain.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.NewValidationError("role", fmt.Sprintf("%q is not a valid choice", role))
	}

	user, err := s.users.Create(ctx, &domain.User{
		Username:   in.Username,
		Email:      in.Email,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Bio:        in.Bio,
		Role:       role,
		DateJoined: time.Now().UTC(),
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, s.conflict(ctx, 0, &in.Username, &in.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("username", user.Username).Str("role", user.Role).Msg("user created")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}

func (s *UserService) Update(ctx context.Context, username string, update domain.UserUpdate) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, user, update)
}

// UpdateSelf applies a profile edit made by the user themselves. A role in
// the update is dropped.
func (s *UserService) UpdateSelf(ctx context.Context, self *domain.User, update domain.UserUpdate) (*domain.User, error) {
	if self == nil || self.ID == 0 {
		return nil, domain.ErrUnauthenticated
	}
	update.Role = nil
	return s.apply(ctx, self, update)
}

func (s *UserService) apply(ctx context.Context, user *domain.User, update domain.UserUpdate) (*domain.User, error) {
	if update.Username != nil {
		if _, err := domain.ValidateUsername(*update.Username); err != nil {
			return nil, err
		}
	}
	if update.Role != nil && !domain.ValidRole(*update.Role) {
		return nil, domain.NewValidationError("role", fmt.Sprintf("%q is not a valid choice", *update.Role))
	}
	if update.Empty() {
		return user, nil
	}

	updated, err := s.users.Update(ctx, user.ID, update)
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, s.conflict(ctx, user.ID, update.Username, update.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", user.Username, err)
	}
	return updated, nil
}

// conflict names the fields that collide with a record other than self.
func (s *UserService) conflict(ctx context.Context, self int64, username, email *string) error {
	takenBy := func(find func(context.Context, string) (*domain.User, error), value *string) (bool, error) {
		if value == nil {
			return false, nil
		}
		other, err := find(ctx, *value)
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return false, nil
		case err != nil:
			return false, err
		}
		return other.ID != self, nil
	}

	usernameTaken, err := takenBy(s.users.FindByUsername, username)
	if err != nil {
		return fmt.Errorf("diagnose conflict: %w", err)
	}
	emailTaken, err := takenBy(s.users.FindByEmail, email)
	if err != nil {
		return fmt.Errorf("diagnose conflict: %w", err)
	}
	if !usernameTaken && !emailTaken {
		// the colliding record is gone; report the username as the likely culprit
		usernameTaken = username != nil
		emailTaken = !usernameTaken
	}
	return domain.NewUserConflict(usernameTaken, emailTaken)
}

// Delete removes a user together with their reviews, the comments on those
// reviews, and their comments elsewhere.
func (s *UserService) Delete(ctx context.Context, username string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	reviewIDs, err := s.reviews.DeleteByAuthor(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("delete user %s: reviews: %w", username, err)
	}
	if err := s.comments.DeleteByReviews(ctx, reviewIDs); err != nil {
		return fmt.Errorf("delete user %s: review comments: %w", username, err)
	}
	if err := s.comments.DeleteByAuthor(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user %s: comments: %w", username, err)
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.log.Info().Str("username", username).Int("reviews", len(reviewIDs)).Msg("user deleted")
	return nil
}
