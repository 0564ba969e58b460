package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yamdb/yamdb-api/internal/metrics"
	"github.com/yamdb/yamdb-api/internal/core/domain"
	"github.com/yamdb/yamdb-api/internal/core/ports"
)

const signupSubject = "Registration YaMDb"

// CodeIssuer issues and verifies confirmation codes.
type CodeIssuer interface {
	Issue(user *domain.User) string
	Verify(user *domain.User, code string) bool
}

// TokenMinter mints access tokens.
type TokenMinter interface {
	Issue(user *domain.User) (string, error)
}

// AuthService implements passwordless signup and the confirmation code to
// access token exchange.
type AuthService struct {
	users    ports.UserRepository
	codes    CodeIssuer
	tokens   TokenMinter
	mailer   ports.Mailer
	mailFrom string
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	codes CodeIssuer,
	tokens TokenMinter,
	mailer ports.Mailer,
	mailFrom string,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		codes:    codes,
		tokens:   tokens,
		mailer:   mailer,
		mailFrom: mailFrom,
		log:      log,
		now:      time.Now,
	}
}

// Signup gets or creates the (username, email) record and mails it a
// confirmation code. Repeating a signup with identical data re-sends a code.
func (s *AuthService) Signup(ctx context.Context, username, email string) (*ports.SignupResult, error) {
	if _, err := domain.ValidateUsername(username); err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	user, created, err := s.getOrCreate(ctx, username, email)
	if err != nil {
		var ce *domain.ConflictError
		if errors.As(err, &ce) {
			metrics.SignupsTotal.WithLabelValues("conflict").Inc()
			s.log.Info().Str("username", username).Str("fields", ce.Fields.String()).Msg("signup conflict")
			return nil, err
		}
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("signup: %w", err)
	}

	msg := ports.MailMessage{
		ID:      uuid.NewString(),
		Subject: signupSubject,
		Body:    "Verify code: " + s.codes.Issue(user),
		From:    s.mailFrom,
		To:      []string{user.Email},
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("signup: send confirmation code: %w", err)
	}

	result := "reissued"
	if created {
		result = "created"
	}
	metrics.SignupsTotal.WithLabelValues(result).Inc()
	s.log.Info().Str("username", user.Username).Str("result", result).Msg("confirmation code sent")

	return &ports.SignupResult{Username: user.Username, Email: user.Email}, nil
}

func (s *AuthService) getOrCreate(ctx context.Context, username, email string) (*domain.User, bool, error) {
	existing, err := s.users.FindByUsernameAndEmail(ctx, username, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, err
	}

	user, err := s.create(ctx, username, email)
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		return nil, false, err
	}

	user, err = s.resolveDuplicate(ctx, username, email)
	return user, false, err
}

func (s *AuthService) create(ctx context.Context, username, email string) (*domain.User, error) {
	return s.users.Create(ctx, &domain.User{
		Username:   username,
		Email:      email,
		Role:       domain.RoleUser,
		DateJoined: s.now().UTC(),
	})
}

// resolveDuplicate runs after the Directory rejected an insert. A concurrent
// signup for the same pair is not a conflict; otherwise it names the
// colliding fields.
func (s *AuthService) resolveDuplicate(ctx context.Context, username, email string) (*domain.User, error) {
	if user, err := s.users.FindByUsernameAndEmail(ctx, username, email); err == nil {
		return user, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	usernameTaken, err := exists(ctx, s.users.FindByUsername, username)
	if err != nil {
		return nil, err
	}
	emailTaken, err := exists(ctx, s.users.FindByEmail, email)
	if err != nil {
		return nil, err
	}
	if usernameTaken || emailTaken {
		return nil, domain.NewUserConflict(usernameTaken, emailTaken)
	}

	// The colliding record vanished between the insert and the diagnosis.
	s.log.Warn().Str("username", username).Msg("signup collision resolved before diagnosis, retrying insert")
	user, err := s.create(ctx, username, email)
	if errors.Is(err, domain.ErrDuplicate) {
		return s.users.FindByUsernameAndEmail(ctx, username, email)
	}
	return user, err
}

func exists(ctx context.Context, find func(context.Context, string) (*domain.User, error), value string) (bool, error) {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

// CreateToken exchanges a confirmation code for an access token. Success
// advances the user's login marker, so the same code never works twice.
func (s *AuthService) CreateToken(ctx context.Context, username, confirmationCode string) (string, error) {
	if _, err := domain.ValidateUsername(username); err != nil {
		metrics.TokenFailuresTotal.WithLabelValues("invalid_username").Inc()
		return "", err
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.TokenFailuresTotal.WithLabelValues("user_not_found").Inc()
			return "", err
		}
		metrics.TokenFailuresTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("create token: %w", err)
	}

	if !s.codes.Verify(user, confirmationCode) {
		metrics.TokenFailuresTotal.WithLabelValues("invalid_code").Inc()
		s.log.Info().Str("username", username).Msg("invalid confirmation code")
		return "", domain.ErrInvalidCode
	}

	user, err = s.users.TouchLogin(ctx, user.ID, user.LastLogin, s.nextLogin(user))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// another exchange consumed the code first
			metrics.TokenFailuresTotal.WithLabelValues("invalid_code").Inc()
			return "", domain.ErrInvalidCode
		}
		metrics.TokenFailuresTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("create token: record login: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		metrics.TokenFailuresTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("create token: %w", err)
	}

	metrics.TokensIssuedTotal.Inc()
	s.log.Info().Str("username", username).Msg("access token issued")
	return token, nil
}

// nextLogin returns a millisecond timestamp strictly after the stored marker.
func (s *AuthService) nextLogin(user *domain.User) time.Time {
	at := s.now().UTC().Truncate(time.Millisecond)
	if user.LastLogin != nil && !at.After(*user.LastLogin) {
		at = user.LastLogin.UTC().Truncate(time.Millisecond).Add(time.Millisecond)
	}
	return at
}
