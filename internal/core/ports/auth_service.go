package ports

import "context"

// SignupResult echoes the accepted identity. It never carries the code.
type SignupResult struct {
	Username string
	Email    string
}

type AuthService interface {
	Signup(ctx context.Context, username, email string) (*SignupResult, error)
	CreateToken(ctx context.Context, username, confirmationCode string) (string, error)
}
