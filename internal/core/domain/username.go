package domain

import "strings"

// ReservedUsername is taken by the self-profile route.
const ReservedUsername = "me"

// ValidateUsername is the single username rule shared by every entry point
// that accepts a username. It returns the username unchanged on success and a
// *ValidationError otherwise.
func ValidateUsername(username string) (string, error) {
	if username == "" {
		return "", NewValidationError("username", "this field is required")
	}

	if forbidden := ForbiddenUsernameSymbols(username); len(forbidden) > 0 {
		return "", NewValidationError("username", "forbidden symbols: "+strings.Join(forbidden, ", "))
	}

	if username == ReservedUsername {
		return "", NewValidationError("username", username+" is not allowed")
	}

	return username, nil
}

// ForbiddenUsernameSymbols returns every character of username outside
// [A-Za-z0-9_.@+-], in order of appearance and without deduplication.
func ForbiddenUsernameSymbols(username string) []string {
	var out []string
	for _, r := range username {
		if !usernameRune(r) {
			out = append(out, string(r))
		}
	}
	return out
}

func usernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.', r == '@', r == '+', r == '-':
		return true
	}
	return false
}
