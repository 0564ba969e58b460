// Package credentials derives the two secrets the signup flow hands out:
// stateless confirmation codes proving control of an email address, and
// signed bearer access tokens.
package credentials

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

const (
	// DefaultCodeTTL bounds how long an issued code stays valid.
	DefaultCodeTTL = 72 * time.Hour

	codeMACSize = 20
)

// codeEpoch keeps the base36 timestamp short.
var codeEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// CodeGenerator issues and verifies confirmation codes. A code is
// "<base36 seconds since epoch>-<hex mac>" where the mac covers the user's
// id, email and login marker. Nothing is stored: advancing the login marker
// or changing the email invalidates every outstanding code.
type CodeGenerator struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewCodeGenerator derives the MAC key from secret.
func NewCodeGenerator(secret string, ttl time.Duration) (*CodeGenerator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("confirmation code secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	key := blake2b.Sum256([]byte("yamdb.confirmation-code:" + secret))
	return &CodeGenerator{key: key[:], ttl: ttl, now: time.Now}, nil
}

// Issue returns a fresh code for the user's current state.
func (g *CodeGenerator) Issue(user *domain.User) string {
	ts := int64(g.now().Sub(codeEpoch) / time.Second)
	return g.make(user, ts)
}

// Verify re-derives the code from the user's current state and compares.
// A mismatch, a malformed code or an expired code yields false.
func (g *CodeGenerator) Verify(user *domain.User, code string) bool {
	if user == nil || code == "" {
		return false
	}

	tsPart, macPart, ok := strings.Cut(code, "-")
	if !ok || tsPart == "" || len(macPart) != hex.EncodedLen(codeMACSize) {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil || ts < 0 {
		return false
	}

	if subtle.ConstantTimeCompare([]byte(g.make(user, ts)), []byte(code)) != 1 {
		return false
	}

	issued := codeEpoch.Add(time.Duration(ts) * time.Second)
	return g.now().Sub(issued) <= g.ttl
}

func (g *CodeGenerator) make(user *domain.User, ts int64) string {
	mac, err := blake2b.New256(g.key)
	if err != nil {
		// only possible with a key longer than 64 bytes
		panic(err)
	}
	_, _ = fmt.Fprintf(mac, "%d|%d|%s|%d", user.ID, user.LoginMarker(), user.Email, ts)
	sum := mac.Sum(nil)[:codeMACSize]
	return strconv.FormatInt(ts, 36) + "-" + hex.EncodeToString(sum)
}
