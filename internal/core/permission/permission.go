// Package permission decides whether an identity may apply an HTTP verb to
// a resource. Policies are pure: they never error and never touch storage.
//
// Checks run in two phases. HasPermission gates the route before any object
// is loaded; HasObjectPermission gates the resolved object. A policy may let
// a caller through the first gate and still refuse the second.
package permission

import (
	"net/http"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

// Identity is the authenticated caller, or nil for an anonymous request.
type Identity = *domain.User

// Owned is a resource attributed to an author.
type Owned interface {
	OwnerID() int64
}

// Policy is a two-phase permission check.
type Policy interface {
	Name() string
	HasPermission(id Identity, method string) bool
	HasObjectPermission(id Identity, method string, obj Owned) bool
}

// SafeMethod reports whether method never mutates state.
func SafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func authenticated(id Identity) bool {
	return id != nil && id.ID != 0
}

type adminOnly struct{}

// AdminOnly allows authenticated admins, for every verb.
var AdminOnly Policy = adminOnly{}

func (adminOnly) Name() string { return "admin_only" }

func (adminOnly) HasPermission(id Identity, _ string) bool {
	return authenticated(id) && id.IsAdmin()
}

func (p adminOnly) HasObjectPermission(id Identity, method string, _ Owned) bool {
	return p.HasPermission(id, method)
}

type adminOrReadOnly struct{}

// AdminOrReadOnly allows safe verbs for anyone and writes for admins.
var AdminOrReadOnly Policy = adminOrReadOnly{}

func (adminOrReadOnly) Name() string { return "admin_or_read_only" }

func (adminOrReadOnly) HasPermission(id Identity, method string) bool {
	return SafeMethod(method) || (authenticated(id) && id.IsAdmin())
}

func (p adminOrReadOnly) HasObjectPermission(id Identity, method string, _ Owned) bool {
	return p.HasPermission(id, method)
}

type adminModeratorAuthorOrReadOnly struct{}

// AdminModeratorAuthorOrReadOnly allows safe verbs for anyone. Any
// authenticated caller passes the collection gate; writes on an object
// additionally require admin, moderator, or authorship.
var AdminModeratorAuthorOrReadOnly Policy = adminModeratorAuthorOrReadOnly{}

func (adminModeratorAuthorOrReadOnly) Name() string { return "admin_moderator_author_or_read_only" }

func (adminModeratorAuthorOrReadOnly) HasPermission(id Identity, method string) bool {
	return SafeMethod(method) || authenticated(id)
}

func (adminModeratorAuthorOrReadOnly) HasObjectPermission(id Identity, method string, obj Owned) bool {
	if SafeMethod(method) {
		return true
	}
	if !authenticated(id) {
		return false
	}
	if id.IsAdmin() || id.IsModerator() {
		return true
	}
	return obj != nil && obj.OwnerID() == id.ID
}

type authenticatedOnly struct{}

// Authenticated allows any authenticated caller.
var Authenticated Policy = authenticatedOnly{}

func (authenticatedOnly) Name() string { return "authenticated" }

func (authenticatedOnly) HasPermission(id Identity, _ string) bool {
	return authenticated(id)
}

func (p authenticatedOnly) HasObjectPermission(id Identity, method string, _ Owned) bool {
	return p.HasPermission(id, method)
}

// Check runs the collection gate and maps a refusal to
// domain.ErrUnauthenticated for anonymous callers and domain.ErrForbidden
// otherwise.
func Check(p Policy, id Identity, method string) error {
	if p.HasPermission(id, method) {
		return nil
	}
	return denial(id)
}

// CheckObject runs the object gate with the same error mapping as Check.
func CheckObject(p Policy, id Identity, method string, obj Owned) error {
	if p.HasObjectPermission(id, method, obj) {
		return nil
	}
	return denial(id)
}

func denial(id Identity) error {
	if !authenticated(id) {
		return domain.ErrUnauthenticated
	}
	return domain.ErrForbidden
}
