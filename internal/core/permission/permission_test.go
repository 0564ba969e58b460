package permission

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

type ownedStub int64

func (o ownedStub) OwnerID() int64 { return int64(o) }

var (
	anonymous = (*domain.User)(nil)
	plain     = &domain.User{ID: 1, Username: "plain", Role: domain.RoleUser}
	author    = &domain.User{ID: 2, Username: "author", Role: domain.RoleUser}
	moderator = &domain.User{ID: 3, Username: "mod", Role: domain.RoleModerator}
	admin     = &domain.User{ID: 4, Username: "admin", Role: domain.RoleAdmin}
	staff     = &domain.User{ID: 5, Username: "staff", Role: domain.RoleUser, IsStaff: true}
	superuser = &domain.User{ID: 6, Username: "root", Role: domain.RoleUser, IsSuperuser: true}
)

var writeMethods = []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

func TestSafeMethod(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.True(t, SafeMethod(m), m)
	}
	for _, m := range writeMethods {
		assert.False(t, SafeMethod(m), m)
	}
}

func TestAdminOnly(t *testing.T) {
	for _, id := range []Identity{admin, staff, superuser} {
		assert.True(t, AdminOnly.HasPermission(id, http.MethodGet), id.Username)
		assert.True(t, AdminOnly.HasPermission(id, http.MethodDelete), id.Username)
	}
	for _, id := range []Identity{anonymous, plain, moderator} {
		assert.False(t, AdminOnly.HasPermission(id, http.MethodGet))
		assert.False(t, AdminOnly.HasPermission(id, http.MethodPost))
	}
}

func TestAdminOrReadOnly(t *testing.T) {
	for _, id := range []Identity{anonymous, plain, moderator, admin} {
		assert.True(t, AdminOrReadOnly.HasPermission(id, http.MethodGet))
	}
	for _, m := range writeMethods {
		assert.False(t, AdminOrReadOnly.HasPermission(anonymous, m))
		assert.False(t, AdminOrReadOnly.HasPermission(plain, m))
		assert.False(t, AdminOrReadOnly.HasPermission(moderator, m))
		assert.True(t, AdminOrReadOnly.HasPermission(admin, m))
		assert.True(t, AdminOrReadOnly.HasPermission(superuser, m))
	}
}

func TestAdminModeratorAuthorOrReadOnly_SafeForEveryone(t *testing.T) {
	p := AdminModeratorAuthorOrReadOnly
	obj := ownedStub(author.ID)
	for _, id := range []Identity{anonymous, plain, author, moderator, admin} {
		assert.True(t, p.HasPermission(id, http.MethodGet))
		assert.True(t, p.HasObjectPermission(id, http.MethodGet, obj))
	}
}

func TestAdminModeratorAuthorOrReadOnly_TwoPhase(t *testing.T) {
	p := AdminModeratorAuthorOrReadOnly
	obj := ownedStub(author.ID)

	for _, m := range writeMethods {
		// a non-owner passes the collection gate...
		assert.True(t, p.HasPermission(plain, m))
		// ...and is refused once the object is known.
		assert.False(t, p.HasObjectPermission(plain, m, obj))

		assert.True(t, p.HasObjectPermission(author, m, obj))
		assert.True(t, p.HasObjectPermission(moderator, m, obj))
		assert.True(t, p.HasObjectPermission(admin, m, obj))
		assert.True(t, p.HasObjectPermission(staff, m, obj))

		assert.False(t, p.HasPermission(anonymous, m))
		assert.False(t, p.HasObjectPermission(anonymous, m, obj))
	}
}

func TestAuthenticated(t *testing.T) {
	assert.False(t, Authenticated.HasPermission(anonymous, http.MethodGet))
	assert.False(t, Authenticated.HasPermission(&domain.User{}, http.MethodGet))
	assert.True(t, Authenticated.HasPermission(plain, http.MethodPatch))
}

func TestCheck_MapsDenials(t *testing.T) {
	assert.NoError(t, Check(AdminOnly, admin, http.MethodPost))
	assert.ErrorIs(t, Check(AdminOnly, anonymous, http.MethodPost), domain.ErrUnauthenticated)
	assert.ErrorIs(t, Check(AdminOnly, plain, http.MethodPost), domain.ErrForbidden)

	obj := ownedStub(author.ID)
	assert.NoError(t, CheckObject(AdminModeratorAuthorOrReadOnly, author, http.MethodPatch, obj))
	assert.ErrorIs(t, CheckObject(AdminModeratorAuthorOrReadOnly, plain, http.MethodPatch, obj), domain.ErrForbidden)
}
