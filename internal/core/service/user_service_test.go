package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yamdb/yamdb-api/internal/core/domain"
	"github.com/yamdb/yamdb-api/internal/core/ports"
)

type userFixture struct {
	svc      *UserService
	users    *stubUserRepo
	reviews  *stubReviewRepo
	comments *stubCommentRepo
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:    newStubUserRepo(),
		reviews:  newStubReviewRepo(),
		comments: newStubCommentRepo(),
	}
	f.svc = NewUserService(f.users, f.reviews, f.comments, zerolog.Nop())
	return f
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestUserService_Create_DefaultsRole(t *testing.T) {
	f := newUserFixture()

	user, err := f.svc.Create(context.Background(), ports.CreateUserInput{Username: "bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if user.Role != domain.RoleUser || user.ID == 0 {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUserService_Create_RejectsBadInput(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	cases := []struct {
		in    ports.CreateUserInput
		field string
	}{
		{ports.CreateUserInput{Username: "me", Email: "me@example.com"}, "username"},
		{ports.CreateUserInput{Username: "with space", Email: "x@example.com"}, "username"},
		{ports.CreateUserInput{Username: "bob", Email: "bob@example.com", Role: "owner"}, "role"},
	}
	for _, tc := range cases {
		_, err := f.svc.Create(ctx, tc.in)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%+v: expected ValidationError, got %v", tc.in, err)
		}
		if _, ok := ve.Fields[tc.field]; !ok {
			t.Fatalf("%+v: expected %s field, got %v", tc.in, tc.field, ve.Fields)
		}
	}
}

func TestUserService_Create_Conflict(t *testing.T) {
	f := newUserFixture()
	f.users.seed(&domain.User{Username: "bob", Email: "bob@example.com"})

	_, err := f.svc.Create(context.Background(), ports.CreateUserInput{Username: "bob", Email: "other@example.com"})
	var ce *domain.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if !ce.Has("username") || ce.Has("email") {
		t.Fatalf("expected username conflict only, got %v", ce.Fields)
	}
}

func TestUserService_Update_ChangesRole(t *testing.T) {
	f := newUserFixture()
	f.users.seed(&domain.User{Username: "bob", Email: "bob@example.com"})

	user, err := f.svc.Update(context.Background(), "bob", domain.UserUpdate{Role: strPtr(domain.RoleModerator)})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !user.IsModerator() {
		t.Fatalf("expected moderator, got %s", user.Role)
	}
}

func TestUserService_Update_UnknownUser(t *testing.T) {
	f := newUserFixture()

	_, err := f.svc.Update(context.Background(), "ghost", domain.UserUpdate{Bio: strPtr("x")})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_Update_EmailConflictIgnoresSelf(t *testing.T) {
	f := newUserFixture()
	f.users.seed(&domain.User{Username: "bob", Email: "bob@example.com"})
	f.users.seed(&domain.User{Username: "carol", Email: "carol@example.com"})
	ctx := context.Background()

	_, err := f.svc.Update(ctx, "bob", domain.UserUpdate{Username: strPtr("bob"), Email: strPtr("carol@example.com")})
	var ce *domain.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if ce.Has("username") || !ce.Has("email") {
		t.Fatalf("expected email conflict only, got %v", ce.Fields)
	}
}

func TestUserService_UpdateSelf_IgnoresRole(t *testing.T) {
	f := newUserFixture()
	self := f.users.seed(&domain.User{Username: "bob", Email: "bob@example.com"})

	user, err := f.svc.UpdateSelf(context.Background(), self, domain.UserUpdate{
		Role: strPtr(domain.RoleAdmin),
		Bio:  strPtr("hello"),
	})
	if err != nil {
		t.Fatalf("UpdateSelf returned error: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("role must not change, got %s", user.Role)
	}
	if user.Bio != "hello" {
		t.Fatalf("bio not applied: %+v", user)
	}
}

func TestUserService_UpdateSelf_RoleOnlyIsNoop(t *testing.T) {
	f := newUserFixture()
	self := f.users.seed(&domain.User{Username: "bob", Email: "bob@example.com"})

	user, err := f.svc.UpdateSelf(context.Background(), self, domain.UserUpdate{Role: strPtr(domain.RoleAdmin)})
	if err != nil {
		t.Fatalf("UpdateSelf returned error: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("role must not change, got %s", user.Role)
	}
}

func TestUserService_UpdateSelf_ValidatesUsername(t *testing.T) {
	f := newUserFixture()
	self := f.users.seed(&domain.User{Username: "bob", Email: "bob@example.com"})

	_, err := f.svc.UpdateSelf(context.Background(), self, domain.UserUpdate{Username: strPtr("me")})
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUserService_UpdateSelf_Anonymous(t *testing.T) {
	f := newUserFixture()

	_, err := f.svc.UpdateSelf(context.Background(), nil, domain.UserUpdate{Bio: strPtr("x")})
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestUserService_Delete_Cascades(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	bob := f.users.seed(&domain.User{Username: "bob", Email: "bob@example.com"})
	carol := f.users.seed(&domain.User{Username: "carol", Email: "carol@example.com"})

	bobsReview, _ := f.reviews.Create(ctx, &domain.Review{TitleID: 1, AuthorID: bob.ID, Score: 5})
	carolsReview, _ := f.reviews.Create(ctx, &domain.Review{TitleID: 1, AuthorID: carol.ID, Score: 7})
	f.comments.Create(ctx, &domain.Comment{ReviewID: bobsReview.ID, AuthorID: carol.ID})
	f.comments.Create(ctx, &domain.Comment{ReviewID: carolsReview.ID, AuthorID: bob.ID})
	kept, _ := f.comments.Create(ctx, &domain.Comment{ReviewID: carolsReview.ID, AuthorID: carol.ID})

	if err := f.svc.Delete(ctx, "bob"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := f.users.FindByUsername(ctx, "bob"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("user still present")
	}
	if len(f.reviews.reviews) != 1 {
		t.Fatalf("expected only carol's review to remain, got %d", len(f.reviews.reviews))
	}
	if len(f.comments.comments) != 1 || f.comments.comments[kept.ID] == nil {
		t.Fatalf("expected only carol's own comment to remain, got %d", len(f.comments.comments))
	}
}

func TestUserService_Delete_UnknownUser(t *testing.T) {
	f := newUserFixture()

	if err := f.svc.Delete(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_List_Search(t *testing.T) {
	f := newUserFixture()
	f.users.seed(&domain.User{Username: "alice", Email: "a@example.com"})
	f.users.seed(&domain.User{Username: "bob", Email: "b@example.com"})
	f.users.seed(&domain.User{Username: "alicia", Email: "c@example.com"})

	users, total, err := f.svc.List(context.Background(), "ali", domain.PageRequest{Page: 1, Size: 1})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 2 || len(users) != 1 || users[0].Username != "alice" {
		t.Fatalf("unexpected page: total=%d users=%v", total, users)
	}
}
