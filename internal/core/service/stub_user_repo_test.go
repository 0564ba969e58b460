package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yamdb/yamdb-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory Directory mirroring the unique indexes of the Mongo repository.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*domain.User
	nextID int64

	createErr   error // if set, Create returns this error
	createCalls int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.LastLogin != nil {
		at := *u.LastLogin
		clone.LastLogin = &at
	}
	return &clone
}

func (r *stubUserRepo) seed(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clone := cloneUser(u)
	clone.ID = r.nextID
	if clone.Role == "" {
		clone.Role = domain.RoleUser
	}
	r.users[clone.ID] = clone
	return cloneUser(clone)
}

func (r *stubUserRepo) taken(id int64, username, email string) bool {
	for _, u := range r.users {
		if u.ID == id {
			continue
		}
		if u.Username == username || u.Email == email {
			return true
		}
	}
	return false
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	r.createCalls++
	if r.createErr != nil {
		r.mu.Unlock()
		return nil, r.createErr
	}
	if r.taken(0, user.Username, user.Email) {
		r.mu.Unlock()
		return nil, domain.ErrDuplicate
	}
	r.mu.Unlock()
	return r.seed(user), nil
}

func (r *stubUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *stubUserRepo) FindByUsernameAndEmail(_ context.Context, username, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username && u.Email == email })
}

func (r *stubUserRepo) List(_ context.Context, search string, page domain.PageRequest) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.User
	for _, u := range r.users {
		if search != "" && !strings.Contains(strings.ToLower(u.Username), strings.ToLower(search)) {
			continue
		}
		matched = append(matched, cloneUser(u))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Username < matched[j].Username })

	total := int64(len(matched))
	page = page.Normalize()
	skip := int(page.Skip())
	if skip > len(matched) {
		return []*domain.User{}, total, nil
	}
	end := skip + page.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubUserRepo) Update(_ context.Context, id int64, upd domain.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	next := cloneUser(u)
	if upd.Username != nil {
		next.Username = *upd.Username
	}
	if upd.Email != nil {
		next.Email = *upd.Email
	}
	if upd.FirstName != nil {
		next.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		next.LastName = *upd.LastName
	}
	if upd.Bio != nil {
		next.Bio = *upd.Bio
	}
	if upd.Role != nil {
		next.Role = *upd.Role
	}
	if r.taken(id, next.Username, next.Email) {
		return nil, domain.ErrDuplicate
	}
	r.users[id] = next
	return cloneUser(next), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) TouchLogin(_ context.Context, id int64, prev *time.Time, at time.Time) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	switch {
	case prev == nil && u.LastLogin != nil,
		prev != nil && (u.LastLogin == nil || !u.LastLogin.Equal(*prev)):
		return nil, domain.ErrUserNotFound
	}
	at = at.UTC()
	u.LastLogin = &at
	return cloneUser(u), nil
}
