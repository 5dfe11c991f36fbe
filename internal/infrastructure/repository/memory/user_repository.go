package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/user"
)

type UserRepository struct {
	mu     sync.RWMutex
	items  map[int64]user.User
	nextID int64
}

func NewUserRepository(users []user.User) *UserRepository {
	r := &UserRepository{items: make(map[int64]user.User, len(users))}
	for _, u := range users {
		r.items[u.ID] = u
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *UserRepository) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	return u, ok, nil
}

func (r *UserRepository) FindByName(_ context.Context, name string) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found user.User
		ok    bool
	)
	for _, u := range r.items {
		if !strings.EqualFold(u.Name, name) {
			continue
		}
		if !ok || u.ID < found.ID {
			found, ok = u, true
		}
	}
	return found, ok, nil
}

func (r *UserRepository) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	u.ID = r.nextID
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.items[u.ID] = u
	return u, nil
}

func (r *UserRepository) UpdateHandicap(_ context.Context, id int64, handicap float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return fmt.Errorf("update handicap: user %d not found", id)
	}
	u.Handicap = handicap
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u
	return nil
}

// restore inserts a placeholder under an explicit id unless the id exists.
func (r *UserRepository) restore(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; ok {
		return false
	}
	u := user.Placeholder(id)
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.items[id] = u
	if id > r.nextID {
		r.nextID = id
	}
	return true
}
