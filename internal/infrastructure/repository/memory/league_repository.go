package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/league"
)

type LeagueRepository struct {
	mu      sync.RWMutex
	items   map[int64]league.League
	members map[int64][]league.Member
	nextID  int64
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{
		items:   make(map[int64]league.League),
		members: make(map[int64][]league.Member),
	}
}

func (r *LeagueRepository) Create(_ context.Context, l league.League) (league.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	l.ID = r.nextID
	l.CreatedAt = time.Now().UTC()
	r.items[l.ID] = l
	return l, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, id int64) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[id]
	return l, ok, nil
}

func (r *LeagueRepository) AddMember(_ context.Context, m league.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[m.LeagueID]; !ok {
		return fmt.Errorf("add member: league %d not found", m.LeagueID)
	}
	for _, existing := range r.members[m.LeagueID] {
		if existing.UserID == m.UserID {
			return nil
		}
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	r.members[m.LeagueID] = append(r.members[m.LeagueID], m)
	return nil
}

func (r *LeagueRepository) ListMembers(_ context.Context, leagueID int64) ([]league.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]league.Member(nil), r.members[leagueID]...), nil
}

type LeagueRoundRepository struct {
	mu     sync.RWMutex
	items  map[leagueRoundKey]league.Round
	nextID int64
}

type leagueRoundKey struct {
	leagueID int64
	roundID  int64
}

func NewLeagueRoundRepository() *LeagueRoundRepository {
	return &LeagueRoundRepository{items: make(map[leagueRoundKey]league.Round)}
}

func (r *LeagueRoundRepository) Upsert(_ context.Context, item league.Round) (league.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := leagueRoundKey{leagueID: item.LeagueID, roundID: item.RoundID}
	if existing, ok := r.items[key]; ok {
		item.ID = existing.ID
	} else {
		r.nextID++
		item.ID = r.nextID
	}
	r.items[key] = item
	return item, nil
}

func (r *LeagueRoundRepository) ListByLeague(_ context.Context, leagueID int64) ([]league.Round, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.Round, 0)
	for key, item := range r.items {
		if key.leagueID == leagueID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
