package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/team-manager/models"
	"github.com/Dosada05/team-manager/repositories"
	"github.com/google/uuid"
)

type fakeTx struct {
	calls int
	err   error
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type fakeGameRepo struct {
	mu      sync.Mutex
	games   map[int]*models.Game
	nextID  int
	updates int
}

func newFakeGameRepo(games ...*models.Game) *fakeGameRepo {
	r := &fakeGameRepo{games: make(map[int]*models.Game), nextID: 1}
	for _, g := range games {
		r.games[g.ID] = g.Clone()
		if g.ID >= r.nextID {
			r.nextID = g.ID + 1
		}
	}
	return r
}

func (r *fakeGameRepo) Create(ctx context.Context, game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	game.ID = r.nextID
	r.nextID++
	game.CreatedAt = time.Now()
	game.UpdatedAt = game.CreatedAt
	r.games[game.ID] = game.Clone()
	return nil
}

func (r *fakeGameRepo) GetByID(ctx context.Context, id int) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	return g.Clone(), nil
}

func (r *fakeGameRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Game, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeGameRepo) Update(ctx context.Context, exec repositories.SQLExecutor, game *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[game.ID]; !ok {
		return repositories.ErrGameNotFound
	}
	game.UpdatedAt = time.Now()
	stored := game.Clone()
	stored.Rosters = nil
	r.games[game.ID] = stored
	r.updates++
	return nil
}

func (r *fakeGameRepo) ListByTeam(ctx context.Context, teamID int, status *models.GameStatus) ([]*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Game
	for _, g := range r.games {
		if g.TeamID == teamID && (status == nil || g.Status == *status) {
			out = append(out, g.Clone())
		}
	}
	return out, nil
}

func (r *fakeGameRepo) get(id int) *models.Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.games[id].Clone()
}

type fakeRosterRepo struct {
	rosters map[int][]models.RosterEntry
	err     error
}

func newFakeRosterRepo() *fakeRosterRepo {
	return &fakeRosterRepo{rosters: make(map[int][]models.RosterEntry)}
}

func (r *fakeRosterRepo) ReplaceForGame(ctx context.Context, exec repositories.SQLExecutor, gameID int, entries []models.RosterEntry) error {
	if r.err != nil {
		return r.err
	}
	r.rosters[gameID] = append([]models.RosterEntry(nil), entries...)
	return nil
}

func (r *fakeRosterRepo) ListByGame(ctx context.Context, gameID int) ([]models.RosterEntry, error) {
	return append([]models.RosterEntry(nil), r.rosters[gameID]...), nil
}

type fakeCardRepo struct {
	cards  map[int]*models.Card
	nextID int
}

func newFakeCardRepo(cards ...*models.Card) *fakeCardRepo {
	r := &fakeCardRepo{cards: make(map[int]*models.Card), nextID: 1}
	for _, c := range cards {
		cp := *c
		r.cards[c.ID] = &cp
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *fakeCardRepo) Create(ctx context.Context, exec repositories.SQLExecutor, card *models.Card) error {
	card.ID = r.nextID
	r.nextID++
	cp := *card
	r.cards[card.ID] = &cp
	return nil
}

func (r *fakeCardRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Card, error) {
	c, ok := r.cards[id]
	if !ok {
		return nil, repositories.ErrCardNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCardRepo) Update(ctx context.Context, exec repositories.SQLExecutor, card *models.Card) error {
	if _, ok := r.cards[card.ID]; !ok {
		return repositories.ErrCardNotFound
	}
	cp := *card
	r.cards[card.ID] = &cp
	return nil
}

func (r *fakeCardRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.cards[id]; !ok {
		return repositories.ErrCardNotFound
	}
	delete(r.cards, id)
	return nil
}

func (r *fakeCardRepo) ListByGame(ctx context.Context, gameID int) ([]*models.Card, error) {
	var out []*models.Card
	for _, c := range r.cards {
		if c.GameID == gameID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakePlayerRepo struct {
	players map[int]*models.Player
}

func newFakePlayerRepo(players ...*models.Player) *fakePlayerRepo {
	r := &fakePlayerRepo{players: make(map[int]*models.Player)}
	for _, p := range players {
		r.players[p.ID] = p
	}
	return r
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlayerRepo) ListByTeam(ctx context.Context, teamID int) ([]*models.Player, error) {
	var out []*models.Player
	for _, p := range r.players {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeJobRepo struct {
	jobs []*models.Job
	err  error
}

func (r *fakeJobRepo) Create(ctx context.Context, exec repositories.SQLExecutor, job *models.Job) error {
	if r.err != nil {
		return r.err
	}
	r.jobs = append(r.jobs, job)
	return nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	for _, j := range r.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, repositories.ErrJobNotFound
}

func (r *fakeJobRepo) List(ctx context.Context, filter repositories.JobFilter) ([]*models.Job, error) {
	var out []*models.Job
	for _, j := range r.jobs {
		if filter.JobType != nil && j.JobType != *filter.JobType {
			continue
		}
		if filter.GameID != nil && j.Payload.GameID != *filter.GameID {
			continue
		}
		if filter.Status != nil && j.Status != *filter.Status {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (r *fakeJobRepo) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]*models.Job, error) {
	return nil, nil
}

func (r *fakeJobRepo) MarkDone(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error { return nil }

func (r *fakeJobRepo) Release(ctx context.Context, id uuid.UUID) error { return nil }

type fakeStatRepo struct {
	stats map[int][]models.PlayerMatchStat
}

func (r *fakeStatRepo) ReplaceMinutes(ctx context.Context, exec repositories.SQLExecutor, gameID int, stats []models.PlayerMatchStat) error {
	if r.stats == nil {
		r.stats = make(map[int][]models.PlayerMatchStat)
	}
	r.stats[gameID] = append([]models.PlayerMatchStat(nil), stats...)
	return nil
}

func (r *fakeStatRepo) ListByGame(ctx context.Context, gameID int) ([]models.PlayerMatchStat, error) {
	return r.stats[gameID], nil
}

type recordingHub struct {
	rooms    []string
	messages []interface{}
}

func (h *recordingHub) BroadcastToRoom(roomID string, message interface{}) {
	h.rooms = append(h.rooms, roomID)
	h.messages = append(h.messages, message)
}

type recordingMetrics struct {
	transitions []string
	draftWrites []models.DraftKind
	enqueued    []string
}

func (m *recordingMetrics) RecordTransition(from, to models.GameStatus) {
	m.transitions = append(m.transitions, string(from)+"->"+string(to))
}

func (m *recordingMetrics) RecordDraftWrite(slot models.DraftKind) {
	m.draftWrites = append(m.draftWrites, slot)
}

func (m *recordingMetrics) RecordJobEnqueued(jobType string) {
	m.enqueued = append(m.enqueued, jobType)
}

func (m *recordingMetrics) RecordJobProcessed(string, models.JobStatus, time.Duration) {}

type fakeNotifier struct {
	notified []*models.Job
	err      error
}

func (n *fakeNotifier) NotifyJobEnqueued(ctx context.Context, job *models.Job) error {
	n.notified = append(n.notified, job)
	return n.err
}

type fakeArchiver struct {
	archived []*models.Game
	err      error
}

func (a *fakeArchiver) ArchiveReport(ctx context.Context, game *models.Game) error {
	a.archived = append(a.archived, game.Clone())
	return a.err
}
