package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/Dosada05/interclasses-scoreboard/repositories"
	"github.com/Dosada05/interclasses-scoreboard/storage"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeTx runs fn directly with a nil executor.
type fakeTx struct {
	calls int
}

func (f *fakeTx) InTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	return fn(nil)
}

// ------------------------
// Scores
// ------------------------

type fakeScoreRepo struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]*models.AggregateScore
	order    []uuid.UUID
	forfeits []forfeitCall

	AdjustErr error
}

type forfeitCall struct {
	TurmaID uuid.UUID
	MatchID uuid.UUID
}

func newFakeScoreRepo() *fakeScoreRepo {
	return &fakeScoreRepo{rows: map[uuid.UUID]*models.AggregateScore{}}
}

func (f *fakeScoreRepo) add(id uuid.UUID) *models.AggregateScore {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[id]; ok {
		return row
	}
	row := &models.AggregateScore{TurmaID: id}
	f.rows[id] = row
	f.order = append(f.order, id)
	return row
}

func (f *fakeScoreRepo) bucket(id uuid.UUID, b models.ScoreBucket) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return 0
	}
	return row.Bucket(b)
}

func (f *fakeScoreRepo) Create(ctx context.Context, exec repositories.SQLExecutor, turmaID uuid.UUID) error {
	f.add(turmaID)
	return nil
}

func (f *fakeScoreRepo) GetByTurma(ctx context.Context, exec repositories.SQLExecutor, turmaID uuid.UUID) (*models.AggregateScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[turmaID]
	if !ok {
		return nil, repositories.ErrScoreNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeScoreRepo) sorted(less func(a, b *models.AggregateScore) bool) []*models.AggregateScore {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.AggregateScore, 0, len(f.order))
	for _, id := range f.order {
		cp := *f.rows[id]
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (f *fakeScoreRepo) ListRanking(ctx context.Context, exec repositories.SQLExecutor) ([]*models.AggregateScore, error) {
	return f.sorted(func(a, b *models.AggregateScore) bool { return a.Total > b.Total }), nil
}

func (f *fakeScoreRepo) ListByFoodKg(ctx context.Context, exec repositories.SQLExecutor) ([]*models.AggregateScore, error) {
	return f.sorted(func(a, b *models.AggregateScore) bool { return a.FoodKg > b.FoodKg }), nil
}

func (f *fakeScoreRepo) AdjustBucket(ctx context.Context, exec repositories.SQLExecutor, turmaID uuid.UUID, bucket models.ScoreBucket, delta float64) error {
	if f.AdjustErr != nil {
		return f.AdjustErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[turmaID]
	if !ok {
		return repositories.ErrScoreNotFound
	}
	v := row.Bucket(bucket) + delta
	if v < 0 {
		v = 0
	}
	row.SetBucket(bucket, v)
	return nil
}

func (f *fakeScoreRepo) SetBucket(ctx context.Context, exec repositories.SQLExecutor, turmaID uuid.UUID, bucket models.ScoreBucket, value float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[turmaID]
	if !ok {
		return repositories.ErrScoreNotFound
	}
	row.SetBucket(bucket, value)
	return nil
}

func (f *fakeScoreRepo) ZeroBucketExcept(ctx context.Context, exec repositories.SQLExecutor, bucket models.ScoreBucket, keep []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := make(map[uuid.UUID]bool, len(keep))
	for _, id := range keep {
		kept[id] = true
	}
	for id, row := range f.rows {
		if !kept[id] {
			row.SetBucket(bucket, 0)
		}
	}
	return nil
}

func (f *fakeScoreRepo) ApplyForfeit(ctx context.Context, exec repositories.SQLExecutor, turmaID, matchID uuid.UUID) error {
	f.mu.Lock()
	f.forfeits = append(f.forfeits, forfeitCall{TurmaID: turmaID, MatchID: matchID})
	f.mu.Unlock()
	return f.AdjustBucket(ctx, exec, turmaID, models.BucketForfeitPenalty, ForfeitPenaltyPts)
}

func (f *fakeScoreRepo) UpdateSolidarity(ctx context.Context, exec repositories.SQLExecutor, turmaID uuid.UUID, upd repositories.SolidarityUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[turmaID]
	if !ok {
		return repositories.ErrScoreNotFound
	}
	if upd.FoodKg != nil {
		row.FoodKg = *upd.FoodKg
	}
	if upd.BloodDonorsPercent != nil {
		row.BloodDonorsPercent = *upd.BloodDonorsPercent
	}
	if upd.BloodPoints != nil {
		row.SetBucket(models.BucketBloodPoints, *upd.BloodPoints)
	}
	if upd.BasketsDelivered != nil {
		row.BasketsDelivered = *upd.BasketsDelivered
	}
	return nil
}

func (f *fakeScoreRepo) ClearSolidarity(ctx context.Context, exec repositories.SQLExecutor, turmaID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[turmaID]
	if !ok {
		return repositories.ErrScoreNotFound
	}
	row.FoodKg = 0
	row.BloodDonorsPercent = 0
	row.SetBucket(models.BucketFoodPoints, 0)
	row.SetBucket(models.BucketBloodPoints, 0)
	return nil
}

func (f *fakeScoreRepo) ResetAll(ctx context.Context, exec repositories.SQLExecutor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.rows {
		f.rows[id] = &models.AggregateScore{TurmaID: id}
	}
	return nil
}

// ------------------------
// Matches
// ------------------------

type fakeMatchRepo struct {
	mu        sync.Mutex
	matches   map[uuid.UUID]*models.Match
	order     []uuid.UUID
	lastLimit int

	CreateErr error
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[uuid.UUID]*models.Match{}}
}

func (f *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	match.ID = uuid.New()
	cp := *match
	f.matches[match.ID] = &cp
	f.order = append(f.order, match.ID)
	return nil
}

func (f *fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMatchRepo) Update(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	cp := *match
	f.matches[match.ID] = &cp
	return nil
}

func (f *fakeMatchRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(f.matches, id)
	return nil
}

func (f *fakeMatchRepo) List(ctx context.Context, limit int) ([]*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	out := make([]*models.Match, 0, len(f.matches))
	for i := len(f.order) - 1; i >= 0 && len(out) < limit; i-- {
		if m, ok := f.matches[f.order[i]]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMatchRepo) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.matches), nil
}

func (f *fakeMatchRepo) DeleteAll(ctx context.Context, exec repositories.SQLExecutor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches = map[uuid.UUID]*models.Match{}
	f.order = nil
	return nil
}

// ------------------------
// Penalties, athletes, turmas
// ------------------------

type fakePenaltyRepo struct {
	entries   []*models.PenaltyLog
	lastLimit int
}

func (f *fakePenaltyRepo) Create(ctx context.Context, exec repositories.SQLExecutor, entry *models.PenaltyLog) error {
	entry.ID = uuid.New()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakePenaltyRepo) ListRecent(ctx context.Context, limit int) ([]*models.PenaltyLog, error) {
	f.lastLimit = limit
	return f.entries, nil
}

func (f *fakePenaltyRepo) DeleteAll(ctx context.Context, exec repositories.SQLExecutor) error {
	f.entries = nil
	return nil
}

type fakeAthleteRepo struct {
	athletes map[uuid.UUID]*models.Athlete
	turmas   map[uuid.UUID]bool
}

func newFakeAthleteRepo(turmas ...uuid.UUID) *fakeAthleteRepo {
	f := &fakeAthleteRepo{athletes: map[uuid.UUID]*models.Athlete{}, turmas: map[uuid.UUID]bool{}}
	for _, id := range turmas {
		f.turmas[id] = true
	}
	return f
}

func (f *fakeAthleteRepo) Create(ctx context.Context, athlete *models.Athlete) error {
	if !f.turmas[athlete.TurmaID] {
		return repositories.ErrAthleteTurmaInvalid
	}
	athlete.ID = uuid.New()
	f.athletes[athlete.ID] = athlete
	return nil
}

func (f *fakeAthleteRepo) List(ctx context.Context, turmaID *uuid.UUID) ([]*models.Athlete, error) {
	out := make([]*models.Athlete, 0, len(f.athletes))
	for _, a := range f.athletes {
		if turmaID == nil || a.TurmaID == *turmaID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAthleteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.athletes[id]; !ok {
		return repositories.ErrAthleteNotFound
	}
	delete(f.athletes, id)
	return nil
}

func (f *fakeAthleteRepo) DeleteAll(ctx context.Context, exec repositories.SQLExecutor) error {
	f.athletes = map[uuid.UUID]*models.Athlete{}
	return nil
}

type fakeTurmaRepo struct {
	mu     sync.Mutex
	turmas map[uuid.UUID]*models.Turma
	order  []uuid.UUID
}

func newFakeTurmaRepo() *fakeTurmaRepo {
	return &fakeTurmaRepo{turmas: map[uuid.UUID]*models.Turma{}}
}

// Create upserts by name like the SQL ON CONFLICT clause.
func (f *fakeTurmaRepo) Create(ctx context.Context, exec repositories.SQLExecutor, turma *models.Turma) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.turmas {
		if existing.Name == turma.Name {
			turma.ID = existing.ID
			*existing = *turma
			return nil
		}
	}
	turma.ID = uuid.New()
	cp := *turma
	f.turmas[turma.ID] = &cp
	f.order = append(f.order, turma.ID)
	return nil
}

func (f *fakeTurmaRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Turma, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.turmas[id]
	if !ok {
		return nil, repositories.ErrTurmaNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTurmaRepo) List(ctx context.Context) ([]*models.Turma, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Turma, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.turmas[id])
	}
	return out, nil
}

func (f *fakeTurmaRepo) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.turmas), nil
}

// ------------------------
// Brackets
// ------------------------

// fakeBracketRepo stores JSON snapshots so a failed transaction leaves the
// stored structure untouched, as a rollback would.
type fakeBracketRepo struct {
	mu       sync.Mutex
	brackets map[uuid.UUID][]byte
}

func newFakeBracketRepo() *fakeBracketRepo {
	return &fakeBracketRepo{brackets: map[uuid.UUID][]byte{}}
}

func (f *fakeBracketRepo) save(b *models.Bracket) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	f.brackets[b.ID] = data
	return nil
}

func (f *fakeBracketRepo) Create(ctx context.Context, bracket *models.Bracket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	bracket.ID = uuid.New()
	return f.save(bracket)
}

func (f *fakeBracketRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Bracket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.brackets[id]
	if !ok {
		return nil, repositories.ErrBracketNotFound
	}
	var b models.Bracket
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (f *fakeBracketRepo) UpdateStructure(ctx context.Context, exec repositories.SQLExecutor, bracket *models.Bracket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.brackets[bracket.ID]; !ok {
		return repositories.ErrBracketNotFound
	}
	return f.save(bracket)
}

func (f *fakeBracketRepo) List(ctx context.Context) ([]*models.Bracket, error) {
	f.mu.Lock()
	ids := make([]uuid.UUID, 0, len(f.brackets))
	for id := range f.brackets {
		ids = append(ids, id)
	}
	f.mu.Unlock()
	out := make([]*models.Bracket, 0, len(ids))
	for _, id := range ids {
		b, err := f.GetByID(ctx, nil, id)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBracketRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.brackets[id]; !ok {
		return repositories.ErrBracketNotFound
	}
	delete(f.brackets, id)
	return nil
}

func (f *fakeBracketRepo) CountByStatus(ctx context.Context, status models.BracketStatus) (int, error) {
	list, err := f.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, b := range list {
		if b.Status == status {
			n++
		}
	}
	return n, nil
}

// ------------------------
// Storage
// ------------------------

type fakeUploader struct {
	key         string
	contentType string
	data        []byte
	err         error
}

func (f *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	f.key, f.contentType, f.data = key, contentType, data
	return &storage.UploadResult{Key: key}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error { return nil }

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://files.example.org/" + key
}

// ------------------------
// Fixtures
// ------------------------

// league wires the fakes together with n registered turmas.
type league struct {
	tx       *fakeTx
	scores   *fakeScoreRepo
	matches  *fakeMatchRepo
	turmas   *fakeTurmaRepo
	penalty  *fakePenaltyRepo
	brackets *fakeBracketRepo
	ids      []uuid.UUID
}

func newLeague(n int) *league {
	faker := gofakeit.New(42)
	l := &league{
		tx:       &fakeTx{},
		scores:   newFakeScoreRepo(),
		matches:  newFakeMatchRepo(),
		turmas:   newFakeTurmaRepo(),
		penalty:  &fakePenaltyRepo{},
		brackets: newFakeBracketRepo(),
	}
	for i := 0; i < n; i++ {
		t := &models.Turma{Name: faker.Company(), Graduation: i + 1}
		for {
			if _, taken := l.turmaByName(t.Name); !taken {
				break
			}
			t.Name = faker.Company()
		}
		_ = l.turmas.Create(context.Background(), nil, t)
		l.scores.add(t.ID)
		l.ids = append(l.ids, t.ID)
	}
	return l
}

func (l *league) turmaByName(name string) (uuid.UUID, bool) {
	for id, t := range l.turmas.turmas {
		if t.Name == name {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (l *league) ledger() LedgerService {
	return NewLedgerService(l.scores, nil, discardLogger)
}

func (l *league) sport(i int) float64 {
	return l.scores.bucket(l.ids[i], models.BucketSportPoints)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }
