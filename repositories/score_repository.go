package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrScoreNotFound = errors.New("aggregate score row not found")
	ErrUnknownBucket = errors.New("unknown score bucket")
)

// SolidarityUpdate carries the raw solidarity measures; nil fields are kept.
type SolidarityUpdate struct {
	FoodKg             *float64
	BloodDonorsPercent *float64
	BloodPoints        *float64
	BasketsDelivered   *int
}

type ScoreRepository interface {
	Create(ctx context.Context, exec SQLExecutor, turmaID uuid.UUID) error
	GetByTurma(ctx context.Context, exec SQLExecutor, turmaID uuid.UUID) (*models.AggregateScore, error)
	ListRanking(ctx context.Context, exec SQLExecutor) ([]*models.AggregateScore, error)
	ListByFoodKg(ctx context.Context, exec SQLExecutor) ([]*models.AggregateScore, error)
	// AdjustBucket adds delta to a bucket in one statement, clamping at zero.
	AdjustBucket(ctx context.Context, exec SQLExecutor, turmaID uuid.UUID, bucket models.ScoreBucket, delta float64) error
	SetBucket(ctx context.Context, exec SQLExecutor, turmaID uuid.UUID, bucket models.ScoreBucket, value float64) error
	// ZeroBucketExcept sets bucket to 0 for every turma not listed in keep.
	ZeroBucketExcept(ctx context.Context, exec SQLExecutor, bucket models.ScoreBucket, keep []uuid.UUID) error
	// ApplyForfeit invokes the aplicar_wo procedure.
	ApplyForfeit(ctx context.Context, exec SQLExecutor, turmaID, matchID uuid.UUID) error
	UpdateSolidarity(ctx context.Context, exec SQLExecutor, turmaID uuid.UUID, upd SolidarityUpdate) error
	// ClearSolidarity zeroes one turma's food and blood measures and points.
	ClearSolidarity(ctx context.Context, exec SQLExecutor, turmaID uuid.UUID) error
	ResetAll(ctx context.Context, exec SQLExecutor) error
}

type postgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(db *sql.DB) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const scoreColumns = `
	p.turma_id, p.pontos_esportivos, p.pontos_alimentos, p.pontos_sangue,
	p.pen_wo_esportivo, p.pen_disciplinar, p.pen_nao_plantao, p.pen_nao_calouro,
	p.kg_alimentos, p.cestas_basicas_entregues, p.percentual_doadores_sangue, p.multa_cestas_faltantes,
	p.total_pontos, p.updated_at,
	t.id, t.nome_turma, t.graduacao, t.internato, t.calouro, t.sexto_ano, t.created_at`

func (r *postgresScoreRepository) scanScore(row rowScanner) (*models.AggregateScore, error) {
	var s models.AggregateScore
	var t models.Turma
	err := row.Scan(
		&s.TurmaID, &s.SportPoints, &s.FoodPoints, &s.BloodPoints,
		&s.ForfeitPenalty, &s.DisciplinaryPenalty, &s.GuardDutyPenalty, &s.FreshmanFine,
		&s.FoodKg, &s.BasketsDelivered, &s.BloodDonorsPercent, &s.MissingBasketsFine,
		&s.Total, &s.UpdatedAt,
		&t.ID, &t.Name, &t.Graduation, &t.Boarding, &t.Freshman, &t.SixthYear, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScoreNotFound
		}
		return nil, err
	}
	s.Turma = &t
	return &s, nil
}

func (r *postgresScoreRepository) Create(ctx context.Context, exec SQLExecutor, turmaID uuid.UUID) error {
	query := `INSERT INTO pontuacao_geral (turma_id) VALUES ($1) ON CONFLICT (turma_id) DO NOTHING`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, turmaID); err != nil {
		return fmt.Errorf("failed to create score row for turma %s: %w", turmaID, err)
	}
	return nil
}

func (r *postgresScoreRepository) GetByTurma(ctx context.Context, exec SQLExecutor, turmaID uuid.UUID) (*models.AggregateScore, error) {
	query := `SELECT ` + scoreColumns + `
		FROM pontuacao_geral p
		JOIN turmas t ON t.id = p.turma_id
		WHERE p.turma_id = $1`
	return r.scanScore(r.getExecutor(exec).QueryRowContext(ctx, query, turmaID))
}

func (r *postgresScoreRepository) list(ctx context.Context, exec SQLExecutor, orderBy string) ([]*models.AggregateScore, error) {
	query := `SELECT ` + scoreColumns + `
		FROM pontuacao_geral p
		JOIN turmas t ON t.id = p.turma_id
		ORDER BY ` + orderBy

	rows, err := r.getExecutor(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	scores := make([]*models.AggregateScore, 0)
	for rows.Next() {
		s, err := r.scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *postgresScoreRepository) ListRanking(ctx context.Context, exec SQLExecutor) ([]*models.AggregateScore, error) {
	return r.list(ctx, exec, "p.total_pontos DESC, p.kg_alimentos DESC")
}

// ListByFoodKg orders by kilograms; equal amounts fall back to the roster
// order so repeated runs see the same sequence.
func (r *postgresScoreRepository) ListByFoodKg(ctx context.Context, exec SQLExecutor) ([]*models.AggregateScore, error) {
	return r.list(ctx, exec, "p.kg_alimentos DESC, t.graduacao ASC, p.turma_id ASC")
}

func (r *postgresScoreRepository) AdjustBucket(ctx context.Context, exec SQLExecutor, turmaID uuid.UUID, bucket models.ScoreBucket, delta float64) error {
	if !bucket.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}
	// bucket is whitelisted above, so formatting it into the statement is safe
	query := fmt.Sprintf(`
		UPDATE pontuacao_geral
		SET %[1]s = GREATEST(%[1]s + $1, 0), updated_at = NOW()
		WHERE turma_id = $2`, bucket)

	result, err := r.getExecutor(exec).ExecContext(ctx, query, delta, turmaID)
	if err != nil {
		return fmt.Errorf("failed to adjust %s for turma %s: %w", bucket, turmaID, err)
	}
	return checkAffectedRows(result, ErrScoreNotFound)
}

func (r *postgresScoreRepository) SetBucket(ctx context.Context, exec SQLExecutor, turmaID uuid.UUID, bucket models.ScoreBucket, value float64) error {
	if !bucket.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}
	query := fmt.Sprintf(`UPDATE pontuacao_geral SET %s = GREATEST($1, 0), updated_at = NOW() WHERE turma_id = $2`, bucket)

	result, err := r.getExecutor(exec).ExecContext(ctx, query, value, turmaID)
	if err != nil {
		return fmt.Errorf("failed to set %s for turma %s: %w", bucket, turmaID, err)
	}
	return checkAffectedRows(result, ErrScoreNotFound)
}

func (r *postgresScoreRepository) ZeroBucketExcept(ctx context.Context, exec SQLExecutor, bucket models.ScoreBucket, keep []uuid.UUID) error {
	if !bucket.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}
	ids := make([]string, 0, len(keep))
	for _, id := range keep {
		ids = append(ids, id.String())
	}
	query := fmt.Sprintf(`
		UPDATE pontuacao_geral
		SET %s = 0, updated_at = NOW()
		WHERE NOT (turma_id = ANY($1::uuid[]))`, bucket)

	if _, err := r.getExecutor(exec).ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to zero %s: %w", bucket, err)
	}
	return nil
}

func (r *postgresScoreRepository) ApplyForfeit(ctx context.Context, exec SQLExecutor, turmaID, matchID uuid.UUID) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `SELECT aplicar_wo($1, $2)`, turmaID, matchID)
	return forfeitError(err, turmaID, matchID)
}

// forfeitError maps the no_data_found raised by aplicar_wo for a turma
// without a score row.
func forfeitError(err error, turmaID, matchID uuid.UUID) error {
	if err == nil {
		return nil
	}
	if code, _ := pgErrorCode(err); code == "P0002" {
		return ErrScoreNotFound
	}
	return fmt.Errorf("aplicar_wo failed for turma %s, match %s: %w", turmaID, matchID, err)
}

func (r *postgresScoreRepository) UpdateSolidarity(ctx context.Context, exec SQLExecutor, turmaID uuid.UUID, upd SolidarityUpdate) error {
	query := `
		UPDATE pontuacao_geral SET
			kg_alimentos = COALESCE($1, kg_alimentos),
			percentual_doadores_sangue = COALESCE($2, percentual_doadores_sangue),
			pontos_sangue = COALESCE($3, pontos_sangue),
			cestas_basicas_entregues = COALESCE($4, cestas_basicas_entregues),
			updated_at = NOW()
		WHERE turma_id = $5`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		upd.FoodKg, upd.BloodDonorsPercent, upd.BloodPoints, upd.BasketsDelivered, turmaID,
	)
	if err != nil {
		return fmt.Errorf("failed to update solidarity data for turma %s: %w", turmaID, err)
	}
	return checkAffectedRows(result, ErrScoreNotFound)
}

func (r *postgresScoreRepository) ClearSolidarity(ctx context.Context, exec SQLExecutor, turmaID uuid.UUID) error {
	query := `
		UPDATE pontuacao_geral SET
			kg_alimentos = 0, percentual_doadores_sangue = 0,
			pontos_alimentos = 0, pontos_sangue = 0,
			updated_at = NOW()
		WHERE turma_id = $1`

	result, err := r.getExecutor(exec).ExecContext(ctx, query, turmaID)
	if err != nil {
		return fmt.Errorf("failed to clear solidarity data for turma %s: %w", turmaID, err)
	}
	return checkAffectedRows(result, ErrScoreNotFound)
}

func (r *postgresScoreRepository) ResetAll(ctx context.Context, exec SQLExecutor) error {
	query := `
		UPDATE pontuacao_geral SET
			pontos_esportivos = 0, pontos_alimentos = 0, pontos_sangue = 0,
			pen_wo_esportivo = 0, pen_disciplinar = 0, pen_nao_plantao = 0, pen_nao_calouro = 0,
			kg_alimentos = 0, cestas_basicas_entregues = 0, percentual_doadores_sangue = 0,
			multa_cestas_faltantes = 0, updated_at = NOW()`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to reset scores: %w", err)
	}
	return nil
}
