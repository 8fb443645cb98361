package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/google/uuid"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchTurmaInvalid = errors.New("match references an unknown turma")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	// GetByID with a non-nil exec locks the row until the transaction ends.
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
	List(ctx context.Context, limit int) ([]*models.Match, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context, exec SQLExecutor) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, modalidade, genero_modalidade, fase, data_hora, turma_a_id, turma_b_id,
	placar_a, placar_b, vencedor_id, wo_aplicado, turma_wo_id, detalhes_sumula, status, created_at`

func (r *postgresMatchRepository) scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID, &m.Sport, &m.Gender, &m.Phase, &m.ScheduledAt, &m.TurmaAID, &m.TurmaBID,
		&m.ScoreA, &m.ScoreB, &m.WinnerID, &m.Forfeit, &m.ForfeitedID, &m.Notes, &m.Status, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		INSERT INTO partidas
			(modalidade, genero_modalidade, fase, data_hora, turma_a_id, turma_b_id,
			 placar_a, placar_b, vencedor_id, wo_aplicado, turma_wo_id, detalhes_sumula, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		m.Sport, m.Gender, m.Phase, m.ScheduledAt, m.TurmaAID, m.TurmaBID,
		m.ScoreA, m.ScoreB, m.WinnerID, m.Forfeit, m.ForfeitedID, m.Notes, m.Status,
	).Scan(&m.ID, &m.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM partidas WHERE id = $1`
	if exec != nil {
		query += ` FOR UPDATE`
	}
	m, err := r.scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, ErrMatchNotFound) {
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return m, err
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE partidas SET
			placar_a = $1, placar_b = $2, vencedor_id = $3, wo_aplicado = $4, turma_wo_id = $5,
			detalhes_sumula = $6, status = $7, data_hora = $8
		WHERE id = $9`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		m.ScoreA, m.ScoreB, m.WinnerID, m.Forfeit, m.ForfeitedID, m.Notes, m.Status, m.ScheduledAt, m.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM partidas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// List returns matches newest first; limit <= 0 means no limit.
func (r *postgresMatchRepository) List(ctx context.Context, limit int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM partidas ORDER BY data_hora DESC NULLS LAST, created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := r.scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM partidas`).Scan(&n)
	return n, err
}

func (r *postgresMatchRepository) DeleteAll(ctx context.Context, exec SQLExecutor) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM partidas`)
	return err
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if code, _ := pgErrorCode(err); code == "23503" {
		return ErrMatchTurmaInvalid
	}
	return err
}
