package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/interclasses-scoreboard/models"
)

var ErrPenaltyTurmaInvalid = errors.New("penalty references an unknown turma")

// PenaltyRepository is append-only: log entries are never updated.
type PenaltyRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entry *models.PenaltyLog) error
	ListRecent(ctx context.Context, limit int) ([]*models.PenaltyLog, error)
	DeleteAll(ctx context.Context, exec SQLExecutor) error
}

type postgresPenaltyRepository struct {
	db *sql.DB
}

func NewPostgresPenaltyRepository(db *sql.DB) PenaltyRepository {
	return &postgresPenaltyRepository{db: db}
}

func (r *postgresPenaltyRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPenaltyRepository) Create(ctx context.Context, exec SQLExecutor, e *models.PenaltyLog) error {
	query := `
		INSERT INTO penalidades_log
			(turma_id, tipo_penalidade, valor_pontos, valor_multa, artigo_regulamento, motivo, aplicado_por)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, data_aplicacao`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		e.TurmaID, e.Type, e.Points, e.Fine, e.Article, e.Reason, e.AppliedBy,
	).Scan(&e.ID, &e.AppliedAt)
	if err != nil {
		if code, _ := pgErrorCode(err); code == "23503" {
			return ErrPenaltyTurmaInvalid
		}
		return fmt.Errorf("failed to insert penalty log: %w", err)
	}
	return nil
}

func (r *postgresPenaltyRepository) ListRecent(ctx context.Context, limit int) ([]*models.PenaltyLog, error) {
	query := `
		SELECT id, turma_id, tipo_penalidade, valor_pontos, valor_multa, artigo_regulamento, motivo, aplicado_por, data_aplicacao
		FROM penalidades_log
		ORDER BY data_aplicacao DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list penalties: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.PenaltyLog, 0)
	for rows.Next() {
		var e models.PenaltyLog
		if err := rows.Scan(&e.ID, &e.TurmaID, &e.Type, &e.Points, &e.Fine, &e.Article, &e.Reason, &e.AppliedBy, &e.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan penalty: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *postgresPenaltyRepository) DeleteAll(ctx context.Context, exec SQLExecutor) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM penalidades_log`)
	return err
}
