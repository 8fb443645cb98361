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
	ErrAthleteNotFound     = errors.New("athlete not found")
	ErrAthleteTurmaInvalid = errors.New("athlete references an unknown turma")
)

type AthleteRepository interface {
	Create(ctx context.Context, athlete *models.Athlete) error
	List(ctx context.Context, turmaID *uuid.UUID) ([]*models.Athlete, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context, exec SQLExecutor) error
}

type postgresAthleteRepository struct {
	db *sql.DB
}

func NewPostgresAthleteRepository(db *sql.DB) AthleteRepository {
	return &postgresAthleteRepository{db: db}
}

func (r *postgresAthleteRepository) Create(ctx context.Context, a *models.Athlete) error {
	query := `
		INSERT INTO atletas (nome_completo, genero, turma_id, modalidades_inscritas, prioridade_esporte)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		a.FullName, a.Gender, a.TurmaID, pq.Array(a.Sports), a.SportPriority,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if code, _ := pgErrorCode(err); code == "23503" {
			return ErrAthleteTurmaInvalid
		}
		return fmt.Errorf("failed to create athlete: %w", err)
	}
	return nil
}

func (r *postgresAthleteRepository) List(ctx context.Context, turmaID *uuid.UUID) ([]*models.Athlete, error) {
	query := `
		SELECT id, nome_completo, genero, turma_id, modalidades_inscritas, prioridade_esporte, created_at
		FROM atletas`
	args := []interface{}{}
	if turmaID != nil {
		query += ` WHERE turma_id = $1`
		args = append(args, *turmaID)
	}
	query += ` ORDER BY nome_completo ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list athletes: %w", err)
	}
	defer rows.Close()

	athletes := make([]*models.Athlete, 0)
	for rows.Next() {
		var a models.Athlete
		if err := rows.Scan(&a.ID, &a.FullName, &a.Gender, &a.TurmaID, pq.Array(&a.Sports), &a.SportPriority, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan athlete: %w", err)
		}
		athletes = append(athletes, &a)
	}
	return athletes, rows.Err()
}

func (r *postgresAthleteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM atletas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete athlete %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrAthleteNotFound)
}

func (r *postgresAthleteRepository) DeleteAll(ctx context.Context, exec SQLExecutor) error {
	if exec == nil {
		exec = r.db
	}
	_, err := exec.ExecContext(ctx, `DELETE FROM atletas`)
	return err
}
