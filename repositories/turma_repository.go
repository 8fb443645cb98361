package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/google/uuid"
)

var ErrTurmaNotFound = errors.New("turma not found")

type TurmaRepository interface {
	Create(ctx context.Context, exec SQLExecutor, turma *models.Turma) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Turma, error)
	List(ctx context.Context) ([]*models.Turma, error)
	Count(ctx context.Context) (int, error)
}

type postgresTurmaRepository struct {
	db *sql.DB
}

func NewPostgresTurmaRepository(db *sql.DB) TurmaRepository {
	return &postgresTurmaRepository{db: db}
}

func (r *postgresTurmaRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTurmaRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Turma) error {
	query := `
		INSERT INTO turmas (nome_turma, graduacao, internato, calouro, sexto_ano)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (nome_turma) DO UPDATE
			SET graduacao = EXCLUDED.graduacao,
			    internato = EXCLUDED.internato,
			    calouro = EXCLUDED.calouro,
			    sexto_ano = EXCLUDED.sexto_ano
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		t.Name, t.Graduation, t.Boarding, t.Freshman, t.SixthYear,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert turma %q: %w", t.Name, err)
	}
	return nil
}

func (r *postgresTurmaRepository) scanTurma(row rowScanner) (*models.Turma, error) {
	var t models.Turma
	err := row.Scan(&t.ID, &t.Name, &t.Graduation, &t.Boarding, &t.Freshman, &t.SixthYear, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTurmaNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTurmaRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Turma, error) {
	query := `
		SELECT id, nome_turma, graduacao, internato, calouro, sexto_ano, created_at
		FROM turmas
		WHERE id = $1`
	return r.scanTurma(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresTurmaRepository) List(ctx context.Context) ([]*models.Turma, error) {
	query := `
		SELECT id, nome_turma, graduacao, internato, calouro, sexto_ano, created_at
		FROM turmas
		ORDER BY graduacao ASC, nome_turma ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list turmas: %w", err)
	}
	defer rows.Close()

	turmas := make([]*models.Turma, 0)
	for rows.Next() {
		t, err := r.scanTurma(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan turma: %w", err)
		}
		turmas = append(turmas, t)
	}
	return turmas, rows.Err()
}

func (r *postgresTurmaRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turmas`).Scan(&n)
	return n, err
}
