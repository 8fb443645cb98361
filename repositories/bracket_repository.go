package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/interclasses-scoreboard/models"
	"github.com/google/uuid"
)

var ErrBracketNotFound = errors.New("bracket not found")

type BracketRepository interface {
	Create(ctx context.Context, bracket *models.Bracket) error
	// GetByID with a non-nil exec locks the bracket row (SELECT ... FOR UPDATE).
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Bracket, error)
	UpdateStructure(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	List(ctx context.Context) ([]*models.Bracket, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, status models.BracketStatus) (int, error)
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const bracketColumns = `id, modalidade, genero_modalidade, formato, numero_times, status, estrutura_chave, created_at, updated_at`

func (r *postgresBracketRepository) scanBracket(row rowScanner) (*models.Bracket, error) {
	var b models.Bracket
	var raw []byte
	err := row.Scan(&b.ID, &b.Sport, &b.Gender, &b.Format, &b.TeamCount, &b.Status, &raw, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &b.Structure); err != nil {
			return nil, fmt.Errorf("bracket %s has a malformed structure: %w", b.ID, err)
		}
	}
	return &b, nil
}

func (r *postgresBracketRepository) Create(ctx context.Context, b *models.Bracket) error {
	raw, err := json.Marshal(b.Structure)
	if err != nil {
		return fmt.Errorf("failed to encode bracket structure: %w", err)
	}
	query := `
		INSERT INTO chaves_torneio (modalidade, genero_modalidade, formato, numero_times, status, estrutura_chave)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		b.Sport, b.Gender, b.Format, b.TeamCount, b.Status, raw,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bracket: %w", err)
	}
	return nil
}

func (r *postgresBracketRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Bracket, error) {
	query := `SELECT ` + bracketColumns + ` FROM chaves_torneio WHERE id = $1`
	if exec != nil {
		query += ` FOR UPDATE`
	}
	return r.scanBracket(r.getExecutor(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresBracketRepository) UpdateStructure(ctx context.Context, exec SQLExecutor, b *models.Bracket) error {
	raw, err := json.Marshal(b.Structure)
	if err != nil {
		return fmt.Errorf("failed to encode bracket structure: %w", err)
	}
	query := `
		UPDATE chaves_torneio
		SET estrutura_chave = $1, status = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`

	err = r.getExecutor(exec).QueryRowContext(ctx, query, raw, b.Status, b.ID).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBracketNotFound
		}
		return fmt.Errorf("failed to update bracket %s: %w", b.ID, err)
	}
	return nil
}

func (r *postgresBracketRepository) List(ctx context.Context) ([]*models.Bracket, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+bracketColumns+` FROM chaves_torneio ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list brackets: %w", err)
	}
	defer rows.Close()

	brackets := make([]*models.Bracket, 0)
	for rows.Next() {
		b, err := r.scanBracket(rows)
		if err != nil {
			return nil, err
		}
		brackets = append(brackets, b)
	}
	return brackets, rows.Err()
}

func (r *postgresBracketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM chaves_torneio WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bracket %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) CountByStatus(ctx context.Context, status models.BracketStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chaves_torneio WHERE status = $1`, status).Scan(&n)
	return n, err
}
