package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/quiz-bridge/internal/domain/entities"
	"github.com/aliskhannn/quiz-bridge/internal/infra/postgres"
	quizrepo "github.com/aliskhannn/quiz-bridge/internal/repository"
)

// Transactor runs a function inside a database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error
}

// QuizRepository provides access to stored quizzes in the database.
type QuizRepository struct {
	db postgres.DBTX
}

// NewQuizRepository creates a new QuizRepository with the provided database handle.
func NewQuizRepository(db postgres.DBTX) *QuizRepository {
	return &QuizRepository{db: db}
}

// Get retrieves the quiz with the given identifier.
func (r *QuizRepository) Get(ctx context.Context, id string) (*entities.Quiz, error) {
	query := `
		SELECT kind, payload
		FROM quizzes
		WHERE id = $1
	`

	var (
		kind    string
		payload []byte
	)
	err := r.db.QueryRow(ctx, query, id).Scan(&kind, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, quizrepo.ErrQuizNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	return entities.DecodeQuiz(entities.Kind(kind), payload)
}

// Save inserts or replaces the quiz stored under the record's identifier.
func (r *QuizRepository) Save(ctx context.Context, rec quizrepo.Record) error {
	return save(ctx, r.db, rec)
}

// SaveAll stores every record in a single transaction.
func (r *QuizRepository) SaveAll(ctx context.Context, tr Transactor, records []quizrepo.Record) error {
	return tr.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, rec := range records {
			if err := save(ctx, tx, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the quiz with the given identifier.
func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}

	if result.RowsAffected() == 0 {
		return quizrepo.ErrQuizNotFound
	}

	return nil
}

func save(ctx context.Context, db postgres.DBTX, rec quizrepo.Record) error {
	if _, err := rec.Decode(); err != nil {
		return fmt.Errorf("save quiz %q: %w", rec.ID, err)
	}

	query := `
		INSERT INTO quizzes (id, kind, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET kind = EXCLUDED.kind,
		    payload = EXCLUDED.payload,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := db.Exec(ctx, query, rec.ID, string(rec.Kind), []byte(rec.Quiz), time.Now())
	if err != nil {
		return fmt.Errorf("save quiz %q: %w", rec.ID, err)
	}

	return nil
}
