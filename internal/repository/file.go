package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aliskhannn/quiz-bridge/internal/domain/entities"
)

var ErrDuplicateQuiz = errors.New("duplicate quiz id")

// Record is a quiz as it is kept in storage: identifier, kind and raw payload.
type Record struct {
	ID   string          `json:"id"`
	Kind entities.Kind   `json:"kind"`
	Quiz json.RawMessage `json:"quiz"`
}

// Decode turns the record into a quiz.
func (r Record) Decode() (*entities.Quiz, error) {
	return entities.DecodeQuiz(r.Kind, r.Quiz)
}

// NewRecord encodes a quiz for storage.
func NewRecord(id string, quiz *entities.Quiz) (Record, error) {
	data, err := json.Marshal(quiz)
	if err != nil {
		return Record{}, fmt.Errorf("encode quiz %q: %w", id, err)
	}
	return Record{ID: id, Kind: quiz.Kind, Quiz: data}, nil
}

// FileRepository provides quizzes loaded once from a JSON document.
type FileRepository struct {
	quizzes map[string]*entities.Quiz
	records []Record
}

// NewFileRepository reads and validates every quiz in the file at path.
func NewFileRepository(path string) (*FileRepository, error) {
	records, err := ReadRecords(path)
	if err != nil {
		return nil, err
	}

	quizzes := make(map[string]*entities.Quiz, len(records))
	for _, rec := range records {
		if _, ok := quizzes[rec.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateQuiz, rec.ID)
		}

		q, err := rec.Decode()
		if err != nil {
			return nil, fmt.Errorf("quiz %q: %w", rec.ID, err)
		}
		quizzes[rec.ID] = q
	}

	return &FileRepository{
		quizzes: quizzes,
		records: records,
	}, nil
}

// Get returns a copy of the quiz with the given identifier.
func (r *FileRepository) Get(_ context.Context, id string) (*entities.Quiz, error) {
	q, ok := r.quizzes[id]
	if !ok {
		return nil, ErrQuizNotFound
	}
	return q.Clone(), nil
}

// Records returns the raw records the repository was loaded from.
func (r *FileRepository) Records() []Record {
	return append([]Record(nil), r.records...)
}

// ReadRecords parses a quizzes document: {"quizzes": [{"id", "kind", "quiz"}]}.
func ReadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Quizzes []Record `json:"quizzes"`
	}
	if err = json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quizzes JSON: %w", err)
	}

	return wrapper.Quizzes, nil
}
