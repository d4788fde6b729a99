// Package interop answers the host application's quiz requests.
package interop

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/quiz-bridge/internal/domain/entities"
	"github.com/aliskhannn/quiz-bridge/internal/metrics"
	"github.com/aliskhannn/quiz-bridge/internal/ports"
	"github.com/aliskhannn/quiz-bridge/internal/repository"
)

// QuizRepository retrieves a quiz by its identifier.
type QuizRepository interface {
	Get(ctx context.Context, id string) (*entities.Quiz, error)
}

// NotFound is the payload sent on the quizNotFound port.
type NotFound struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Shim wires the host's quiz ports to a quiz repository.
// It keeps no state between requests.
type Shim struct {
	repo   QuizRepository
	logger *zap.Logger
}

// NewShim creates a Shim backed by repo.
func NewShim(repo QuizRepository, logger *zap.Logger) *Shim {
	return &Shim{
		repo:   repo,
		logger: logger,
	}
}

// Flags returns the startup configuration for the host. It is always empty.
func (s *Shim) Flags(_ context.Context, _ entities.Env) entities.Flags {
	return entities.Flags{}
}

// OnReady subscribes to the host's quiz requests for the lifetime of the session.
func (s *Shim) OnReady(host ports.Host, env entities.Env) {
	s.logger.Debug("host ready", zap.String("env", env.Name))

	host.Subscribe(ports.GetQuizFromLocalStorage, func(ctx context.Context, payload json.RawMessage) {
		req, err := entities.ParseLoadRequest(payload)
		if err != nil {
			metrics.RecordQuizRequest(metrics.OutcomeError)
			s.logger.Warn("invalid quiz request",
				zap.ByteString("payload", payload),
				zap.Error(err),
			)
			return
		}

		if err := s.LoadQuiz(ctx, host, req.ID); err != nil {
			s.logger.Error("failed to answer quiz request",
				zap.String("quiz_id", req.ID),
				zap.Error(err),
			)
		}
	})
}

// LoadQuiz retrieves the quiz for id and sends it on the sendQuiz port.
// When the quiz cannot be served, one quizNotFound signal is sent instead.
func (s *Shim) LoadQuiz(ctx context.Context, host ports.Host, id string) error {
	quiz, err := s.repo.Get(ctx, id)
	if err != nil {
		return s.notFound(ctx, host, id, err)
	}
	if _, err := quiz.Body(); err != nil {
		return s.notFound(ctx, host, id, err)
	}

	if err := host.Send(ctx, ports.SendQuiz, quiz); err != nil {
		metrics.RecordQuizRequest(metrics.OutcomeError)
		return err
	}

	metrics.RecordQuizRequest(metrics.OutcomeSent)
	s.logger.Debug("quiz sent",
		zap.String("quiz_id", id),
		zap.String("kind", string(quiz.Kind)),
	)

	return nil
}

func (s *Shim) notFound(ctx context.Context, host ports.Host, id string, cause error) error {
	reason, outcome := "unavailable", metrics.OutcomeError
	switch {
	case errors.Is(cause, repository.ErrQuizNotFound):
		reason, outcome = "not_found", metrics.OutcomeNotFound
	case errors.Is(cause, entities.ErrMalformedQuiz):
		reason, outcome = "malformed", metrics.OutcomeNotFound
	}

	metrics.RecordQuizRequest(outcome)
	s.logger.Warn("quiz not served",
		zap.String("quiz_id", id),
		zap.String("reason", reason),
		zap.Error(cause),
	)

	return host.Send(ctx, ports.QuizNotFound, NotFound{ID: id, Reason: reason})
}
