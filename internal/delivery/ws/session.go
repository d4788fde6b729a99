package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aliskhannn/quiz-bridge/internal/domain/entities"
	"github.com/aliskhannn/quiz-bridge/internal/metrics"
	"github.com/aliskhannn/quiz-bridge/internal/ports"
)

const (
	writeTimeout   = 10 * time.Second
	maxMessageSize = 64 << 10
)

var ErrSessionClosed = errors.New("session closed")

// session is one connected host application.
type session struct {
	id     string
	conn   *websocket.Conn
	logger *zap.Logger

	writeMu sync.Mutex
	closed  bool
}

func newSession(conn *websocket.Conn, logger *zap.Logger) *session {
	id := uuid.NewString()
	return &session{
		id:     id,
		conn:   conn,
		logger: logger.With(zap.String("session_id", id)),
	}
}

// Send writes one outbound signal as an envelope.
func (s *session) Send(_ context.Context, port string, payload any) error {
	env, err := ports.NewEnvelope(port, payload)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(env)
}

// run registers the interop hooks and dispatches inbound signals until the
// connection fails or ctx is cancelled.
func (s *session) run(ctx context.Context, interop Interop, env entities.Env) {
	metrics.ActiveSessions.WithLabelValues("websocket").Inc()
	defer metrics.ActiveSessions.WithLabelValues("websocket").Dec()

	s.logger.Info("host session started")
	defer s.logger.Info("host session ended")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		s.close()
	}()

	router := ports.NewRouter(s)
	interop.OnReady(router, env)

	s.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		msg, err := ports.DecodeEnvelope(data)
		if err != nil {
			s.logger.Warn("invalid envelope", zap.Error(err))
			continue
		}

		if err := router.Dispatch(ctx, msg.Port, msg.Payload); err != nil {
			s.logger.Warn("signal dropped",
				zap.String("port", msg.Port),
				zap.Error(err),
			)
		}
	}
}

func (s *session) close() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	deadline := time.Now().Add(time.Second)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	_ = s.conn.Close()
}
