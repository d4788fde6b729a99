// Package telegram exposes the quiz ports through a Telegram bot: the bot acts
// as the host application and each chat command is an inbound signal.
package telegram

import (
	"context"
	"encoding/json"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/quiz-bridge/internal/domain/entities"
	"github.com/aliskhannn/quiz-bridge/internal/metrics"
	"github.com/aliskhannn/quiz-bridge/internal/ports"
)

type chatIDKey struct{}

func withChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, chatIDKey{}, chatID)
}

func chatIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(chatIDKey{}).(int64)
	return id, ok
}

type Handler struct {
	bot    BotAPI
	logger *zap.Logger
	router *ports.Router
}

// NewHandler creates a handler and registers the interop hooks on its router.
func NewHandler(bot BotAPI, logger *zap.Logger, interop Interop, env entities.Env) *Handler {
	h := &Handler{
		bot:    bot,
		logger: logger,
	}
	h.router = ports.NewRouter(ports.SenderFunc(h.deliver))
	interop.OnReady(h.router, env)
	return h
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	metrics.ActiveSessions.WithLabelValues("telegram").Inc()
	defer metrics.ActiveSessions.WithLabelValues("telegram").Dec()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil {
		h.logger.Debug("update without message")
		return
	}

	chatID := update.Message.Chat.ID
	h.logger.Debug("update received",
		zap.Int64("chat_id", chatID),
		zap.String("text", update.Message.Text),
	)

	if !update.Message.IsCommand() {
		h.send(newHTMLMessage(chatID, msgUsage))
		return
	}

	switch update.Message.Command() {
	case "start", "help":
		h.send(newHTMLMessage(chatID, msgWelcome))

	case "quiz":
		_ = h.withErrorHandling(h.quizHandler(update.Message.CommandArguments()))(ctx, chatID)

	default:
		h.send(newHTMLMessage(chatID, msgUnknownCommand))
	}
}

// quizHandler turns "/quiz <id>" into a load request on the inbound port.
func (h *Handler) quizHandler(args string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		id := strings.TrimSpace(args)
		if id == "" {
			h.send(newHTMLMessage(chatID, msgUsage))
			return nil
		}

		payload, err := json.Marshal(id)
		if err != nil {
			return err
		}

		return h.router.Dispatch(withChatID(ctx, chatID), ports.GetQuizFromLocalStorage, payload)
	}
}

// deliver renders an outbound signal into the chat the request came from.
func (h *Handler) deliver(ctx context.Context, port string, payload any) error {
	chatID, ok := chatIDFrom(ctx)
	if !ok {
		return errNoChat
	}

	text, err := renderSignal(port, payload)
	if err != nil {
		return err
	}

	_, err = h.bot.Send(newHTMLMessage(chatID, text))
	return err
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}
