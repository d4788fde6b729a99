package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/aliskhannn/quiz-bridge/internal/domain/entities"
	"github.com/aliskhannn/quiz-bridge/internal/interop"
	"github.com/aliskhannn/quiz-bridge/internal/ports"
)

// renderSignal turns an outbound port value into an HTML chat message.
func renderSignal(port string, payload any) (string, error) {
	switch port {
	case ports.SendQuiz:
		q, ok := payload.(*entities.Quiz)
		if !ok {
			return "", fmt.Errorf("%w: %s carries %T", errUnsupportedPort, port, payload)
		}
		return renderQuiz(q)

	case ports.QuizNotFound:
		nf, ok := payload.(interop.NotFound)
		if !ok {
			return "", fmt.Errorf("%w: %s carries %T", errUnsupportedPort, port, payload)
		}
		return fmt.Sprintf(msgQuizNotFound, html.EscapeString(nf.ID)), nil

	default:
		return "", fmt.Errorf("%w: %s", errUnsupportedPort, port)
	}
}

func renderQuiz(q *entities.Quiz) (string, error) {
	var b strings.Builder

	switch q.Kind {
	case entities.KindChoice:
		if q.Choice == nil {
			return "", entities.ErrMalformedQuiz
		}
		b.WriteString("<b>Options</b>\n")
		for i, opt := range q.Choice.Options {
			fmt.Fprintf(&b, "%d. %s\n", i+1, html.EscapeString(opt))
		}

	case entities.KindPairwise:
		if q.Pairwise == nil {
			return "", entities.ErrMalformedQuiz
		}
		writeValues(&b, q.Pairwise.Values)
		writeDecisions(&b, q.Pairwise.Decisions)

	case entities.KindStack:
		if q.Stack == nil {
			return "", entities.ErrMalformedQuiz
		}
		writeValues(&b, q.Stack.Values)
		writeDecisions(&b, q.Stack.Stack.Decisions)
		fmt.Fprintf(&b, "\n<i>Range %d–%d</i>\n", q.Stack.Stack.Low, q.Stack.Stack.High)

	default:
		return "", fmt.Errorf("%w: unknown kind %q", entities.ErrMalformedQuiz, q.Kind)
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func writeValues(b *strings.Builder, values [][]string) {
	b.WriteString("<b>Values</b>\n")
	for _, v := range values {
		b.WriteString(html.EscapeString(strings.Join(v, " ")))
		b.WriteString(" ")
	}
	b.WriteString("\n")
}

func writeDecisions(b *strings.Builder, decisions []entities.Decision) {
	b.WriteString("\n<b>Decisions</b>\n")
	for _, d := range decisions {
		sel := "pending"
		if d.Selection != nil {
			sel = html.EscapeString(*d.Selection)
		}
		fmt.Fprintf(b, "%s vs %s: %s\n", html.EscapeString(d.Left), html.EscapeString(d.Right), sel)
	}
}
