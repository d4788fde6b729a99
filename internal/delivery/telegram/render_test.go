package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/quiz-bridge/internal/domain/entities"
	"github.com/aliskhannn/quiz-bridge/internal/interop"
	"github.com/aliskhannn/quiz-bridge/internal/ports"
	"github.com/aliskhannn/quiz-bridge/internal/samples"
)

func TestRenderQuiz(t *testing.T) {
	text, err := renderQuiz(samples.ShuffledOptions())
	require.NoError(t, err)
	assert.Equal(t, "<b>Options</b>\n1. 3️⃣\n2. 2️⃣\n3. 4️⃣\n4. 5️⃣\n5. 1️⃣", text)

	text, err = renderQuiz(samples.Pairwise())
	require.NoError(t, err)
	assert.Contains(t, text, "<b>Values</b>\n🪦 🥺")
	assert.Contains(t, text, "🪦 vs 🥺: pending")

	text, err = renderQuiz(samples.Stacked())
	require.NoError(t, err)
	assert.Contains(t, text, "🪦 vs 🥺: pending")
	assert.Contains(t, text, "<i>Range 0–1</i>")

	sel := "<b>"
	text, err = renderQuiz(entities.NewPairwiseQuiz(entities.PairwiseQuiz{
		Decisions: []entities.Decision{{Left: "a", Right: "b", Selection: &sel}},
	}))
	require.NoError(t, err)
	assert.Contains(t, text, "a vs b: &lt;b&gt;")
}

func TestRenderQuiz_Malformed(t *testing.T) {
	_, err := renderQuiz(&entities.Quiz{Kind: entities.KindStack})
	assert.ErrorIs(t, err, entities.ErrMalformedQuiz)

	_, err = renderQuiz(&entities.Quiz{Kind: "poll"})
	assert.ErrorIs(t, err, entities.ErrMalformedQuiz)
}

func TestRenderSignal(t *testing.T) {
	text, err := renderSignal(ports.QuizNotFound, interop.NotFound{ID: "abc", Reason: "not_found"})
	require.NoError(t, err)
	assert.Equal(t, "Quiz <code>abc</code> is not available.", text)

	_, err = renderSignal(ports.SendQuiz, "not a quiz")
	assert.ErrorIs(t, err, errUnsupportedPort)

	_, err = renderSignal("other", nil)
	assert.ErrorIs(t, err, errUnsupportedPort)
}
