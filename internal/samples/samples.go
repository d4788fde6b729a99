// Package samples builds the fixed quiz payloads served when no real store is configured.
package samples

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aliskhannn/quiz-bridge/internal/domain/entities"
)

var ErrUnknownVariant = errors.New("unknown sample variant")

const (
	VariantOptions         = 1
	VariantShuffledOptions = 2
	VariantPairwise        = 3
	VariantStacked         = 4
)

// pairwiseValues is the fixed value order of the pairwise samples.
const pairwiseValues = "🪦 🥺 😀 😂 😍 😎 🤔 😴 😡 🥳 😱 🤯 😇 🤖 👻"

// Options returns the flat option list sample.
func Options() *entities.Quiz {
	return entities.NewChoiceQuiz(entities.ChoiceQuiz{
		Options:     strings.Split("1️⃣ 2️⃣ 3️⃣ 4️⃣ 5️⃣", " "),
		Preferences: map[string]int{},
	})
}

// ShuffledOptions returns the option list sample in its reordered form.
func ShuffledOptions() *entities.Quiz {
	return entities.NewChoiceQuiz(entities.ChoiceQuiz{
		Options:     strings.Split("3️⃣ 2️⃣ 4️⃣ 5️⃣ 1️⃣", " "),
		Preferences: map[string]int{},
	})
}

// Pairwise returns the paired-values sample with a single pending decision.
func Pairwise() *entities.Quiz {
	return entities.NewPairwiseQuiz(entities.PairwiseQuiz{
		Values:    values(),
		Decisions: pendingDecisions(),
	})
}

// Stacked returns the pairwise sample with a decision stack bounded by [0, 1] and an empty lookup.
func Stacked() *entities.Quiz {
	return entities.NewStackQuiz(entities.StackQuiz{
		Values:    values(),
		Decisions: pendingDecisions(),
		Stack: entities.Stack{
			Decisions: pendingDecisions(),
			Low:       0,
			High:      1,
		},
		Lookup: map[string]int{},
	})
}

// ByVariant returns the sample with the given variant number.
func ByVariant(variant int) (*entities.Quiz, error) {
	switch variant {
	case VariantOptions:
		return Options(), nil
	case VariantShuffledOptions:
		return ShuffledOptions(), nil
	case VariantPairwise:
		return Pairwise(), nil
	case VariantStacked:
		return Stacked(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, variant)
	}
}

func values() [][]string {
	fields := strings.Fields(pairwiseValues)
	out := make([][]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, []string{f})
	}
	return out
}

func pendingDecisions() []entities.Decision {
	return []entities.Decision{
		{Left: "🪦", Right: "🥺", Selection: nil},
	}
}
