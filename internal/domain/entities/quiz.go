package entities

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedQuiz is returned when a stored quiz cannot be decoded into one of the known shapes.
var ErrMalformedQuiz = errors.New("malformed quiz payload")

// Kind names the shape of a quiz payload.
type Kind string

const (
	KindChoice   Kind = "choice"   // flat option list with preferences
	KindPairwise Kind = "pairwise" // paired values with pending decisions
	KindStack    Kind = "stack"    // pairwise plus a bounded decision stack and lookup table
)

// Valid reports whether k is one of the known quiz kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindChoice, KindPairwise, KindStack:
		return true
	}
	return false
}

// Decision is a single pairwise comparison. Selection is nil while the decision is pending.
type Decision struct {
	Left      string  `json:"left"`
	Right     string  `json:"right"`
	Selection *string `json:"selection"`
}

// Pending reports whether no side has been selected yet.
func (d Decision) Pending() bool {
	return d.Selection == nil
}

// ChoiceQuiz is an ordered list of options with per-option preferences.
type ChoiceQuiz struct {
	Options     []string       `json:"options"`
	Preferences map[string]int `json:"preferences"`
}

// PairwiseQuiz holds the values being compared and the decisions made so far.
type PairwiseQuiz struct {
	Values    [][]string `json:"values"`
	Decisions []Decision `json:"decisions"`
}

// Stack is the range-bounded set of decisions currently being worked on.
type Stack struct {
	Decisions []Decision `json:"decisions"`
	Low       int        `json:"low"`
	High      int        `json:"high"`
}

// StackQuiz extends a pairwise quiz with a decision stack and a lookup table.
type StackQuiz struct {
	Values    [][]string     `json:"values"`
	Decisions []Decision     `json:"decisions"`
	Stack     Stack          `json:"stack"`
	Lookup    map[string]int `json:"lookup"`
}

// Quiz is a tagged union over the supported payload shapes.
// Exactly one of Choice, Pairwise or Stack is set, matching Kind.
type Quiz struct {
	Kind     Kind
	Choice   *ChoiceQuiz
	Pairwise *PairwiseQuiz
	Stack    *StackQuiz
}

// NewChoiceQuiz wraps a choice payload.
func NewChoiceQuiz(q ChoiceQuiz) *Quiz {
	return &Quiz{Kind: KindChoice, Choice: &q}
}

// NewPairwiseQuiz wraps a pairwise payload.
func NewPairwiseQuiz(q PairwiseQuiz) *Quiz {
	return &Quiz{Kind: KindPairwise, Pairwise: &q}
}

// NewStackQuiz wraps a stack payload.
func NewStackQuiz(q StackQuiz) *Quiz {
	return &Quiz{Kind: KindStack, Stack: &q}
}

// Body returns the variant value for the quiz kind.
func (q *Quiz) Body() (any, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: nil quiz", ErrMalformedQuiz)
	}
	switch q.Kind {
	case KindChoice:
		if q.Choice != nil {
			return q.Choice.normalized(), nil
		}
	case KindPairwise:
		if q.Pairwise != nil {
			return q.Pairwise.normalized(), nil
		}
	case KindStack:
		if q.Stack != nil {
			return q.Stack.normalized(), nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedQuiz, q.Kind)
	}

	return nil, fmt.Errorf("%w: %s body is missing", ErrMalformedQuiz, q.Kind)
}

// MarshalJSON emits the bare variant shape without the kind tag.
func (q Quiz) MarshalJSON() ([]byte, error) {
	body, err := q.Body()
	if err != nil {
		return nil, err
	}
	return json.Marshal(body)
}

// DecodeQuiz decodes a stored payload of the given kind.
func DecodeQuiz(kind Kind, data []byte) (*Quiz, error) {
	switch kind {
	case KindChoice:
		var c ChoiceQuiz
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedQuiz, err)
		}
		return NewChoiceQuiz(c), nil
	case KindPairwise:
		var p PairwiseQuiz
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedQuiz, err)
		}
		return NewPairwiseQuiz(p), nil
	case KindStack:
		var s StackQuiz
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedQuiz, err)
		}
		return NewStackQuiz(s), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrMalformedQuiz, kind)
	}
}

// Clone returns a deep copy of the quiz.
func (q *Quiz) Clone() *Quiz {
	if q == nil {
		return nil
	}

	out := &Quiz{Kind: q.Kind}
	if q.Choice != nil {
		c := ChoiceQuiz{
			Options:     cloneStrings(q.Choice.Options),
			Preferences: cloneLookup(q.Choice.Preferences),
		}
		out.Choice = &c
	}
	if q.Pairwise != nil {
		p := PairwiseQuiz{
			Values:    cloneValues(q.Pairwise.Values),
			Decisions: cloneDecisions(q.Pairwise.Decisions),
		}
		out.Pairwise = &p
	}
	if q.Stack != nil {
		s := StackQuiz{
			Values:    cloneValues(q.Stack.Values),
			Decisions: cloneDecisions(q.Stack.Decisions),
			Stack: Stack{
				Decisions: cloneDecisions(q.Stack.Stack.Decisions),
				Low:       q.Stack.Stack.Low,
				High:      q.Stack.Stack.High,
			},
			Lookup: cloneLookup(q.Stack.Lookup),
		}
		out.Stack = &s
	}

	return out
}

// normalized replaces nil collections so they marshal as [] and {} rather than null.
func (c ChoiceQuiz) normalized() ChoiceQuiz {
	if c.Options == nil {
		c.Options = []string{}
	}
	if c.Preferences == nil {
		c.Preferences = map[string]int{}
	}
	return c
}

func (p PairwiseQuiz) normalized() PairwiseQuiz {
	if p.Values == nil {
		p.Values = [][]string{}
	}
	if p.Decisions == nil {
		p.Decisions = []Decision{}
	}
	return p
}

func (s StackQuiz) normalized() StackQuiz {
	if s.Values == nil {
		s.Values = [][]string{}
	}
	if s.Decisions == nil {
		s.Decisions = []Decision{}
	}
	if s.Stack.Decisions == nil {
		s.Stack.Decisions = []Decision{}
	}
	if s.Lookup == nil {
		s.Lookup = map[string]int{}
	}
	return s
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneValues(in [][]string) [][]string {
	if in == nil {
		return nil
	}
	out := make([][]string, len(in))
	for i, v := range in {
		out[i] = cloneStrings(v)
	}
	return out
}

func cloneDecisions(in []Decision) []Decision {
	if in == nil {
		return nil
	}
	out := make([]Decision, len(in))
	for i, d := range in {
		out[i] = Decision{Left: d.Left, Right: d.Right}
		if d.Selection != nil {
			sel := *d.Selection
			out[i].Selection = &sel
		}
	}
	return out
}

func cloneLookup(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
