package pipeline

// Route is the router's classification of which silo(s) to query.
type Route string

const (
	RouteSiloA Route = "silo_a" // internal engineering documentation
	RouteSiloB Route = "silo_b" // patents and external research
	RouteBoth  Route = "both"
)

// Message is one entry in the conversation history.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// State is the shared record threaded through every pipeline stage. It lives
// for exactly one invocation: created fresh per request, discarded after the
// response is built.
//
// Merge policy per field: Messages, Sources and Errors accumulate; every
// other field is last-write-wins.
type State struct {
	Messages          []Message
	Query             string
	RouteDecision     Route
	ContextSiloA      string
	ContextSiloB      string
	SynthesizedAnswer string
	Sources           []string
	Errors            []string
	PIIDetected       bool
}

// Update is the partial state a single stage returns. Nil pointer fields mean
// "no update for this field"; slice fields are appended, never replacing what
// earlier stages contributed.
type Update struct {
	Query             *string
	RouteDecision     *Route
	ContextSiloA      *string
	ContextSiloB      *string
	SynthesizedAnswer *string
	PIIDetected       *bool
	Messages          []Message
	Sources           []string
	Errors            []string
}

// replace is the overwrite merge strategy: the stage's value wins when set.
func replace[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// appendTo is the accumulate merge strategy: stage output concatenates onto
// the existing collection.
func appendTo[T any](dst []T, src []T) []T {
	if len(src) == 0 {
		return dst
	}
	return append(dst, src...)
}

// Apply merges a stage's partial update into the state using the per-field
// merge policy.
func (s *State) Apply(u Update) {
	replace(&s.Query, u.Query)
	replace(&s.RouteDecision, u.RouteDecision)
	replace(&s.ContextSiloA, u.ContextSiloA)
	replace(&s.ContextSiloB, u.ContextSiloB)
	replace(&s.SynthesizedAnswer, u.SynthesizedAnswer)
	replace(&s.PIIDetected, u.PIIDetected)
	s.Messages = appendTo(s.Messages, u.Messages)
	s.Sources = appendTo(s.Sources, u.Sources)
	s.Errors = appendTo(s.Errors, u.Errors)
}

func ptr[T any](v T) *T {
	return &v
}
