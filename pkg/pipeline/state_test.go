package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyOverwriteFields(t *testing.T) {
	s := &State{Query: "original", RouteDecision: RouteBoth}

	s.Apply(Update{Query: ptr("redacted"), RouteDecision: ptr(RouteSiloA)})

	assert.Equal(t, "redacted", s.Query)
	assert.Equal(t, RouteSiloA, s.RouteDecision)
}

func TestApplyNilPointerLeavesFieldUntouched(t *testing.T) {
	s := &State{Query: "original", PIIDetected: true}

	s.Apply(Update{SynthesizedAnswer: ptr("answer")})

	assert.Equal(t, "original", s.Query)
	assert.True(t, s.PIIDetected)
	assert.Equal(t, "answer", s.SynthesizedAnswer)
}

func TestApplyAccumulatesCollections(t *testing.T) {
	s := &State{
		Sources: []string{"first"},
		Errors:  []string{"warn-1"},
	}

	s.Apply(Update{Sources: []string{"second"}, Errors: []string{"warn-2"}})
	s.Apply(Update{Sources: []string{"third"}})

	assert.Equal(t, []string{"first", "second", "third"}, s.Sources)
	assert.Equal(t, []string{"warn-1", "warn-2"}, s.Errors)
}

func TestApplyMessagesAppendOnly(t *testing.T) {
	s := &State{}

	s.Apply(Update{Messages: []Message{{Role: "user", Content: "hello"}}})
	s.Apply(Update{Messages: []Message{{Role: "assistant", Content: "answer"}}})

	assert.Len(t, s.Messages, 2)
	assert.Equal(t, "user", s.Messages[0].Role)
	assert.Equal(t, "assistant", s.Messages[1].Role)
}

func TestReplaceAndAppendTo(t *testing.T) {
	val := "old"
	replace(&val, ptr("new"))
	assert.Equal(t, "new", val)

	replace(&val, nil)
	assert.Equal(t, "new", val)

	out := appendTo([]int{1}, []int{2, 3})
	assert.Equal(t, []int{1, 2, 3}, out)

	out = appendTo(out, nil)
	assert.Equal(t, []int{1, 2, 3}, out)
}
