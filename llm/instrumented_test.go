package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstrumentPassesThrough(t *testing.T) {
	inner := &scriptedAdapter{text: "print(1)"}
	adapter := Instrument(inner, "gpt-4")

	text, err := adapter.Generate(context.Background(), Request{Instruction: "print one", Mode: ModeCode})
	assert.NoError(t, err)
	assert.Equal(t, "print(1)", text)
	assert.Equal(t, 1, inner.calls)
}

func TestInstrumentPassesThroughError(t *testing.T) {
	boom := errors.New("boom")
	inner := &scriptedAdapter{errs: []error{boom}}
	adapter := Instrument(inner, "gpt-4")

	_, err := adapter.Generate(context.Background(), Request{Instruction: "print one", Mode: ModeCode})
	assert.ErrorIs(t, err, boom)
}

func TestClipShortensLongStrings(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcde…", clip("abcdefgh", 5))
}
