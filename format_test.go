package plugkit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type named string

func (n named) String() string { return "named:" + string(n) }

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "<nil>", FormatValue(nil))
	assert.Equal(t, "disk low", FormatValue("disk low"))
	assert.Equal(t, "42", FormatValue(42))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "named:a", FormatValue(named("a")))
	assert.Equal(t, "raw", FormatValue([]byte("raw")))
	assert.Equal(t, "{\n  \"x\": 1,\n  \"y\": 2\n}", FormatValue(point{X: 1, Y: 2}))
	assert.Equal(t, "{\n  \"x\": 1,\n  \"y\": 2\n}", FormatValue(&point{X: 1, Y: 2}))
	assert.Equal(t, "{\n  \"a\": 1\n}", FormatValue(map[string]int{"a": 1}))
	assert.Equal(t, "[\n  1,\n  2\n]", FormatValue([]int{1, 2}))
}

func TestFormatValueFallsBackWhenSerializationFails(t *testing.T) {
	v := map[string]any{"fn": func() {}}
	assert.Equal(t, fmt.Sprintf("%+v", v), FormatValue(v))
}

func TestFormatError(t *testing.T) {
	plain := errors.New("disk full")
	assert.Equal(t, "disk full", FormatError(plain))

	traced := &stackError{msg: "disk full", stack: "main.save()\n\tsave.go:10"}
	assert.Equal(t, "disk full\nmain.save()\n\tsave.go:10", FormatError(traced))

	wrapped := fmt.Errorf("save: %w", traced)
	assert.Equal(t, "save: disk full\nmain.save()\n\tsave.go:10", FormatError(wrapped))
	assert.Equal(t, "", FormatError(nil))
}

func TestFormatValues(t *testing.T) {
	assert.Equal(t, "a 1 true", FormatValues([]any{"a", 1, true}))
	assert.Equal(t, "", FormatValues(nil))
}

func TestFormatFailure(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, "Error in save: boom", FormatFailure("save", err, nil))
	assert.Equal(t, "Error in unknown: boom", FormatFailure("", err, nil))
	assert.Equal(t, "Error in save: boom - id 7", FormatFailure("save", err, []any{"id", 7}))
}
