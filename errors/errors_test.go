package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(New("original"), "contract %s", "A123")

	assert.Equal(t, "contract A123: original", wrapped.Error())
}

func TestSentinelChecks(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NewNotFoundError("no record for %s", "A1"), IsNotFoundError},
		{"invalid request", NewInvalidRequestError("bad shape"), IsInvalidRequestError},
		{"service unavailable", Wrap(ErrServiceUnavailable, "cds returned 503"), IsServiceUnavailableError},
		{"timeout", Wrap(ErrTimeout, "cds request"), IsTimeoutError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(Wrap(tt.err, "outer")), "check must see through wrapping")
			assert.False(t, tt.check(nil))
			assert.False(t, tt.check(New("unrelated")))
		})
	}
}

func TestNewNotFoundError_Message(t *testing.T) {
	err := NewNotFoundError("no record for contract %s", "A123")

	assert.Equal(t, "no record for contract A123: not found", err.Error())
}

func TestWrapInvalidRequest(t *testing.T) {
	err := WrapInvalidRequest(fmt.Errorf("unexpected token at 3"), "parse template")

	assert.True(t, IsInvalidRequestError(err))
	assert.Contains(t, err.Error(), "parse template")
	assert.Contains(t, err.Error(), "unexpected token at 3")

	hinted := WrapInvalidRequest(WithHint(New("blocked"), "allow it in am.toml"), "fetch")
	assert.True(t, IsInvalidRequestError(hinted))
	assert.Equal(t, "allow it in am.toml", HintText(hinted))
}

func TestHintText(t *testing.T) {
	assert.Equal(t, "", HintText(nil))
	assert.Equal(t, "", HintText(New("no hints")))

	err := WithHint(New("boom"), "first")
	err = WithHint(Wrap(err, "ctx"), "second")

	hints := HintText(err)
	require.NotEmpty(t, hints)
	assert.Contains(t, hints, "first")
	assert.Contains(t, hints, "second")
}

func TestJoin(t *testing.T) {
	a := NewNotFoundError("a")
	b := Wrap(ErrTimeout, "b")

	joined := Join(a, b)
	assert.True(t, IsNotFoundError(joined))
	assert.True(t, IsTimeoutError(joined))
}
