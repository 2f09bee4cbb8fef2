package harness

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doubleIn struct {
	N int `json:"n"`
}

type doubleOut struct {
	Doubled int `json:"doubled"`
}

func double(in doubleIn) doubleOut { return doubleOut{Doubled: in.N * 2} }

func TestRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(New("double", double)))
	reg.Freeze()

	e, ok := reg.Lookup("double")
	require.True(t, ok)
	assert.Equal(t, "double", e.Name)

	_, ok = reg.Lookup("no_such_harness")
	assert.False(t, ok)
}

func TestDuplicateNamesFirstRegistrationWins(t *testing.T) {
	reg := NewRegistry()
	first := New("dup", func(in doubleIn) doubleOut { return doubleOut{Doubled: 1} })
	second := New("dup", func(in doubleIn) doubleOut { return doubleOut{Doubled: 2} })
	require.NoError(t, reg.Register(first))
	require.NoError(t, reg.Register(second))
	reg.Freeze()

	e, ok := reg.Lookup("dup")
	require.True(t, ok)
	out, err := e.Invoke(json.RawMessage(`{"n": 0}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"doubled": 1}`, string(out))

	assert.Equal(t, []string{"dup", "dup"}, reg.Names())
}

func TestRegisterAfterFreezeFails(t *testing.T) {
	reg := NewRegistry()
	reg.Freeze()
	err := reg.Register(New("late", double))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frozen")
}

func TestAdapterRoundTrip(t *testing.T) {
	e := New("double", double)
	out, err := e.Invoke(json.RawMessage(`{"n": 21}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"doubled": 42}`, string(out))
}

func TestAdapterDeserializeFailure(t *testing.T) {
	e := New("double", double)
	_, err := e.Invoke(json.RawMessage(`{"n": "not a number"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to deserialize input:")
}

func TestAdapterSerializeFailure(t *testing.T) {
	e := New("bad", func(in doubleIn) map[string]any {
		// Channels are not JSON-marshalable.
		return map[string]any{"ch": make(chan int)}
	})
	_, err := e.Invoke(json.RawMessage(`{"n": 1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to serialize output:")
}
