package counter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-camrig/internal/log"
)

func TestCounter_IncrementDecrement(t *testing.T) {
	c := New("doors", log.Discard())

	assert.Equal(t, 1, c.Increment())
	assert.Equal(t, 2, c.Increment())

	n, err := c.Decrement()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, c.Value())
	assert.Equal(t, "doors", c.Name())
}

func TestCounter_Negative(t *testing.T) {
	c := New("doors", log.Discard())

	n, err := c.Decrement()
	assert.ErrorIs(t, err, ErrNegative)
	assert.Equal(t, -1, n)

	// still counts, so a later increment balances it
	c.Increment()
	assert.Equal(t, 0, c.Value())
}

func TestCounter_Count(t *testing.T) {
	c := New("x", nil)

	require.NoError(t, c.Count(true))
	require.NoError(t, c.Count(true))
	require.NoError(t, c.Count(false))
	assert.Equal(t, 1, c.Value())
}

func TestCounter_OnChange(t *testing.T) {
	c := New("x", log.Discard())

	var seen []int
	c.OnChange(func(n int) { seen = append(seen, n) })

	c.Increment()
	c.Increment()
	c.Decrement()
	assert.Equal(t, []int{1, 2, 1}, seen)
}

func TestCounter_Concurrent(t *testing.T) {
	c := New("x", log.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Increment()
			c.Decrement()
			c.Increment()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Value())
}

func TestActivation(t *testing.T) {
	tests := []struct {
		name   string
		invert bool
		count  int
		want   bool
	}{
		{"zero", false, 0, false},
		{"positive", false, 3, true},
		{"negative", false, -1, false},
		{"inverted zero", true, 0, true},
		{"inverted positive", true, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bool
			a := Activation{Invert: tt.invert, Set: func(active bool) { got = active }}
			a.Apply(tt.count)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, a.Active(tt.count))
		})
	}
}

func TestAttach_AppliesImmediately(t *testing.T) {
	c := New("x", log.Discard())

	active := true
	Attach(c, Activation{Set: func(v bool) { active = v }})
	assert.False(t, active)

	c.Increment()
	assert.True(t, active)
	c.Decrement()
	assert.False(t, active)
}

func TestBinding(t *testing.T) {
	a := New("a", log.Discard())
	b := New("b", log.Discard())
	bind := NewBinding(false, a, nil, b)

	require.NoError(t, bind.Enable())
	require.NoError(t, bind.Enable())
	assert.True(t, bind.Enabled())
	assert.Equal(t, 1, a.Value())
	assert.Equal(t, 1, b.Value())

	require.NoError(t, bind.Disable())
	require.NoError(t, bind.Disable())
	assert.Equal(t, 0, a.Value())
	assert.Equal(t, 0, b.Value())
}

func TestBinding_Inverted(t *testing.T) {
	a := New("a", log.Discard())
	a.Increment()
	bind := NewBinding(true, a)

	require.NoError(t, bind.Enable())
	assert.Equal(t, 0, a.Value())

	require.NoError(t, bind.Disable())
	assert.Equal(t, 1, a.Value())
}

func TestBinding_ReportsNegative(t *testing.T) {
	a := New("a", log.Discard())
	bind := NewBinding(true, a)

	assert.ErrorIs(t, bind.Enable(), ErrNegative)
}
