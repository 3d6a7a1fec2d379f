package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubSource struct {
	price int64
	ok    bool
}

func (s stubSource) FastPrice() (int64, bool) {
	return s.price, s.ok
}

func TestEscalatorLiveBranch(t *testing.T) {
	e := NewEscalator(stubSource{price: 100 * Unit, ok: true})

	t.Run("starts from fast plus ten percent", func(t *testing.T) {
		assert.Equal(t, 110*Unit, e.Price(0))
		assert.Equal(t, 110*Unit, e.Price(59*time.Second))
	})

	t.Run("adds a step every minute", func(t *testing.T) {
		assert.Equal(t, 120*Unit, e.Price(60*time.Second))
		assert.Equal(t, 130*Unit, e.Price(125*time.Second))
	})

	t.Run("caps at fast plus ten percent plus cap", func(t *testing.T) {
		assert.Equal(t, 160*Unit, e.Price(5*time.Minute))
		assert.Equal(t, 160*Unit, e.Price(24*time.Hour))
	})
}

func TestEscalatorMonotonicAndBounded(t *testing.T) {
	e := NewEscalator(stubSource{price: 37 * Unit, ok: true})
	bound := 37*Unit*11/10 + e.Cap

	prev := int64(0)
	for sec := 0; sec <= 900; sec += 15 {
		p := e.Price(time.Duration(sec) * time.Second)
		assert.GreaterOrEqual(t, p, prev, "price decreased at %ds", sec)
		assert.LessOrEqual(t, p, bound, "price exceeded bound at %ds", sec)
		prev = p
	}
}

func TestEscalatorFallbackBranch(t *testing.T) {
	t.Run("stale sample selects the time-based ramp", func(t *testing.T) {
		// the stub's price value must not leak into the result
		e := NewEscalator(stubSource{price: 999999 * Unit, ok: false})

		assert.Equal(t, 20*Unit, e.Price(0))
		assert.Equal(t, 30*Unit, e.Price(60*time.Second))
		assert.Equal(t, 40*Unit, e.Price(125*time.Second))
		assert.Equal(t, 100*Unit, e.Price(time.Hour))
	})

	t.Run("nil source always falls back", func(t *testing.T) {
		e := NewEscalator(nil)
		assert.Equal(t, 20*Unit, e.Price(0))
		assert.Equal(t, 100*Unit, e.Price(time.Hour))
	})

	t.Run("fallback knobs are configurable", func(t *testing.T) {
		e := NewEscalator(nil)
		e.Initial = 5 * Unit
		e.Increase = 5 * Unit
		e.Every = 42 * time.Second
		e.Max = 12 * Unit

		assert.Equal(t, 5*Unit, e.Price(0))
		assert.Equal(t, 10*Unit, e.Price(42*time.Second))
		assert.Equal(t, 12*Unit, e.Price(10*time.Minute))
	})
}

func TestEscalatorFixedSourceEscalates(t *testing.T) {
	// a manual value is an always-fresh sample, so the live formula applies
	e := NewEscalator(FixedSource{Price: 100 * Unit})
	assert.Equal(t, 110*Unit, e.Price(0))
	assert.Equal(t, 130*Unit, e.Price(125*time.Second))
	assert.Equal(t, 160*Unit, e.Price(time.Hour))
}
