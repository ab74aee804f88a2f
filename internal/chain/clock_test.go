package chain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeightClock(t *testing.T) {
	t.Run("starts at the given height", func(t *testing.T) {
		clock := NewHeightClock(42)
		assert.Equal(t, uint64(42), clock.Height())
	})

	t.Run("advance moves forward and returns the new height", func(t *testing.T) {
		clock := NewHeightClock(10)
		assert.Equal(t, uint64(15), clock.Advance(5))
		assert.Equal(t, uint64(15), clock.Height())
	})

	t.Run("set never moves backwards", func(t *testing.T) {
		clock := NewHeightClock(100)
		assert.Equal(t, uint64(100), clock.Set(50))
		assert.Equal(t, uint64(100), clock.Height())

		assert.Equal(t, uint64(200), clock.Set(200))
		assert.Equal(t, uint64(200), clock.Height())
	})

	t.Run("concurrent advances all land", func(t *testing.T) {
		clock := NewHeightClock(0)
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				clock.Advance(1)
			}()
		}
		wg.Wait()
		assert.Equal(t, uint64(100), clock.Height())
	})
}
