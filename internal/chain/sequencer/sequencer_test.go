package sequencer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencerDo(t *testing.T) {
	t.Run("operations are mutually exclusive", func(t *testing.T) {
		seq := New()
		counter := 0

		var wg sync.WaitGroup
		for i := 0; i < 200; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = seq.Do(context.Background(), func(context.Context) error {
					counter++
					return nil
				})
			}()
		}
		wg.Wait()
		assert.Equal(t, 200, counter)
	})

	t.Run("fn errors pass through", func(t *testing.T) {
		seq := New()
		sentinel := assert.AnError
		err := seq.Do(context.Background(), func(context.Context) error { return sentinel })
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("cancelled context is rejected before entry", func(t *testing.T) {
		seq := New()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ran := false
		err := seq.Do(ctx, func(context.Context) error {
			ran = true
			return nil
		})
		require.Error(t, err)
		assert.False(t, ran)
	})
}
