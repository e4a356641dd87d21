package deployid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsOutOfRangeLength(t *testing.T) {
	_, err := New(MinLength - 1)
	require.Error(t, err)
	_, err = New(MaxLength + 1)
	require.Error(t, err)
	require.Panics(t, func() { Must(0) })
}

func TestIdentityShape(t *testing.T) {
	for _, n := range []int{MinLength, DefaultLength, MaxLength} {
		g := Must(n)
		id, err := g.New()
		require.NoError(t, err)
		require.Len(t, id, n)
		require.True(t, Valid(id), id)
	}
	require.False(t, Valid("ABCDEFGH"))
	require.False(t, Valid("abc"))
	require.False(t, Valid("abc-def-ghi"))
}

func TestNoCollisionsAtVolume(t *testing.T) {
	const draws = 100_000
	g := Must(DefaultLength)
	seen := make(map[string]struct{}, draws)
	for i := 0; i < draws; i++ {
		id, err := g.New()
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "collision after %d draws: %s", i, id)
		seen[id] = struct{}{}
	}
}

func TestConcurrentDraws(t *testing.T) {
	const workers, perWorker = 8, 2_000
	g := Must(DefaultLength)

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*perWorker)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				id, err := g.New()
				if err != nil {
					t.Error(err)
					return
				}
				local = append(local, id)
			}
			mu.Lock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, seen, workers*perWorker)
}
