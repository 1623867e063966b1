package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConcurrentAddsAndReads exercises the LRU mutex discipline and the
// session factory's one-conn-per-operation contract under `go test -race`.
func TestConcurrentAddsAndReads(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	const goroutines = 16
	ids := make(chan int64, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id, err := db.Add(ctx, []byte("idx"), []byte("payload"), nil)
			require.NoError(t, err)
			ids <- id
		}(i)
	}
	wg.Wait()
	close(ids)

	var wg2 sync.WaitGroup
	for id := range ids {
		wg2.Add(1)
		go func(id int64) {
			defer wg2.Done()
			r, err := db.Get(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, r)
		}(id)
	}
	wg2.Wait()
}

// TestConcurrentCacheClearAndGet exercises ClearCaches racing with
// in-flight reads.
func TestConcurrentCacheClearAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.Add(ctx, []byte("idx"), []byte("payload"), nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = db.Get(ctx, id)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			db.ClearCaches(ctx)
		}()
	}
	wg.Wait()
}
