package userstore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/usersvc/internal/user"
)

func TestCreateAssignsSequentialIDsOnEmptyStore(t *testing.T) {
	store := New()

	for want := 0; want < 5; want++ {
		assert.Equal(t, user.ID(want), store.Create())
	}
	assert.Equal(t, 5, store.Len())
}

func TestCreateThenGet(t *testing.T) {
	store := New()
	id := store.Create()

	u, found := store.Get(id)
	assert.True(t, found, "a freshly created user should be found")
	assert.Equal(t, user.New(), u)
}

func TestDeleteThenGet(t *testing.T) {
	store := New()
	id := store.Create()

	require.True(t, store.Delete(id))

	_, found := store.Get(id)
	assert.False(t, found, "a deleted user should not be found")
	assert.False(t, store.Delete(id), "a second delete should report absence")
	assert.Equal(t, 0, store.Len())
}

func TestDeletedIDIsReused(t *testing.T) {
	store := New()
	first := store.Create()
	second := store.Create()
	third := store.Create()

	require.True(t, store.Delete(second))
	assert.Equal(t, second, store.Create(), "the freed slot should be reused")
	assert.Equal(t, user.ID(3), store.Create(), "no free slots left, so the store grows")

	require.True(t, store.Delete(first))
	require.True(t, store.Delete(third))
	assert.Equal(t, third, store.Create(), "the most recently freed slot goes first")
	assert.Equal(t, first, store.Create())
}

func TestAbsentIDs(t *testing.T) {
	store := New()

	t.Run("never created", func(t *testing.T) {
		_, found := store.Get(99)
		assert.False(t, found)
		assert.False(t, store.Replace(99, user.New()))
		assert.False(t, store.Delete(99))
	})

	t.Run("above the int range", func(t *testing.T) {
		id := user.ID(1<<63 + 5)
		_, found := store.Get(id)
		assert.False(t, found)
		assert.False(t, store.Replace(id, user.New()))
		assert.False(t, store.Delete(id))
	})

	t.Run("vacant slot below the high-water mark", func(t *testing.T) {
		store.Create()
		id := store.Create()
		store.Create()
		require.True(t, store.Delete(id))

		_, found := store.Get(id)
		assert.False(t, found)
		assert.False(t, store.Replace(id, user.New()))
		assert.False(t, store.Delete(id))
	})
}

func TestReplaceKeepsID(t *testing.T) {
	store := New()
	store.Create()
	id := store.Create()

	require.True(t, store.Replace(id, user.New()))

	u, found := store.Get(id)
	assert.True(t, found)
	assert.Equal(t, user.New(), u)
	assert.Equal(t, []user.ID{0, 1}, store.ListIDs())
}

func TestListIDsCount(t *testing.T) {
	store := New()
	assert.NotNil(t, store.ListIDs())
	assert.Empty(t, store.ListIDs())

	const created = 10
	for i := 0; i < created; i++ {
		store.Create()
	}

	deleted := []user.ID{0, 3, 4, 9}
	for _, id := range deleted {
		require.True(t, store.Delete(id))
	}

	ids := store.ListIDs()
	assert.Len(t, ids, created-len(deleted))
	assert.Equal(t, []user.ID{1, 2, 5, 6, 7, 8}, ids)
	assert.Equal(t, created-len(deleted), store.Len())
}

func TestZeroValueStoreIsUsable(t *testing.T) {
	var store Store

	id := store.Create()
	assert.Equal(t, user.ID(0), id)
	assert.Equal(t, []user.ID{0}, store.ListIDs())
}

func TestConcurrentCreateNeverDuplicates(t *testing.T) {
	store := New()

	const workers = 16
	const perWorker = 200

	results := make(chan user.ID, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				results <- store.Create()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[user.ID]bool, workers*perWorker)
	for id := range results {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, workers*perWorker, store.Len())
}

func TestConcurrentCreateAndDeleteKeepLiveIDsDistinct(t *testing.T) {
	store := New()

	const workers = 8
	const rounds = 300

	var mu sync.Mutex
	held := make(map[user.ID]bool)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				id := store.Create()

				mu.Lock()
				dup := held[id]
				held[id] = true
				mu.Unlock()
				assert.False(t, dup, "id %d issued while still live", id)

				if i%2 == 0 {
					mu.Lock()
					delete(held, id)
					mu.Unlock()
					assert.True(t, store.Delete(id))
				}
			}
		}()
	}
	wg.Wait()

	assert.Len(t, store.ListIDs(), len(held))
}
