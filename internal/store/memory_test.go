package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "userhub-backend/pkg/errors"
)

func TestCreate(t *testing.T) {
	t.Run("Should assign unique increasing IDs", func(t *testing.T) {
		s := NewMemoryStore()

		a, err := s.Create("Alice", "alice@example.com", 30)
		require.NoError(t, err)
		b, err := s.Create("Bob", "bob@example.com", 25)
		require.NoError(t, err)

		assert.Equal(t, 1, a.ID)
		assert.Equal(t, 2, b.ID)
		assert.False(t, a.CreatedAt.IsZero())
		assert.Nil(t, a.UpdatedAt)
	})

	t.Run("Should reject duplicate email", func(t *testing.T) {
		s := NewMemoryStore()

		_, err := s.Create("Alice", "alice@example.com", 30)
		require.NoError(t, err)

		_, err = s.Create("Other", "alice@example.com", 40)
		assert.True(t, appErrors.IsConflict(err))
		assert.Equal(t, 1, s.Count())
	})

	t.Run("Should treat email as case-insensitive", func(t *testing.T) {
		s := NewMemoryStore()

		_, err := s.Create("Alice", "Alice@Example.com", 30)
		require.NoError(t, err)

		_, err = s.Create("Other", "alice@example.com", 40)
		assert.True(t, appErrors.IsConflict(err))
	})

	t.Run("Should never reuse an ID after delete", func(t *testing.T) {
		s := NewMemoryStore()

		a, _ := s.Create("Alice", "alice@example.com", 30)
		_, err := s.Delete(a.ID)
		require.NoError(t, err)

		b, err := s.Create("Bob", "bob@example.com", 25)
		require.NoError(t, err)
		assert.Greater(t, b.ID, a.ID)
	})
}

func TestGet(t *testing.T) {
	s := NewMemoryStore()
	created, _ := s.Create("Alice", "alice@example.com", 30)

	t.Run("Should return a copy of the record", func(t *testing.T) {
		got, err := s.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.Name)

		got.Name = "mutated"
		again, err := s.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", again.Name)
	})

	t.Run("Should return not found for unknown id", func(t *testing.T) {
		_, err := s.Get(999)
		assert.True(t, appErrors.IsNotFound(err))
	})
}

func TestUpdate(t *testing.T) {
	t.Run("Should apply partial updates and set UpdatedAt", func(t *testing.T) {
		s := NewMemoryStore()
		created, _ := s.Create("Alice", "alice@example.com", 30)

		name := "Alicia"
		updated, err := s.Update(created.ID, UserPatch{Name: &name})
		require.NoError(t, err)

		assert.Equal(t, "Alicia", updated.Name)
		assert.Equal(t, "alice@example.com", updated.Email)
		assert.Equal(t, 30, updated.Age)
		require.NotNil(t, updated.UpdatedAt)
	})

	t.Run("Should allow keeping own email", func(t *testing.T) {
		s := NewMemoryStore()
		created, _ := s.Create("Alice", "alice@example.com", 30)

		email := "alice@example.com"
		_, err := s.Update(created.ID, UserPatch{Email: &email})
		assert.NoError(t, err)
	})

	t.Run("Should reject email of another record", func(t *testing.T) {
		s := NewMemoryStore()
		_, _ = s.Create("Alice", "alice@example.com", 30)
		bob, _ := s.Create("Bob", "bob@example.com", 25)

		email := "alice@example.com"
		_, err := s.Update(bob.ID, UserPatch{Email: &email})
		assert.True(t, appErrors.IsConflict(err))
	})

	t.Run("Should free the old email after change", func(t *testing.T) {
		s := NewMemoryStore()
		alice, _ := s.Create("Alice", "alice@example.com", 30)

		email := "new@example.com"
		_, err := s.Update(alice.ID, UserPatch{Email: &email})
		require.NoError(t, err)

		_, err = s.Create("Bob", "alice@example.com", 25)
		assert.NoError(t, err)
	})

	t.Run("Should return not found for unknown id", func(t *testing.T) {
		s := NewMemoryStore()
		name := "x"
		_, err := s.Update(42, UserPatch{Name: &name})
		assert.True(t, appErrors.IsNotFound(err))
	})
}

func TestDelete(t *testing.T) {
	t.Run("Should remove record and return it", func(t *testing.T) {
		s := NewMemoryStore()
		created, _ := s.Create("Alice", "alice@example.com", 30)

		deleted, err := s.Delete(created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, deleted.ID)

		_, err = s.Get(created.ID)
		assert.True(t, appErrors.IsNotFound(err))
		assert.Equal(t, 0, s.Count())
	})

	t.Run("Should free the email for reuse", func(t *testing.T) {
		s := NewMemoryStore()
		created, _ := s.Create("Alice", "alice@example.com", 30)
		_, _ = s.Delete(created.ID)

		_, err := s.Create("Alice2", "alice@example.com", 31)
		assert.NoError(t, err)
	})

	t.Run("Should return not found for unknown id", func(t *testing.T) {
		s := NewMemoryStore()
		_, err := s.Delete(999)
		assert.True(t, appErrors.IsNotFound(err))
	})
}

func TestListOrder(t *testing.T) {
	s := NewMemoryStore()
	for i := 0; i < 5; i++ {
		_, err := s.Create(fmt.Sprintf("user-%d", i), fmt.Sprintf("u%d@example.com", i), 20+i)
		require.NoError(t, err)
	}

	users := s.List()
	require.Len(t, users, 5)
	for i, u := range users {
		assert.Equal(t, i+1, u.ID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Create(fmt.Sprintf("user-%d", i), fmt.Sprintf("u%d@example.com", i), 20)
			assert.NoError(t, err)
			s.List()
			s.Count()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Count())

	seen := make(map[int]bool)
	for _, u := range s.List() {
		assert.False(t, seen[u.ID], "duplicate id %d", u.ID)
		seen[u.ID] = true
	}
}
