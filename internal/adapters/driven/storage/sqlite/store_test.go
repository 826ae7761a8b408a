package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

// newTestStore creates a store in a temp dir provisioned for 3-dimensional
// vectors, small enough to reason about similarities by hand.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir(), 3)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	t.Run("creates database and runs migrations", func(t *testing.T) {
		store := newTestStore(t)

		assert.Equal(t, 3, store.Dimensions())
		assert.FileExists(t, store.Path())
	})

	t.Run("defaults dimensions when zero", func(t *testing.T) {
		store, err := NewStore(t.TempDir(), 0)
		require.NoError(t, err)
		defer store.Close()

		assert.Equal(t, DefaultDimensions, store.Dimensions())
	})

	t.Run("reopening is idempotent", func(t *testing.T) {
		dir := t.TempDir()

		store, err := NewStore(dir, 3)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		reopened, err := NewStore(dir, 3)
		require.NoError(t, err)
		defer reopened.Close()

		assert.Equal(t, 3, reopened.Dimensions())
	})

	t.Run("rejects reopening with different dimensions", func(t *testing.T) {
		dir := t.TempDir()

		store, err := NewStore(dir, 3)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		_, err = NewStore(dir, 4)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})
}

func TestVectorEncoding(t *testing.T) {
	t.Run("round trips float32 vectors", func(t *testing.T) {
		vec := []float32{0.25, -1.5, 3.125, 0}

		decoded := bytesToFloat32Slice(float32SliceToBytes(vec))

		assert.Equal(t, vec, decoded)
	})

	t.Run("empty vector encodes to empty blob", func(t *testing.T) {
		assert.Empty(t, float32SliceToBytes(nil))
		assert.Empty(t, bytesToFloat32Slice(nil))
	})
}
