package appdata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type database struct {
	dsn string
}

func TestRegistry(t *testing.T) {
	t.Run("lookup by concrete type", func(t *testing.T) {
		registry := New(&database{dsn: "postgres://"}, "plain string")

		db, found := Of[*database](registry)
		require.True(t, found)
		require.Equal(t, "postgres://", db.dsn)

		str, found := Of[string](registry)
		require.True(t, found)
		require.Equal(t, "plain string", str)
	})

	t.Run("missing type", func(t *testing.T) {
		registry := New()
		_, found := Of[int](registry)
		require.False(t, found)
	})

	t.Run("nil registry is empty", func(t *testing.T) {
		_, found := Of[int]((*Registry)(nil))
		require.False(t, found)
	})

	t.Run("with does not mutate the origin", func(t *testing.T) {
		origin := New(42)
		extended := origin.With("hello")

		_, found := Of[string](origin)
		require.False(t, found)

		number, found := Of[int](extended)
		require.True(t, found)
		require.Equal(t, 42, number)
		require.Equal(t, 2, extended.Len())
	})
}
