package corvid

import (
	"testing"
	"time"

	"github.com/corvid-web/corvid/appdata"
	"github.com/corvid-web/corvid/config"
	"github.com/stretchr/testify/require"
)

type database struct{ dsn string }

type cache struct{ addr string }

func TestAppState(t *testing.T) {
	t.Run("repeated calls accumulate", func(t *testing.T) {
		app := New("localhost:8080").
			WithState(&database{dsn: "postgres://db"}).
			WithState(&cache{addr: "redis:6379"})

		db, found := appdata.Of[*database](app.state)
		require.True(t, found)
		require.Equal(t, "postgres://db", db.dsn)

		c, found := appdata.Of[*cache](app.state)
		require.True(t, found)
		require.Equal(t, "redis:6379", c.addr)
	})

	t.Run("same type replaces the previous value", func(t *testing.T) {
		app := New("localhost:8080").
			WithState(&database{dsn: "stale"}).
			WithState(&database{dsn: "fresh"})

		db, found := appdata.Of[*database](app.state)
		require.True(t, found)
		require.Equal(t, "fresh", db.dsn)
	})
}

func TestAppTune(t *testing.T) {
	app := New("localhost:8080").Tune(&config.Config{
		NET: config.NET{KeepAlive: time.Minute},
	})

	require.Equal(t, time.Minute, app.cfg.NET.KeepAlive)
	// untouched knobs fall back to defaults
	require.Equal(t, config.Default().NET.ReadBufferSize, app.cfg.NET.ReadBufferSize)
}

func TestServeRequiresCollaborators(t *testing.T) {
	require.Error(t, New("localhost:8080").Serve(nil, nil))
}
