package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFill(t *testing.T) {
	partial := &Config{}
	partial.NET.KeepAlive = time.Minute

	filled := Fill(partial)
	require.Equal(t, time.Minute, filled.NET.KeepAlive)
	require.Equal(t, Default().NET.HeaderReadTimeout, filled.NET.HeaderReadTimeout)
	require.Equal(t, Default().Body.MaxSize, filled.Body.MaxSize)
	require.NotNil(t, filled.Headers.Default)
}
