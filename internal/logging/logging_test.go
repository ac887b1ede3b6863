package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xlm.log")

	result, err := New(Config{Level: "debug", File: path})
	require.NoError(t, err)
	assert.Equal(t, path, result.FilePath)

	result.Logger.Info().Msg("hello from test")
	require.NoError(t, result.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}

func TestNewFileOpenFailureIsNotFatal(t *testing.T) {
	result, err := New(Config{File: filepath.Join(t.TempDir(), "no", "such", "dir", "xlm.log")})
	require.NoError(t, err)
	assert.Empty(t, result.FilePath)
	require.NoError(t, result.Close())
}

func TestNewLevelParsing(t *testing.T) {
	result, err := New(Config{Level: "warn"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, result.Logger.GetLevel())

	result, err = New(Config{Level: "not-a-level"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, result.Logger.GetLevel())

	result, err = New(Config{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, result.Logger.GetLevel())
}

func TestNewTraceID(t *testing.T) {
	id := NewTraceID()
	assert.Len(t, id, 26, "ULIDs are 26 characters")
	assert.NotEqual(t, id, NewTraceID())
}

func TestContextRoundTrip(t *testing.T) {
	result, err := New(Config{})
	require.NoError(t, err)

	ctx := WithContext(context.Background(), result.Logger, NewTraceID())
	logger := FromContext(ctx)
	require.NotNil(t, logger)
	assert.Equal(t, result.Logger.GetLevel(), logger.GetLevel())
}

func TestCloseNilResult(t *testing.T) {
	var r *Result
	require.NoError(t, r.Close())
}
