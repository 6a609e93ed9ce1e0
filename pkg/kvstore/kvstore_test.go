package kvstore

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// exercise runs the common Store contract against s.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "groq.chat.v1", `[]`))
	v, err := s.Get(ctx, "groq.chat.v1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	require.NoError(t, s.Set(ctx, "groq.chat.v1", `[{"id":"a"}]`))
	v, err = s.Get(ctx, "groq.chat.v1")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, v)

	require.NoError(t, s.Delete(ctx, "groq.chat.v1"))
	_, err = s.Get(ctx, "groq.chat.v1")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting an absent key is not an error
	assert.NoError(t, s.Delete(ctx, "groq.chat.v1"))
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	exercise(t, s)
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chats.db")
	s, err := NewSQLite(path, testLogger())
	require.NoError(t, err)
	exercise(t, s)
	require.NoError(t, s.Close())

	// values survive reopening
	s, err = NewSQLite(path, testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "app.tts.voice.v1", "Gail-PlayAI"))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path, testLogger())
	require.NoError(t, err)
	v, err := s.Get(ctx, "app.tts.voice.v1")
	require.NoError(t, err)
	assert.Equal(t, "Gail-PlayAI", v)
	assert.NoError(t, s.Close())
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "default is memory", cfg: Config{}},
		{name: "memory", cfg: Config{Driver: DriverMemory}},
		{name: "sqlite without path", cfg: Config{Driver: DriverSQLite}, wantErr: "path is required"},
		{name: "redis without addr", cfg: Config{Driver: DriverRedis}, wantErr: "addr is required"},
		{name: "unknown driver", cfg: Config{Driver: "etcd"}, wantErr: "unsupported driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg, testLogger())
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, s.Close())
		})
	}
}
