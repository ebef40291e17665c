package persist

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFragmentOf(t *testing.T) {
	tests := []struct {
		location string
		token    string
		ok       bool
	}{
		{"http://localhost:5000/#abc", "abc", true},
		{"#abc\n", "abc", true},
		{"http://localhost:5000/", "", false},
		{"http://localhost:5000/#", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := FragmentOf(tt.location)
		assert.Equal(t, tt.ok, ok, tt.location)
		assert.Equal(t, tt.token, token, tt.location)
	}
}

func TestFragmentChannel_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "location")
	ch := NewFragmentChannel(path, "http://localhost:5000/")
	ctx := context.Background()

	_, ok, err := ch.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ch.Write(ctx, "tok"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/#tok\n", string(data))

	token, ok, err := ch.Read(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", token)
	assert.True(t, ch.Observable())
}

func TestFragmentChannel_WatchSeesOutsideEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "location")
	ch := NewFragmentChannel(path, "http://localhost:5000/")
	ctx, cancel := context.WithCancel(context.Background())

	seen := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- ch.Watch(ctx, func(token string) { seen <- token })
	}()

	// Give the watcher time to register.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("http://x/#edited"), 0o644))

	select {
	case token := <-seen:
		assert.Equal(t, "edited", token)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not report the edit")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyFragment, s)

	s, err = ParseStrategy("local")
	require.NoError(t, err)
	assert.Equal(t, StrategyLocal, s)

	_, err = ParseStrategy("cookie")
	require.Error(t, err)
}
