package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// FragmentChannel stores a shareable location "<base>#<token>" in a file.
// The file is replaced atomically so watchers never see a partial write.
type FragmentChannel struct {
	path string
	base string
}

// NewFragmentChannel returns a channel backed by the file at path. base is the
// part written before the '#'.
func NewFragmentChannel(path, base string) *FragmentChannel {
	return &FragmentChannel{path: path, base: base}
}

// Path returns the location file.
func (c *FragmentChannel) Path() string { return c.path }

// Location renders the full location for token.
func (c *FragmentChannel) Location(token string) string {
	return c.base + "#" + token
}

// Read implements Channel. A missing file or a location without a fragment
// reads as "nothing stored".
func (c *FragmentChannel) Read(context.Context) (string, bool, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read location: %w", err)
	}
	token, ok := FragmentOf(string(data))
	return token, ok, nil
}

// FragmentOf extracts the token after the first '#' of a location.
func FragmentOf(location string) (string, bool) {
	location = strings.TrimSpace(location)
	i := strings.IndexByte(location, '#')
	if i < 0 || i == len(location)-1 {
		return "", false
	}
	return location[i+1:], true
}

// Write implements Channel.
func (c *FragmentChannel) Write(_ context.Context, token string) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("write location: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".location-*")
	if err != nil {
		return fmt.Errorf("write location: %w", err)
	}
	if _, err := tmp.WriteString(c.Location(token) + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write location: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write location: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write location: %w", err)
	}
	return nil
}

// Observable implements Channel.
func (c *FragmentChannel) Observable() bool { return true }

// Watch calls onChange with the current token whenever the location file is
// created, written or replaced, until ctx is done. The directory is watched
// rather than the file because atomic replacement swaps the inode.
func (c *FragmentChannel) Watch(ctx context.Context, onChange func(token string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch location: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("watch location: %w", err)
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch location: %w", err)
	}
	target := filepath.Clean(c.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			token, ok, err := c.Read(ctx)
			if err != nil {
				slog.Warn("location changed but could not be read", "path", c.path, "error", err)
				continue
			}
			if ok {
				onChange(token)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("location watcher error", "path", c.path, "error", err)
		}
	}
}
