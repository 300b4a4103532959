package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/skygridgo/internal/ctxlog"
	"github.com/vk/skygridgo/internal/resolve"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Context returns a background context carrying the test's logger, so log
// output lands in the test log instead of stderr.
func Context(t *testing.T) context.Context {
	t.Helper()
	return ctxlog.WithLogger(context.Background(), TestLogger(t))
}

// FakeGlob builds a Globber that answers from a fixed pattern table instead
// of the filesystem. Unknown patterns match nothing.
func FakeGlob(matches map[string][]string) resolve.Globber {
	return func(pattern string) ([]string, error) {
		return matches[pattern], nil
	}
}

// Resolve runs the full resolution pipeline over an in-memory payload with
// an injected glob table, failing the test on error.
func Resolve(t *testing.T, payload map[string]any, glob map[string][]string) *resolve.Resolver {
	t.Helper()
	r, err := resolve.NewWithOptions(Context(t), payload, resolve.Options{Glob: FakeGlob(glob)})
	require.NoError(t, err)
	return r
}

// WriteFiles materializes a map of relative path to content under a fresh
// temporary directory and returns its root.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}
	return tmpDir
}
