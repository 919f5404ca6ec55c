package sqlschema_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apigen-dev/sqlschema"
)

// reloadRecorder collects watcher callbacks for assertions.
type reloadRecorder struct {
	mu      sync.Mutex
	schemas []*sqlschema.Schema
	errs    []error
}

func (r *reloadRecorder) record(s *sqlschema.Schema, _ *sqlschema.ValidationResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.errs = append(r.errs, err)
		return
	}
	r.schemas = append(r.schemas, s)
}

func (r *reloadRecorder) loads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.schemas)
}

func (r *reloadRecorder) last() *sqlschema.Schema {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.schemas) == 0 {
		return nil
	}
	return r.schemas[len(r.schemas)-1]
}

func (r *reloadRecorder) failures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func (r *reloadRecorder) lastErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[len(r.errs)-1]
}

// TestWatch verifies the initial load and a reload after the document
// changes on disk.
func TestWatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	initial := []byte(`
tables:
  - name: users
    columns:
      - name: id
        raw_type: bigint
        primary_key: true
`)
	require.NoError(t, os.WriteFile(path, initial, 0o644))

	rec := &reloadRecorder{}
	w, err := sqlschema.Watch(path, rec.record)
	require.NoError(t, err)
	defer w.Close()

	require.Equal(t, 1, rec.loads())
	require.NotNil(t, rec.last())
	_, err = rec.last().Table("users")
	assert.NoError(t, err)

	updated := []byte(`
tables:
  - name: users
    columns:
      - name: id
        raw_type: bigint
        primary_key: true
  - name: posts
    columns:
      - name: id
        raw_type: bigint
        primary_key: true
`)
	require.NoError(t, os.WriteFile(path, updated, 0o644))

	require.Eventually(t, func() bool {
		return rec.loads() >= 2
	}, 5*time.Second, 10*time.Millisecond)

	_, err = rec.last().Table("posts")
	assert.NoError(t, err)
}

// TestWatchReloadFailure verifies that a broken document surfaces through
// the callback without stopping the watcher.
func TestWatchReloadFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tables: []\n"), 0o644))

	rec := &reloadRecorder{}
	w, err := sqlschema.Watch(path, rec.record)
	require.NoError(t, err)
	defer w.Close()
	require.Equal(t, 1, rec.loads())

	require.NoError(t, os.WriteFile(path, []byte("tables: [broken\n"), 0o644))
	require.Eventually(t, func() bool {
		return rec.failures() >= 1
	}, 5*time.Second, 10*time.Millisecond)

	// A subsequent valid write recovers.
	require.NoError(t, os.WriteFile(path, []byte("tables: []\n"), 0o644))
	require.Eventually(t, func() bool {
		return rec.loads() >= 2
	}, 5*time.Second, 10*time.Millisecond)
}

// TestWatchMissingDocument verifies that the initial load of a missing
// file reports an error through the callback.
func TestWatchMissingDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nope.yaml")
	rec := &reloadRecorder{}
	w, err := sqlschema.Watch(path, rec.record)
	require.NoError(t, err)
	defer w.Close()

	require.Equal(t, 1, rec.failures())
	assert.True(t, sqlschema.IsDocumentError(rec.lastErr()))

	// Close is idempotent.
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
