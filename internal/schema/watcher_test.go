package schema_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/tagforge/internal/schema"
)

const initialDoc = `
tags:
  B: {}
plugins: {}
`

const updatedDoc = `
tags:
  B: {}
  I: {}
plugins: {}
`

func TestWatcherSwapsSchemaOnFileRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(initialDoc), 0o644))

	swapped := make(chan *schema.Schema, 1)
	w := schema.NewWatcher(path, func(s *schema.Schema) {
		swapped <- s
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initial, err := w.Start(ctx)
	require.NoError(t, err)
	require.Contains(t, initial.Tags, "B")
	require.NotContains(t, initial.Tags, "I")

	require.NoError(t, os.WriteFile(path, []byte(updatedDoc), 0o644))

	select {
	case s := <-swapped:
		require.Contains(t, s.Tags, "I")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the watcher to swap in the rewritten schema")
	}

	cancel()
	w.Stop()
}

func TestWatcherSurvivesAtomicRenameSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(initialDoc), 0o644))

	swapped := make(chan *schema.Schema, 1)
	w := schema.NewWatcher(path, func(s *schema.Schema) {
		swapped <- s
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := w.Start(ctx)
	require.NoError(t, err)

	tmp := filepath.Join(dir, "schema.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(updatedDoc), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case s := <-swapped:
		require.Contains(t, s.Tags, "I")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the watcher to notice an atomic rename-over-path save")
	}

	cancel()
	w.Stop()
}
