package lexicons

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()

	store := MustLoad()
	if err := store.MergeDir(dir); err != nil {
		t.Fatalf("MergeDir() error: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	config := DefaultWatcherConfig(dir)
	config.DebounceInterval = 50 * time.Millisecond
	config.OnReload = func() {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	}

	watcher, err := NewWatcher(store, config)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer watcher.Stop()

	override := `name: toxicity
terms:
  en: [blockhead]
`
	if err := os.WriteFile(filepath.Join(dir, "toxicity.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("Failed to write override: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not reload after a pack change")
	}

	en := store.Terms(Toxicity, "en")
	if len(en) != 1 || en[0] != "blockhead" {
		t.Errorf("English terms = %v, want [blockhead]", en)
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	store := MustLoad()
	if err := store.MergeDir(dir); err != nil {
		t.Fatalf("MergeDir() error: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	config := DefaultWatcherConfig(dir)
	config.DebounceInterval = 50 * time.Millisecond
	config.OnReload = func() {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	}

	watcher, err := NewWatcher(store, config)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer watcher.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	select {
	case <-reloaded:
		t.Error("watcher reloaded for a non-YAML file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherReportsBadPack(t *testing.T) {
	dir := t.TempDir()

	store := MustLoad()
	if err := store.MergeDir(dir); err != nil {
		t.Fatalf("MergeDir() error: %v", err)
	}

	errCh := make(chan error, 1)
	config := DefaultWatcherConfig(dir)
	config.DebounceInterval = 50 * time.Millisecond
	config.OnError = func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}

	watcher, err := NewWatcher(store, config)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer watcher.Stop()

	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("{{{"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the broken pack")
	}

	// The active set keeps serving the last good state.
	if en := store.Terms(Toxicity, "en"); len(en) == 0 {
		t.Error("active lexicons were lost after a failed reload")
	}
}

func TestWatcherStopAfterFailedStart(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	watcher, err := NewWatcher(MustLoad(), DefaultWatcherConfig(missing))
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	if err := watcher.Start(context.Background()); err == nil {
		t.Fatal("Start() on a missing directory should fail")
	}

	// Stop after a failed Start must return, not wait on a loop that
	// never launched.
	done := make(chan error, 1)
	go func() { done <- watcher.Stop() }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Stop() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() blocked after a failed Start()")
	}
}

func TestWatcherDoubleStart(t *testing.T) {
	dir := t.TempDir()

	watcher, err := NewWatcher(MustLoad(), DefaultWatcherConfig(dir))
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	store := MustLoad()

	watcher, err := NewWatcher(store, DefaultWatcherConfig(dir))
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := watcher.Stop(); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
	if err := watcher.Stop(); err != nil {
		t.Errorf("second Stop() should be a no-op, got %v", err)
	}
}
