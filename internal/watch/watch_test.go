package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeRules(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func waitReload(t *testing.T, w *Watcher, timeout time.Duration) bool {
	t.Helper()
	select {
	case <-w.Reloads():
		return true
	case <-time.After(timeout):
		return false
	}
}

func TestWatcherSignalsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.tsv")
	writeRules(t, path, "1\tWHERE\tcategory\texists\t\t\t\t\n")

	w, err := New(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	writeRules(t, path, "1\tWHERE\tcategory\texists\t\t\t\t\n2\tCHECK\theight\texists\t\t\t\t\n")
	if !waitReload(t, w, 2*time.Second) {
		t.Fatal("no reload signal after rules file change")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.tsv")
	writeRules(t, path, "1\tWHERE\tcategory\texists\t\t\t\t\n")

	w, err := New(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	writeRules(t, filepath.Join(dir, "notes.txt"), "unrelated")
	if waitReload(t, w, 200*time.Millisecond) {
		t.Fatal("reload signal for an unrelated file")
	}
}

func TestWatcherCollapsesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.tsv")
	writeRules(t, path, "a\n")

	w, err := New(path, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	for i := 0; i < 5; i++ {
		writeRules(t, path, "a\nb\n")
	}
	if !waitReload(t, w, 2*time.Second) {
		t.Fatal("no reload signal after burst")
	}

	// The burst settles into at most one more queued signal.
	extra := 0
	for waitReload(t, w, 150*time.Millisecond) {
		extra++
	}
	if extra > 1 {
		t.Fatalf("burst produced %d extra reload signals, want at most 1", extra)
	}
}

func TestWatcherSurvivesRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.tsv")
	writeRules(t, path, "old\n")

	w, err := New(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	// Atomic replace, the way editors save.
	tmp := filepath.Join(dir, "rules.tsv.tmp")
	writeRules(t, tmp, "new\n")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if !waitReload(t, w, 2*time.Second) {
		t.Fatal("no reload signal after atomic replace")
	}
}
