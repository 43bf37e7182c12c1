package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/fluks/pdfsearch/internal/storage"
	"github.com/fluks/pdfsearch/internal/testutil"
)

func indexed(t *testing.T, db *DB, root string) {
	t.Helper()
	if _, err := db.Index(context.Background(), []string{root}, RecurseInfinitely); err != nil {
		t.Fatalf("Index: %v", err)
	}
}

func TestUpdate_RemovesMissingFiles(t *testing.T) {
	db := testDB(t)
	root := tempDir(t)
	writeTree(t, root)
	indexed(t, db, root)

	if err := os.Remove(filepath.Join(root, "sub", "b.pdf")); err != nil {
		t.Fatal(err)
	}
	report, err := db.Update(context.Background())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if diff := cmp.Diff(UpdateReport{Removed: 1, Unchanged: 2}, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	want := []string{filepath.Join(root, "a.pdf"), filepath.Join(root, "sub", "deeper", "c.pdf")}
	if diff := cmp.Diff(want, documentPaths(t, db)); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
	orphans := count(t, db, `SELECT count(*) FROM pages WHERE document_id NOT IN (SELECT id FROM documents)`)
	if orphans != 0 {
		t.Errorf("orphan pages = %d, want 0", orphans)
	}
}

func TestUpdate_RefreshesStaleDocuments(t *testing.T) {
	db := testDB(t)
	root := tempDir(t)
	path := filepath.Join(root, "a.pdf")
	testutil.WriteFile(t, path, testutil.FakeDoc("before"))
	indexed(t, db, root)

	testutil.WriteFile(t, path, testutil.FakeDoc("after one", "after two"))
	testutil.Touch(t, path, time.Now().Add(time.Hour))
	// Files added since the last index are not picked up by update.
	testutil.WriteFile(t, filepath.Join(root, "new.pdf"), testutil.FakeDoc("new"))

	report, err := db.Update(context.Background())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if diff := cmp.Diff(UpdateReport{Refreshed: 1}, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"after one", "after two"}, pageTexts(t, db, path)); diff != "" {
		t.Errorf("pages (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{path}, documentPaths(t, db)); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
}

func TestUpdate_OlderFileIsUnchanged(t *testing.T) {
	db := testDB(t)
	root := tempDir(t)
	path := filepath.Join(root, "a.pdf")
	testutil.WriteFile(t, path, testutil.FakeDoc("current"))
	indexed(t, db, root)

	testutil.WriteFile(t, path, testutil.FakeDoc("rolled back"))
	testutil.Touch(t, path, time.Now().Add(-24*time.Hour))

	report, err := db.Update(context.Background())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if diff := cmp.Diff(UpdateReport{Unchanged: 1}, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"current"}, pageTexts(t, db, path)); diff != "" {
		t.Errorf("pages (-want +got):\n%s", diff)
	}
}

func TestUpdate_StatFailureKeepsRow(t *testing.T) {
	root := tempDir(t)
	path := filepath.Join(root, "a.pdf")
	testutil.WriteFile(t, path, testutil.FakeDoc("kept"))
	faulty := &testutil.Faulty{Provider: storage.NewFS()}
	db := testDB(t, WithFilesystem(faulty))
	indexed(t, db, root)

	faulty.StatErrs = map[string]error{path: errors.New("i/o error")}
	report, err := db.Update(context.Background())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if diff := cmp.Diff(UpdateReport{Skipped: 1}, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{path}, documentPaths(t, db)); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}
}

func TestUpdate_BrokenRefreshKeepsPages(t *testing.T) {
	db := testDB(t)
	root := tempDir(t)
	path := filepath.Join(root, "a.pdf")
	testutil.WriteFile(t, path, testutil.FakeDoc("kept"))
	indexed(t, db, root)

	testutil.WriteFile(t, path, testutil.BrokenMarker)
	testutil.Touch(t, path, time.Now().Add(time.Hour))

	report, err := db.Update(context.Background())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if diff := cmp.Diff(UpdateReport{Skipped: 1}, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"kept"}, pageTexts(t, db, path)); diff != "" {
		t.Errorf("pages (-want +got):\n%s", diff)
	}
}

func TestUpdate_EmptyCatalog(t *testing.T) {
	db := testDB(t)
	report, err := db.Update(context.Background())
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if diff := cmp.Diff(UpdateReport{}, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate_Cancelled(t *testing.T) {
	db := testDB(t)
	root := tempDir(t)
	writeTree(t, root)
	indexed(t, db, root)
	for _, rel := range []string{"a.pdf", "sub/b.pdf"} {
		if err := os.Remove(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := db.Update(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if n := count(t, db, `SELECT count(*) FROM documents`); n != 3 {
		t.Errorf("documents = %d after cancelled update, want 3", n)
	}
}
