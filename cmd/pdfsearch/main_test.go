package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fluks/pdfsearch/internal"
	"github.com/fluks/pdfsearch/internal/apperr"
	"github.com/fluks/pdfsearch/internal/testutil"
)

// runCLI runs the command line with args and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &stdout
	cmd.ErrWriter = &stderr
	err := cmd.Run(context.Background(), append([]string{"pdfsearch"}, args...))
	return stdout.String(), err
}

func TestIndexAndQuery(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(t.TempDir(), "cli.db")
	testutil.WritePDF(t, filepath.Join(dir, "paper.pdf"), "introduction", "the needle is here", "conclusion")

	if _, err := runCLI(t, "-d", db, "--log-format", "text", "index", dir); err != nil {
		t.Fatalf("index: %v", err)
	}

	out, err := runCLI(t, "-d", db, "query", "-v", "needle")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !strings.Contains(out, "paper.pdf:2/3: the needle is here") {
		t.Errorf("query output = %q", out)
	}

	out, err = runCLI(t, "-d", db, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "documents: 1\npages: 3\n") {
		t.Errorf("stats output = %q", out)
	}

	if err := os.Remove(filepath.Join(dir, "paper.pdf")); err != nil {
		t.Fatal(err)
	}
	// index without directories falls back to update.
	if _, err := runCLI(t, "-d", db, "index"); err != nil {
		t.Fatalf("index without dirs: %v", err)
	}
	out, err = runCLI(t, "-d", db, "query", "needle")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if out != "" {
		t.Errorf("query after removal printed %q, want nothing", out)
	}

	if _, err := runCLI(t, "-d", db, "vacuum"); err != nil {
		t.Fatalf("vacuum: %v", err)
	}
}

func TestLegacyConfigFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WritePDF(t, filepath.Join(dir, "a.pdf"), "alpha needle")
	testutil.WritePDF(t, filepath.Join(dir, "b.pdf"), "beta needle")
	conf := filepath.Join(t.TempDir(), "pdfsearch.conf")
	content := "database = " + filepath.Join(t.TempDir(), "legacy.db") + "\n" +
		"directories = " + dir + "\n" +
		"matches = 1\n"
	if err := os.WriteFile(conf, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, "-c", conf, "index"); err != nil {
		t.Fatalf("index: %v", err)
	}
	out, err := runCLI(t, "-c", conf, "--json", "query", "needle")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if lines := strings.Count(out, "\n"); lines != 1 {
		t.Errorf("got %d result lines, want 1: %q", lines, out)
	}
	if !strings.HasPrefix(out, `{"path":`) {
		t.Errorf("output is not JSON: %q", out)
	}
}

func TestQueryRejectsBadInput(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")

	_, err := runCLI(t, "-d", db, "query")
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("empty query error = %v, want ErrInvalidArgument", err)
	}
	if !internal.IsUsageError(err) {
		t.Errorf("empty query is not a usage error")
	}

	if _, err := runCLI(t, "-d", db, "query", "-m", "-3", "x"); err == nil {
		t.Error("negative matches accepted")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "pdfsearch.yaml")

	out, err := runCLI(t, "config", "init", path)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("printed %q, want %q", out, path)
	}

	cfg, err := internal.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SQLite.Path != internal.NewDefaultConfig().SQLite.Path {
		t.Errorf("sqlite path = %q", cfg.SQLite.Path)
	}

	if _, err := runCLI(t, "config", "init", path); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("second init error = %v, want ErrAlreadyExists", err)
	}
}
