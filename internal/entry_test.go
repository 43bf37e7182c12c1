package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/fluks/pdfsearch/internal/apperr"
	"github.com/fluks/pdfsearch/internal/models"
	"github.com/fluks/pdfsearch/internal/testutil"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "app.db")
	cfg.App.LogFormat = LogFormatText
	return cfg
}

func TestRun_IndexThenQueryJSON(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	dir := t.TempDir()
	testutil.WritePDF(t, filepath.Join(dir, "a.pdf"), "cover", "chapter with a needle inside")

	var stdout, stderr bytes.Buffer
	err := Run(ctx, WithConfig(cfg), WithOutput(&stdout, &stderr),
		WithAction(ActionIndex), WithDirectories(dir))
	if err != nil {
		t.Fatalf("index: %v\n%s", err, stderr.String())
	}

	cfg.Search.Verbose = true
	stdout.Reset()
	err = Run(ctx, WithConfig(cfg), WithOutput(&stdout, &stderr),
		WithAction(ActionQuery), WithQuery("needle"), WithJSON(true))
	if err != nil {
		t.Fatalf("query: %v", err)
	}

	var got models.QueryResult
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", stdout.String(), err)
	}
	canonical, _ := filepath.EvalSymlinks(filepath.Join(dir, "a.pdf"))
	want := models.QueryResult{Path: canonical, Page: 2, Pages: 2, Snippet: got.Snippet}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result (-want +got):\n%s", diff)
	}
	if !strings.Contains(got.Snippet, "needle") {
		t.Errorf("snippet %q does not contain the query", got.Snippet)
	}
}

func TestRun_IndexUsesConfiguredDirectories(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	testutil.WritePDF(t, filepath.Join(dir, "top.pdf"), "top")
	testutil.WritePDF(t, filepath.Join(dir, "sub", "deep.pdf"), "deep")
	cfg.Index.Directories = []string{dir}
	cfg.Index.Recursion = 0

	var stdout, stderr bytes.Buffer
	if err := Run(context.Background(), WithConfig(cfg), WithOutput(&stdout, &stderr), WithAction(ActionIndex)); err != nil {
		t.Fatalf("index: %v", err)
	}
	if err := Run(context.Background(), WithConfig(cfg), WithOutput(&stdout, &stderr), WithAction(ActionStats)); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "documents: 1\n") {
		t.Errorf("stats = %q, want one document", stdout.String())
	}
}

func TestRun_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"no action", nil},
		{"unknown action", []Option{WithAction("reindex")}},
		{"empty query", []Option{WithAction(ActionQuery)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			opts := append([]Option{WithConfig(testConfig(t)), WithOutput(&stdout, &stderr)}, tt.opts...)
			err := Run(context.Background(), opts...)
			if !errors.Is(err, apperr.ErrInvalidArgument) {
				t.Fatalf("error = %v, want ErrInvalidArgument", err)
			}
			if !IsUsageError(err) {
				t.Error("IsUsageError = false")
			}
		})
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background(), WithAction(ActionStats)); err == nil {
		t.Fatal("Run without config should fail")
	}
}

func TestRun_CancelledContext(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	testutil.WritePDF(t, filepath.Join(dir, "a.pdf"), "text")

	ctx, cancel := context.WithCancel(context.Background())
	var stdout, stderr bytes.Buffer
	if err := Run(ctx, WithConfig(cfg), WithOutput(&stdout, &stderr), WithAction(ActionStats)); err != nil {
		t.Fatalf("stats: %v", err)
	}
	cancel()
	err := Run(ctx, WithConfig(cfg), WithOutput(&stdout, &stderr), WithAction(ActionIndex), WithDirectories(dir))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, ApplicationConfig{LogLevel: slog.LevelInfo, LogFormat: LogFormatAuto}).Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("auto format on a buffer should be JSON, got %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, ApplicationConfig{LogLevel: slog.LevelInfo, LogFormat: LogFormatText}).Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text format output = %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, ApplicationConfig{LogLevel: slog.LevelWarn, LogFormat: LogFormatJSON}).Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}
