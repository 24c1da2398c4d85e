package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBodyCache_RoundTrip(t *testing.T) {
	c := &BodyCache{Dir: t.TempDir()}
	ctx := context.Background()
	url := "https://example.com/article"

	if err := c.Save(ctx, url, "text/html", `"etag1"`, "Mon, 01 Jan 2024 00:00:00 GMT", []byte("<html>body</html>")); err != nil {
		t.Fatalf("save: %v", err)
	}
	meta, err := c.LoadMeta(ctx, url)
	if err != nil {
		t.Fatalf("load meta: %v", err)
	}
	if meta.ETag != `"etag1"` || meta.ContentType != "text/html" || meta.URL != url {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	body, err := c.LoadBody(ctx, url)
	if err != nil {
		t.Fatalf("load body: %v", err)
	}
	if string(body) != "<html>body</html>" {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestBodyCache_MissingEntry(t *testing.T) {
	c := &BodyCache{Dir: t.TempDir()}
	if _, err := c.LoadMeta(context.Background(), "https://example.com/none"); err == nil {
		t.Fatal("expected error for missing meta")
	}
}

func TestKey_DistinctURLs(t *testing.T) {
	if Key("https://a.example.com/x") == Key("https://b.example.com/x") {
		t.Fatal("distinct URLs should have distinct keys")
	}
	if Key("https://a.example.com/x") != Key("https://a.example.com/x") {
		t.Fatal("key must be deterministic")
	}
}

func TestReplyCache_RoundTrip(t *testing.T) {
	c := &ReplyCache{Dir: t.TempDir()}
	ctx := context.Background()
	key := ReplyKey("test-model", "prompt text")

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Save(ctx, key, []byte(`{"cards":[]}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(b) != `{"cards":[]}` {
		t.Fatalf("unexpected payload: %q", b)
	}
}

func TestPurgeByAge_RemovesExpired(t *testing.T) {
	dir := t.TempDir()
	c := &BodyCache{Dir: dir}
	ctx := context.Background()
	if err := c.Save(ctx, "https://example.com/old", "text/html", "", "", []byte("old")); err != nil {
		t.Fatal(err)
	}
	// Age the entry by rewriting its meta with an old SavedAt.
	key := Key("https://example.com/old")
	old := `{"url":"https://example.com/old","content_type":"text/html","etag":"","last_modified":"","saved_at":"2000-01-01T00:00:00Z"}`
	if err := os.WriteFile(filepath.Join(dir, key+".meta.json"), []byte(old), 0o644); err != nil {
		t.Fatal(err)
	}

	removed, err := PurgeByAge(dir, time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, key+".body")); !os.IsNotExist(err) {
		t.Fatal("expected body file removed")
	}
}

func TestClearDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "junk"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("dir should exist after clear: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, found %d entries", len(entries))
	}
}
