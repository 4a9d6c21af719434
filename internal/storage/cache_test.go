/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gocropper/internal/geom"
)

func openTestCache(t *testing.T, maxBytes int64) *Cache {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Open(ctx, filepath.Join(t.TempDir(), "cache", "previews.db"), maxBytes)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	// deterministic, strictly increasing access times
	base := time.Unix(1_700_000_000, 0)
	tick := 0
	c.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}
	return c
}

func key(binding string, w int) Key {
	return Key{Image: "abc", Binding: binding, Selection: geom.R(10, 10, 100, 50), W: w, H: w / 2}
}

func TestOpenRunsMigrations(t *testing.T) {
	c := openTestCache(t, 0)
	ctx := context.Background()
	v, err := c.SchemaVersion(ctx)
	if err != nil || v != schemaVersion {
		t.Fatalf("schema version = %d, %v; want %d", v, err, schemaVersion)
	}
	if c.MaxBytes() != DefaultMaxBytes {
		t.Fatalf("max bytes = %d, want default", c.MaxBytes())
	}
	if _, err := os.Stat(c.Path()); err != nil {
		t.Fatalf("database file missing: %v", err)
	}
	// reopening an up-to-date database is a no-op
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	c2, err := Open(ctx, c.Path(), 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c2.Close()
	if v, _ := c2.SchemaVersion(ctx); v != schemaVersion {
		t.Fatalf("schema after reopen = %d", v)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), "  ", 0); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestPutGetAndMiss(t *testing.T) {
	c := openTestCache(t, 0)
	ctx := context.Background()
	if b, err := c.Get(ctx, key("thumb", 100)); err != nil || b != nil {
		t.Fatalf("expected clean miss, got %v, %v", b, err)
	}
	blob := []byte("png-bytes")
	if err := c.Put(ctx, key("thumb", 100), blob); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := c.Get(ctx, key("thumb", 100))
	if err != nil || !bytes.Equal(got, blob) {
		t.Fatalf("get = %q, %v", got, err)
	}
	// a different selection is a different entry
	other := key("thumb", 100)
	other.Selection = geom.R(11, 10, 100, 50)
	if b, _ := c.Get(ctx, other); b != nil {
		t.Fatalf("selection must be part of the key")
	}
	// upsert replaces the bytes without adding a row
	if err := c.Put(ctx, key("thumb", 100), []byte("newer")); err != nil {
		t.Fatalf("put again: %v", err)
	}
	if n, _ := c.Count(ctx); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
	if total, _ := c.TotalBytes(ctx); total != 5 {
		t.Fatalf("total = %d, want 5", total)
	}
	if err := c.Put(ctx, key("thumb", 100), nil); err == nil {
		t.Fatalf("expected error for empty blob")
	}
}

func TestEvictionIsLeastRecentlyUsed(t *testing.T) {
	c := openTestCache(t, 100)
	ctx := context.Background()
	for _, w := range []int{100, 200} {
		if err := c.Put(ctx, key("p", w), make([]byte, 40)); err != nil {
			t.Fatalf("put %d: %v", w, err)
		}
	}
	// touch the older entry so the newer one becomes the victim
	if b, _ := c.Get(ctx, key("p", 100)); b == nil {
		t.Fatalf("expected hit for 100")
	}
	if err := c.Put(ctx, key("p", 300), make([]byte, 40)); err != nil {
		t.Fatalf("put 300: %v", err)
	}
	if total, _ := c.TotalBytes(ctx); total > 100 {
		t.Fatalf("expected eviction to <=100 bytes, got %d", total)
	}
	if b, _ := c.Get(ctx, key("p", 200)); b != nil {
		t.Fatalf("least recently used entry should be gone")
	}
	for _, w := range []int{100, 300} {
		if b, _ := c.Get(ctx, key("p", w)); b == nil {
			t.Fatalf("entry %d should survive", w)
		}
	}
}

func TestOversizedBlobIsNotStored(t *testing.T) {
	c := openTestCache(t, 10)
	ctx := context.Background()
	if err := c.Put(ctx, key("p", 100), make([]byte, 11)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if n, _ := c.Count(ctx); n != 0 {
		t.Fatalf("oversized blob stored")
	}
}

func TestGetOrCreate(t *testing.T) {
	c := openTestCache(t, 0)
	ctx := context.Background()
	calls := 0
	gen := func(context.Context) ([]byte, error) {
		calls++
		return []byte{1, 2, 3}, nil
	}
	for i := 0; i < 2; i++ {
		b, err := c.GetOrCreate(ctx, key("p", 100), gen)
		if err != nil || len(b) != 3 {
			t.Fatalf("GetOrCreate: %v, %v", b, err)
		}
	}
	if calls != 1 {
		t.Fatalf("generator ran %d times, want 1", calls)
	}
	if b, err := c.GetOrCreate(ctx, key("p", 999), nil); err != nil || b != nil {
		t.Fatalf("nil generator should miss quietly: %v, %v", b, err)
	}
}

func TestPurge(t *testing.T) {
	c := openTestCache(t, 0)
	ctx := context.Background()
	a := key("p", 100)
	b := key("p", 100)
	b.Image = "def"
	_ = c.Put(ctx, a, []byte("a"))
	_ = c.Put(ctx, b, []byte("b"))
	if n, err := c.Purge(ctx, "abc"); err != nil || n != 1 {
		t.Fatalf("purge image: %d, %v", n, err)
	}
	if n, err := c.Purge(ctx, ""); err != nil || n != 1 {
		t.Fatalf("purge all: %d, %v", n, err)
	}
}

func TestFingerprint(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.bin")
	if err := os.WriteFile(p, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	fp, err := Fingerprint(p)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if fp != want {
		t.Fatalf("got %s", fp)
	}
	if _, err := Fingerprint(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
