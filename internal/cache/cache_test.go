package cache

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestKeyIsStableAndPrefixed(t *testing.T) {
	a := Key("https://example.com/page")
	b := Key("https://example.com/page")
	c := Key("https://example.com/other")

	if a != b {
		t.Error("same input must produce the same key")
	}
	if a == c {
		t.Error("different inputs must produce different keys")
	}
	if !strings.HasPrefix(a, "deepscout:v1:") {
		t.Errorf("key missing version prefix: %s", a)
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("unexpected hit for missing key")
	}

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, found := c.Get("k")
	if !found || !bytes.Equal(val, []byte("v")) {
		t.Errorf("Get = %q, %v", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("key should be gone after delete")
	}
}

func TestDiskCacheExpiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("fresh", []byte("data"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if val, found := c.Get("fresh"); !found || string(val) != "data" {
		t.Errorf("Get = %q, %v", val, found)
	}

	if err := c.Set("stale", []byte("old"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found := c.Get("stale"); found {
		t.Error("expired entry should miss")
	}
}

func TestLayeredCachePromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayeredCache(time.Minute, dir, time.Hour)

	// Seed only the disk layer, simulating a value from a previous run
	disk := NewDiskCache(dir, time.Hour)
	if err := disk.Set("k", []byte("persisted"), time.Hour); err != nil {
		t.Fatalf("seed disk: %v", err)
	}

	val, found := layered.Get("k")
	if !found || string(val) != "persisted" {
		t.Fatalf("Get = %q, %v", val, found)
	}

	// A second read must be served by the memory layer
	if val, found := layered.memory.Get("k"); !found || string(val) != "persisted" {
		t.Errorf("value was not promoted to memory: %q, %v", val, found)
	}
}
