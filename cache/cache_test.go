package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/malika-ai/project-management-prototype/models"
)

func openTestCache(t *testing.T, version string, validity time.Duration) *SnapshotCache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), version, validity)
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Clients: []*models.Client{{ID: "c1", Name: "Acme", Status: "Onboarding"}},
		Tasks:   []*models.Task{{ID: "t1", Title: "Onboarding Form", ProjectID: "p1"}},
	}
}

func TestSaveAndLoad(t *testing.T) {
	c := openTestCache(t, "v2", time.Hour)
	now := time.UnixMilli(1_700_000_000_000)

	if err := c.Save(sampleSnapshot(), now); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	snap, err := c.Load(now.Add(time.Minute))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if snap == nil {
		t.Fatal("expected a snapshot")
	}
	if len(snap.Clients) != 1 || snap.Clients[0].ID != "c1" {
		t.Errorf("unexpected clients: %+v", snap.Clients)
	}
	if len(snap.Tasks) != 1 || snap.Tasks[0].Title != "Onboarding Form" {
		t.Errorf("unexpected tasks: %+v", snap.Tasks)
	}
}

func TestLoadDiscardsExpired(t *testing.T) {
	c := openTestCache(t, "v2", 10*time.Minute)
	now := time.UnixMilli(1_700_000_000_000)

	if err := c.Save(sampleSnapshot(), now); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	snap, err := c.Load(now.Add(11 * time.Minute))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if snap != nil {
		t.Error("expected expired snapshot to be discarded")
	}
}

func TestLoadDiscardsVersionMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")
	now := time.UnixMilli(1_700_000_000_000)

	old, err := Open(path, "v1", time.Hour)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := old.Save(sampleSnapshot(), now); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	old.Close()

	cur, err := Open(path, "v2", time.Hour)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer cur.Close()

	snap, err := cur.Load(now.Add(time.Minute))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if snap != nil {
		t.Error("expected version-mismatched snapshot to be discarded")
	}
}

func TestLoadEmptyCache(t *testing.T) {
	c := openTestCache(t, "v2", time.Hour)
	snap, err := c.Load(time.Now())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if snap != nil {
		t.Error("expected nil snapshot from empty cache")
	}
}

func TestSaveOverwritesPrevious(t *testing.T) {
	c := openTestCache(t, "v2", time.Hour)
	now := time.UnixMilli(1_700_000_000_000)

	if err := c.Save(sampleSnapshot(), now); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	second := sampleSnapshot()
	second.Clients[0].Name = "Updated"
	if err := c.Save(second, now.Add(time.Minute)); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	snap, err := c.Load(now.Add(2 * time.Minute))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if snap == nil || snap.Clients[0].Name != "Updated" {
		t.Errorf("expected overwritten snapshot, got %+v", snap)
	}
}
