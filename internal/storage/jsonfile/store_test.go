package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/kurihiro0119/github-activity-report/internal/storage"
)

func newTestStore(t *testing.T, path string) *historyStore {
	t.Helper()
	s := NewHistoryStore(path).(*historyStore)
	s.now = func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func readHistory(t *testing.T, path string) storage.ContributorHistory {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	var h storage.ContributorHistory
	if err := json.Unmarshal(data, &h); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	return h
}

func TestUpdateContributorHistory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "static", "data", "contributors-history.json")
	s := newTestStore(t, path)

	got, err := s.UpdateContributorHistory([]string{"alice", "dependabot[bot]", "bob", "alice"})
	if err != nil {
		t.Fatalf("UpdateContributorHistory() unexpected error: %v", err)
	}
	if want := []string{"alice", "bob"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("new contributors = %v, want %v", got, want)
	}

	h := readHistory(t, path)
	if !reflect.DeepEqual(h.Contributors, []string{"alice", "bob"}) {
		t.Fatalf("persisted contributors = %v", h.Contributors)
	}

	again, err := s.UpdateContributorHistory([]string{"alice", "bob"})
	if err != nil {
		t.Fatalf("second update unexpected error: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("second update returned %v, want none", again)
	}

	more, err := s.UpdateContributorHistory([]string{"carol", "alice"})
	if err != nil {
		t.Fatalf("third update unexpected error: %v", err)
	}
	if !reflect.DeepEqual(more, []string{"carol"}) {
		t.Fatalf("third update = %v", more)
	}
	if h := readHistory(t, path); !reflect.DeepEqual(h.Contributors, []string{"alice", "bob", "carol"}) {
		t.Fatalf("ledger not append-only: %v", h.Contributors)
	}
}

func TestUpdateWithoutNewContributorsDoesNotWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	s := newTestStore(t, path)

	got, err := s.UpdateContributorHistory([]string{"renovate[bot]"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want none", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("history file should not be created, stat err = %v", err)
	}
}

func TestCorruptHistoryStartsFresh(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newTestStore(t, path)

	got, err := s.UpdateContributorHistory([]string{"dave"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"dave"}) {
		t.Fatalf("got %v", got)
	}
	h := readHistory(t, path)
	if !reflect.DeepEqual(h.Contributors, []string{"dave"}) {
		t.Fatalf("contributors = %v", h.Contributors)
	}
	if h.LastUpdated != "2026-02-01T00:00:00.000Z" {
		t.Fatalf("lastUpdated = %s", h.LastUpdated)
	}
}

func TestNewContributorsIsReadOnly(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	seed := `{"lastUpdated":"2026-01-01T00:00:00Z","contributors":["alice"]}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newTestStore(t, path)

	got, err := s.NewContributors([]string{"alice", "erin", "somebot"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"erin"}) {
		t.Fatalf("NewContributors() = %v", got)
	}

	data, _ := os.ReadFile(path)
	if string(data) != seed {
		t.Fatalf("ledger modified: %s", data)
	}

	h, err := s.Load()
	if err != nil || !h.Contains("alice") {
		t.Fatalf("Load() = %+v, %v", h, err)
	}
}

func TestHistoryKeepsContributorsWithDateOnlyTimestamp(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	seed := `{"lastUpdated":"2026-01-31","contributors":["carol","erin"]}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newTestStore(t, path)

	got, err := s.UpdateContributorHistory([]string{"carol", "dave"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"dave"}) {
		t.Fatalf("new contributors = %v, want [dave]", got)
	}

	h := readHistory(t, path)
	if want := []string{"carol", "erin", "dave"}; !reflect.DeepEqual(h.Contributors, want) {
		t.Fatalf("contributors = %v, want %v", h.Contributors, want)
	}
	if h.LastUpdated != "2026-02-01T00:00:00.000Z" {
		t.Fatalf("lastUpdated = %s", h.LastUpdated)
	}
}
