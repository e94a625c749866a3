package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kurihiro0119/github-activity-report/internal/classifier"
	"github.com/kurihiro0119/github-activity-report/internal/logging"
	"github.com/kurihiro0119/github-activity-report/internal/storage"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// historyStore implements storage.HistoryStore on a single JSON file
type historyStore struct {
	path string
	now  func() time.Time
	log  *logrus.Entry
}

// NewHistoryStore creates a ledger backed by the JSON file at path
func NewHistoryStore(path string) storage.HistoryStore {
	return &historyStore{
		path: path,
		now:  time.Now,
		log:  logging.Log.WithField("history", path),
	}
}

// Load reads the ledger, starting fresh when the file is missing or corrupt
func (s *historyStore) Load() (*storage.ContributorHistory, error) {
	fresh := &storage.ContributorHistory{LastUpdated: s.timestamp(), Contributors: []string{}}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Info("No existing contributor history, starting fresh")
		} else {
			s.log.Warnf("Could not read contributor history: %v", err)
		}
		return fresh, nil
	}

	var history storage.ContributorHistory
	if err := json.Unmarshal(data, &history); err != nil {
		s.log.Warnf("Contributor history corrupted, resetting: %v", err)
		return fresh, nil
	}
	if history.Contributors == nil {
		history.Contributors = []string{}
	}
	return &history, nil
}

// newHumans returns usernames that are neither bots nor in history, once each
func newHumans(history *storage.ContributorHistory, usernames []string) []string {
	seen := make(map[string]bool, len(usernames))
	var fresh []string
	for _, u := range usernames {
		if u == "" || seen[u] || classifier.IsBot(u) || history.Contains(u) {
			continue
		}
		seen[u] = true
		fresh = append(fresh, u)
	}
	return fresh
}

// NewContributors returns first-time contributors without writing the ledger
func (s *historyStore) NewContributors(usernames []string) ([]string, error) {
	history, err := s.Load()
	if err != nil {
		return nil, err
	}
	return newHumans(history, usernames), nil
}

// UpdateContributorHistory appends first-time contributors and persists the
// ledger when any were found
func (s *historyStore) UpdateContributorHistory(usernames []string) ([]string, error) {
	history, err := s.Load()
	if err != nil {
		return nil, err
	}

	fresh := newHumans(history, usernames)
	if len(fresh) == 0 {
		s.log.Info("No new contributors this period")
		return fresh, nil
	}

	history.Contributors = append(history.Contributors, fresh...)
	history.LastUpdated = s.timestamp()
	if err := s.save(history); err != nil {
		return nil, err
	}

	s.log.Infof("Added %d new contributors to history", len(fresh))
	return fresh, nil
}

// timestamp formats the current time the way the site reads lastUpdated
func (s *historyStore) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

func (s *historyStore) save(history *storage.ContributorHistory) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode contributor history: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write contributor history: %w", err)
	}
	return nil
}
