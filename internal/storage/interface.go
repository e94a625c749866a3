package storage

// ContributorHistory is the persisted ledger of every code contributor seen
// in earlier reports
type ContributorHistory struct {
	LastUpdated  string   `json:"lastUpdated"` // ISO-8601, kept as written
	Contributors []string `json:"contributors"`
}

// Contains reports whether username is already in the ledger
func (h *ContributorHistory) Contains(username string) bool {
	for _, c := range h.Contributors {
		if c == username {
			return true
		}
	}
	return false
}

// HistoryStore is the abstract interface for the contributor ledger
type HistoryStore interface {
	// Load returns the current ledger. A missing or unreadable ledger is
	// treated as empty.
	Load() (*ContributorHistory, error)

	// NewContributors returns the human usernames not yet in the ledger
	// without modifying it
	NewContributors(usernames []string) ([]string, error)

	// UpdateContributorHistory appends first-time contributors to the ledger
	// and returns them, in input order
	UpdateContributorHistory(usernames []string) ([]string, error)
}
