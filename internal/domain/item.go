package domain

import "time"

// ItemType is the discriminant of a WorkItem
type ItemType string

const (
	ItemTypeIssue       ItemType = "Issue"
	ItemTypePullRequest ItemType = "PullRequest"
	ItemTypeDraftIssue  ItemType = "DraftIssue"
)

// Label represents a GitHub label attached to an issue or pull request
type Label struct {
	Name  string
	Color string
	URL   string
}

// WorkItem represents a closed issue or merged pull request
type WorkItem struct {
	Type       ItemType
	Number     int
	Title      string
	URL        string
	Author     string
	Repository string // owner/name
	Labels     []Label
	ClosedAt   time.Time // merged time for pull requests
}

// DisplayType returns the short label used when rendering the item
func (w WorkItem) DisplayType() string {
	switch w.Type {
	case ItemTypePullRequest:
		return "PR"
	case ItemTypeIssue:
		return "Issue"
	case ItemTypeDraftIssue:
		return "Draft"
	default:
		return string(w.Type)
	}
}

// IsPullRequest reports whether the item is a pull request
func (w WorkItem) IsPullRequest() bool {
	return w.Type == ItemTypePullRequest
}

// LabelNames returns the names of the item's labels in order
func (w WorkItem) LabelNames() []string {
	names := make([]string, 0, len(w.Labels))
	for _, l := range w.Labels {
		names = append(names, l.Name)
	}
	return names
}

// HasLabel reports whether the item carries the given label
func (w WorkItem) HasLabel(name string) bool {
	for _, l := range w.Labels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// AuthorOrUnknown returns the author login, or "unknown" for ghost users
func (w WorkItem) AuthorOrUnknown() string {
	if w.Author == "" {
		return "unknown"
	}
	return w.Author
}

// FilterPullRequests returns only the pull requests from items
func FilterPullRequests(items []WorkItem) []WorkItem {
	var prs []WorkItem
	for _, item := range items {
		if item.IsPullRequest() {
			prs = append(prs, item)
		}
	}
	return prs
}

// BoardItem is an item on a GitHub Projects board with its single-select
// field values keyed by field name
type BoardItem struct {
	ID     string
	Item   WorkItem
	Fields map[string]string
}
