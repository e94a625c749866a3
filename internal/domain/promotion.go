package domain

import "time"

// TapPromotion represents a package added to a Homebrew tap
type TapPromotion struct {
	PackageName string
	Description *string // nil when the package file could not be read
	MergedAt    time.Time
	PRNumber    int
	PRURL       string
}

// DescriptionOr returns the description or fallback when it is unknown
func (p TapPromotion) DescriptionOr(fallback string) string {
	if p.Description == nil || *p.Description == "" {
		return fallback
	}
	return *p.Description
}

// PullRequestFile is one file changed by a pull request
type PullRequestFile struct {
	Filename string
	Status   string // added, modified, removed, renamed
}

// PullRequestRef is a merged pull request summary
type PullRequestRef struct {
	Number   int
	Title    string
	URL      string
	MergedAt time.Time
}
