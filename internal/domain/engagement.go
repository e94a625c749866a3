package domain

import "time"

// Comment is a single discussion or issue comment
type Comment struct {
	Author    string
	CreatedAt time.Time
}

// Engagement holds per-user comment counts for a report window
type Engagement struct {
	Discussions int
	Issues      int
	Total       int
}

// EngagementMap maps a username to its engagement counts
type EngagementMap map[string]*Engagement

// Voice is one ranked engagement-only participant
type Voice struct {
	Username   string
	Engagement Engagement
}

// TopVoices is the ranked engagement section of a report
type TopVoices struct {
	Voices           []Voice
	TotalDiscussions int
	TotalIssues      int
	Participants     int
}

// BotActivity groups bot-authored items by repository and bot
type BotActivity struct {
	Repo  string
	Bot   string
	Count int
	Items []WorkItem
}
