package classifier

import "regexp"

// BotPatterns are tested in order; any match marks a username as a bot.
// The trailing "bot" rule is a heuristic and also matches humans whose
// login happens to end in "bot".
var BotPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^dependabot\[bot\]$`),
	regexp.MustCompile(`^renovate\[bot\]$`),
	regexp.MustCompile(`^github-actions\[bot\]$`),
	regexp.MustCompile(`^github-actions$`),
	regexp.MustCompile(`^copilot-swe-agent$`),
	regexp.MustCompile(`^ubot-\d+$`),
	regexp.MustCompile(`\[bot\]$`),
	regexp.MustCompile(`(?i)bot$`),
}

// IsBot reports whether username matches a known bot pattern
func IsBot(username string) bool {
	for _, p := range BotPatterns {
		if p.MatchString(username) {
			return true
		}
	}
	return false
}
