package classifier

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultLabelColor is used for labels without a configured color
const DefaultLabelColor = "808080"

// LabelColors maps label names to hex colors without the leading #
var LabelColors = map[string]string{
	"area/gnome":       "28A745",
	"area/aurora":      "1D76DB",
	"area/bling":       "F9C74F",
	"area/dx":          "17A2B8",
	"area/buildstream": "0066FF",
	"area/finpilot":    "7C3AED",
	"area/brew":        "E8590C",
	"area/just":        "E99695",
	"area/bluespeed":   "1D76DB",
	"area/services":    "4A90E2",
	"area/policy":      "5B8BC1",
	"area/iso":         "A0522D",
	"area/upstream":    "5CB85C",
	"area/flatpak":     "9333EA",
	"area/hardware":    "F59E0B",
	"area/nvidia":      "76B900",
	"area/testing":     "F59E0B",
	"aarch64":          "F59E0B",

	"kind/bug":           "E8590C",
	"kind/enhancement":   "17A2B8",
	"kind/documentation": "0066FF",
	"kind/tech-debt":     "D4A259",
	"kind/automation":    "5B8BC1",
	"kind/github-action": "2088FF",
	"kind/parity":        "9333EA",
	"kind/renovate":      "3B82F6",
	"kind/translation":   "8B5CF6",

	"good first issue": "7057FF",
	"help wanted":      "28A745",
	"wontfix":          "6C757D",
	"duplicate":        "6C757D",
	"invalid":          "E8590C",
	"question":         "D946EF",
}

// LabelColor returns the configured color of a label or the default gray
func LabelColor(label string) string {
	if c, ok := LabelColors[label]; ok {
		return c
	}
	return DefaultLabelColor
}

// shields.io treats "-" and "_" as separators and spaces; doubling escapes them
var badgeEscaper = strings.NewReplacer("-", "--", "_", "__", " ", "_")

// Badge returns a shields.io badge image in Markdown for a label
func Badge(label string) string {
	name := url.PathEscape(badgeEscaper.Replace(label))
	return fmt.Sprintf("![%s](https://img.shields.io/badge/%s-%s?style=flat-square)", label, name, LabelColor(label))
}

// Badges renders badges for labels separated by spaces
func Badges(labels []string) string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, Badge(l))
	}
	return strings.Join(out, " ")
}
