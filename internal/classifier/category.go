package classifier

import (
	"regexp"

	"github.com/kurihiro0119/github-activity-report/internal/domain"
)

// Category is a report section that work items are sorted into
type Category string

const (
	CategoryDesktop        Category = "Desktop"
	CategoryDevelopment    Category = "Development"
	CategoryEcosystem      Category = "Ecosystem"
	CategoryServices       Category = "System Services & Policies"
	CategoryHardware       Category = "Hardware"
	CategoryInfrastructure Category = "Infrastructure"
	CategoryBugFixes       Category = "Bug Fixes"
	CategoryEnhancements   Category = "Enhancements"
	CategoryDocumentation  Category = "Documentation"
	CategoryTechDebt       Category = "Tech Debt"
	CategoryAutomation     Category = "Automation"
	CategoryLocalization   Category = "Localization"
	CategoryOther          Category = "Other"
)

// Group separates focus-area categories from work-type categories
type Group int

const (
	GroupArea Group = iota
	GroupKind
)

// LabelCategory binds a category to the labels that place an item in it
type LabelCategory struct {
	Category Category
	Group    Group
	Labels   []string
}

// LabelCategories is ordered: area categories first, then kind categories
var LabelCategories = []LabelCategory{
	{CategoryDesktop, GroupArea, []string{"area/gnome", "area/aurora", "area/bling"}},
	{CategoryDevelopment, GroupArea, []string{"area/dx"}},
	{CategoryEcosystem, GroupArea, []string{"area/brew", "area/bluespeed", "area/flatpak"}},
	{CategoryServices, GroupArea, []string{"area/services", "area/policy"}},
	{CategoryHardware, GroupArea, []string{"area/hardware", "area/nvidia", "aarch64"}},
	{CategoryInfrastructure, GroupArea, []string{"area/iso", "area/upstream", "area/buildstream", "area/finpilot", "area/just", "area/testing"}},
	{CategoryBugFixes, GroupKind, []string{"kind/bug"}},
	{CategoryEnhancements, GroupKind, []string{"kind/enhancement"}},
	{CategoryDocumentation, GroupKind, []string{"kind/documentation"}},
	{CategoryTechDebt, GroupKind, []string{"kind/tech-debt", "kind/parity"}},
	{CategoryAutomation, GroupKind, []string{"kind/automation", "kind/github-action", "kind/renovate"}},
	{CategoryLocalization, GroupKind, []string{"kind/translation"}},
}

// TitleRule assigns a category when any of its patterns matches a title
type TitleRule struct {
	Category Category
	Patterns []*regexp.Regexp
}

func patterns(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+expr))
	}
	return compiled
}

// TitleRules are tried in order when no label matches; first match wins
var TitleRules = []TitleRule{
	{CategoryLocalization, patterns(`translation`, `translate`, `\bl10n\b`, `\bi18n\b`,
		`french|czech|german|spanish|italian|portuguese|russian|chinese|japanese`)},
	{CategoryDocumentation, patterns(`\bdocs?\b`, `documentation`, `readme`, `\bguide\b`)},
	{CategoryEcosystem, patterns(`flatpak`, `bazaar`, `flathub`, `homebrew`, `\bbrew\b`)},
	{CategoryDesktop, patterns(
		`\bgnome\b`, `gnomeos`, `dconf`,
		`\bkde\b`, `\bplasma\b`, `aurora`,
		`starship`, `terminal`, `\bshell\b`, `\bbash\b`, `\bzsh\b`, `prompt`, `\bbling\b`,
		`\bfonts?\b`, `\blogos?\b`,
	)},
	{CategoryHardware, patterns(`kernel`, `driver`, `firmware`, `nvidia`, `\bgpu\b`)},
	{CategoryInfrastructure, patterns(`\biso\b`, `upstream`, `\bbuild`, `buildstream`, `\bci\b`,
		`pipeline`, `\bjust\b`, `justfile`, `actions`, `chunkah`)},
	{CategoryDevelopment, patterns(`\bide\b`, `vscode`, `jetbrains`, `\bdx\b`, `docker`, `qemu`, `\bvm\b`)},
	{CategoryServices, patterns(`systemd`, `service`, `\bpolicy\b`, `polkit`, `selinux`)},
}

// RepositoryCategories is the last fallback before Other
var RepositoryCategories = map[string]Category{
	"projectbluefin/documentation":       CategoryDocumentation,
	"ublue-os/homebrew-tap":              CategoryEcosystem,
	"ublue-os/homebrew-experimental-tap": CategoryEcosystem,
}

// CategoriesInGroup returns the label categories of a group in order
func CategoriesInGroup(g Group) []LabelCategory {
	var out []LabelCategory
	for _, lc := range LabelCategories {
		if lc.Group == g {
			out = append(out, lc)
		}
	}
	return out
}

// CategoryForLabel returns the category of a label, or Other
func CategoryForLabel(label string) Category {
	for _, lc := range LabelCategories {
		for _, l := range lc.Labels {
			if l == label {
				return lc.Category
			}
		}
	}
	return CategoryOther
}

// CategoryFromTitle returns the first title rule matching title
func CategoryFromTitle(title string) (Category, bool) {
	if title == "" {
		return "", false
	}
	for _, rule := range TitleRules {
		for _, p := range rule.Patterns {
			if p.MatchString(title) {
				return rule.Category, true
			}
		}
	}
	return "", false
}

// CategoryFromRepository returns the category mapped to an owner/name repository
func CategoryFromRepository(repo string) (Category, bool) {
	c, ok := RepositoryCategories[repo]
	return c, ok
}

// CategoryForItem classifies an item by its labels, then its title, then
// its repository, defaulting to Other
func CategoryForItem(item domain.WorkItem) Category {
	for _, l := range item.Labels {
		if c := CategoryForLabel(l.Name); c != CategoryOther {
			return c
		}
	}
	if c, ok := CategoryFromTitle(item.Title); ok {
		return c
	}
	if c, ok := CategoryFromRepository(item.Repository); ok {
		return c
	}
	return CategoryOther
}

// InCategory reports whether an item belongs in a category section: it
// carries one of the category's labels, or classifies into it
func InCategory(item domain.WorkItem, lc LabelCategory) bool {
	for _, l := range lc.Labels {
		if item.HasLabel(l) {
			return true
		}
	}
	return CategoryForItem(item) == lc.Category
}
