package classifier

// Highlight is the card effect given to a distinguished contributor
type Highlight string

const (
	HighlightNone    Highlight = ""
	HighlightSilver  Highlight = "silver"
	HighlightDiamond Highlight = "diamond"
)

// SpecialGuests are recognized guest collaborators
var SpecialGuests = map[string]bool{
	"kolunmi":     true,
	"alatiera":    true,
	"madonuko":    true,
	"xe":          true,
	"sramkrishna": true,
	"mairin":      true,
}

// MaintainersEmeritus are former maintainers
var MaintainersEmeritus = map[string]bool{
	"adamisrael": true,
	"bsherman":   true,
	"bketelsen":  true,
	"rothgar":    true,
	"m2Giles":    true,
	"marcoceppi": true,
	"KyleGospo":  true,
}

// DistinguishedHighlight returns the highlight for username. Lookup is
// case-sensitive and diamond wins over silver.
func DistinguishedHighlight(username string) Highlight {
	if MaintainersEmeritus[username] {
		return HighlightDiamond
	}
	if SpecialGuests[username] {
		return HighlightSilver
	}
	return HighlightNone
}
