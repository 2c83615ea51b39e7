// Package query parses raw launcher input into a structured query: mode
// and kind filters, extension and time-window constraints, include and
// exclude term groups, and the leading ">" command sigil.
package query

import (
	"strings"

	"github.com/swiftfind/swiftfind/internal/model"
)

// Mode narrows a search to one result surface.
type Mode string

const (
	ModeNone      Mode = ""
	ModeApps      Mode = "apps"
	ModeFiles     Mode = "files"
	ModeFolders   Mode = "folders"
	ModeActions   Mode = "actions"
	ModeClipboard Mode = "clipboard"
)

// TimeWindow constrains modified/created filters.
type TimeWindow string

const (
	WindowNone  TimeWindow = ""
	WindowToday TimeWindow = "today"
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
)

// ParsedQuery is the structured form of one raw input line. IncludeGroups
// is a disjunction of conjunctions: an item matches when every normalized
// term of at least one group is a substring of its normalized title.
type ParsedQuery struct {
	Raw             string
	FreeText        string
	ModeOverride    Mode
	KindFilter      string
	ExtensionFilter string
	IncludeGroups   [][]string
	ExcludeTerms    []string
	ModifiedWithin  TimeWindow
	CreatedWithin   TimeWindow
	CommandMode     bool
}

// NormalizedFree returns the normalized form of the free-text portion.
func (p *ParsedQuery) NormalizedFree() string {
	return model.Normalize(p.FreeText)
}

// Parse turns raw input into a ParsedQuery. With dslEnabled false the
// whole input is free text: no operators, no prefixes, no command mode.
func Parse(raw string, dslEnabled bool) ParsedQuery {
	input := strings.TrimSpace(raw)
	p := ParsedQuery{Raw: input}
	if input == "" {
		return p
	}

	if !dslEnabled {
		p.FreeText = input
		return p
	}

	if strings.HasPrefix(input, ">") {
		p.CommandMode = true
		input = strings.TrimSpace(input[1:])
	}

	var (
		group     []string
		freeTerms []string
		negate    bool
	)
	flushGroup := func() {
		if len(group) > 0 {
			p.IncludeGroups = append(p.IncludeGroups, group)
			group = nil
		}
	}

	for _, tok := range tokenize(input) {
		switch tok {
		case "AND":
			continue
		case "OR":
			flushGroup()
			continue
		case "NOT":
			negate = true
			continue
		}

		if handlePrefixed(&p, tok) {
			negate = false
			continue
		}

		term := tok
		excluded := negate
		negate = false
		if !excluded && strings.HasPrefix(term, "-") && len(term) > 1 {
			excluded = true
			term = term[1:]
		}

		norm := model.Normalize(term)
		if norm == "" {
			continue
		}
		if excluded {
			p.ExcludeTerms = append(p.ExcludeTerms, norm)
			continue
		}
		group = append(group, norm)
		freeTerms = append(freeTerms, term)
	}
	flushGroup()

	p.FreeText = strings.Join(freeTerms, " ")
	if p.CommandMode {
		// The command sigil pins the mode regardless of mode tokens.
		p.ModeOverride = ModeActions
	}
	return p
}

// handlePrefixed consumes mode:/kind:/ext:/extension:/modified:/created:
// tokens and @mode shorthand. A recognized prefix consumes the token even
// when its value does not parse; only plain terms return false.
func handlePrefixed(p *ParsedQuery, tok string) bool {
	if strings.HasPrefix(tok, "@") {
		if m, ok := parseMode(tok[1:]); ok {
			p.ModeOverride = m
			return true
		}
		return false
	}

	prefix, rest, ok := splitPrefix(tok)
	if !ok {
		return false
	}
	switch prefix {
	case "mode":
		if m, parsed := parseMode(rest); parsed {
			p.ModeOverride = m
		}
	case "kind":
		if v := strings.ToLower(strings.TrimSpace(rest)); v != "" {
			p.KindFilter = v
		}
	case "ext", "extension":
		if v := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(rest), ".")); v != "" {
			p.ExtensionFilter = v
		}
	case "modified":
		if w, parsed := parseWindow(rest); parsed {
			p.ModifiedWithin = w
		}
	case "created":
		if w, parsed := parseWindow(rest); parsed {
			p.CreatedWithin = w
		}
	default:
		return false
	}
	return true
}

func splitPrefix(tok string) (prefix, rest string, ok bool) {
	i := strings.IndexByte(tok, ':')
	if i <= 0 {
		return "", "", false
	}
	return strings.ToLower(tok[:i]), tok[i+1:], true
}

func parseMode(s string) (Mode, bool) {
	switch strings.ToLower(s) {
	case "apps", "app":
		return ModeApps, true
	case "files", "file":
		return ModeFiles, true
	case "folders", "folder":
		return ModeFolders, true
	case "actions", "action":
		return ModeActions, true
	case "clipboard", "clip":
		return ModeClipboard, true
	}
	return ModeNone, false
}

func parseWindow(s string) (TimeWindow, bool) {
	switch strings.ToLower(s) {
	case "today":
		return WindowToday, true
	case "week", "last_week":
		return WindowWeek, true
	case "month", "last_month":
		return WindowMonth, true
	}
	return WindowNone, false
}

// tokenize splits on whitespace, honoring "…" quoted spans as single
// tokens with the quotes removed.
func tokenize(s string) []string {
	var (
		out      []string
		cur      strings.Builder
		inQuotes bool
		started  bool
	)
	flush := func() {
		if started {
			out = append(out, cur.String())
			cur.Reset()
			started = false
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			started = true
		case !inQuotes && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	flush()
	return out
}
