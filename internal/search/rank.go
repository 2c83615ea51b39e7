// Package search ranks catalog items against a parsed query. Scoring is
// a pure function of the items, the query, the filter, and the supplied
// clock, so repeated calls produce identical output.
package search

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/swiftfind/swiftfind/internal/model"
	"github.com/swiftfind/swiftfind/internal/query"
)

const (
	scoreExact     = 30_000
	scorePrefix    = 24_000
	scoreSubstring = 18_000
	scoreFuzzy     = 12_000

	// Matching at a word boundary should beat a compact embedded
	// substring; a query hitting word initials should beat a fuzzy
	// subsequence scattered elsewhere.
	wordStartBonus   = 350
	wholeWordBonus   = 350
	acronymHitBonus  = 120
	searchTextMalus  = 1_500
	sourceAppBonus   = 700
	sourceLocalBonus = 420
)

// Filter narrows and gates candidates before scoring.
type Filter struct {
	Mode            query.Mode
	KindFilter      string
	ExtensionFilter string
	IncludeFiles    bool
	IncludeFolders  bool
	IncludeGroups   [][]string
	ExcludeTerms    []string
	ModifiedWithin  query.TimeWindow
	CreatedWithin   query.TimeWindow
}

// DefaultFilter returns the filter used for bare free-text queries.
func DefaultFilter() Filter {
	return Filter{IncludeFiles: true, IncludeFolders: true}
}

func (f *Filter) isDefault() bool {
	return f.Mode == query.ModeNone &&
		f.KindFilter == "" &&
		f.ExtensionFilter == "" &&
		f.IncludeFiles && f.IncludeFolders &&
		len(f.IncludeGroups) == 0 &&
		len(f.ExcludeTerms) == 0 &&
		f.ModifiedWithin == query.WindowNone &&
		f.CreatedWithin == query.WindowNone
}

// FromQuery lifts the DSL fields of p onto the config-supplied base gates.
func FromQuery(p *query.ParsedQuery, includeFiles, includeFolders bool) Filter {
	return Filter{
		Mode:            p.ModeOverride,
		KindFilter:      p.KindFilter,
		ExtensionFilter: p.ExtensionFilter,
		IncludeFiles:    includeFiles,
		IncludeFolders:  includeFolders,
		IncludeGroups:   p.IncludeGroups,
		ExcludeTerms:    p.ExcludeTerms,
		ModifiedWithin:  p.ModifiedWithin,
		CreatedWithin:   p.CreatedWithin,
	}
}

// Rank scores items against queryText (free text, any casing) under f and
// returns up to limit items in descending score order. nowEpochSecs feeds
// the recency bonus; tests pass a fixed clock.
func Rank(items []model.SearchItem, queryText string, limit int, f Filter, nowEpochSecs int64) []model.SearchItem {
	if limit <= 0 || len(items) == 0 {
		return nil
	}
	normalized := model.Normalize(queryText)
	if normalized == "" && f.isDefault() {
		return nil
	}

	scored := make([]scoredItem, 0, len(items))
	for i := range items {
		it := &items[i]
		score, ok := scoreItem(it, normalized, nowEpochSecs, &f)
		if !ok {
			continue
		}
		scored = append(scored, scoredItem{
			item:       it,
			score:      score,
			sourceRank: sourceRank(it),
			titleLen:   len(it.NormalizedTitle()),
		})
	}

	if len(scored) > limit {
		selectTop(scored, limit)
		scored = scored[:limit]
	}
	sort.Slice(scored, func(i, j int) bool { return scoredLess(&scored[i], &scored[j]) })

	out := make([]model.SearchItem, len(scored))
	for i, s := range scored {
		out[i] = *s.item
	}
	return out
}

type scoredItem struct {
	item       *model.SearchItem
	score      int64
	sourceRank int
	titleLen   int
}

// scoredLess is the total order: score desc, source rank asc, normalized
// title length asc, normalized title lex, id lex.
func scoredLess(a, b *scoredItem) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.sourceRank != b.sourceRank {
		return a.sourceRank < b.sourceRank
	}
	if a.titleLen != b.titleLen {
		return a.titleLen < b.titleLen
	}
	if at, bt := a.item.NormalizedTitle(), b.item.NormalizedTitle(); at != bt {
		return at < bt
	}
	return a.item.ID < b.item.ID
}

// selectTop partitions scored so the best limit entries occupy the front,
// in arbitrary order (quickselect on scoredLess).
func selectTop(scored []scoredItem, limit int) {
	lo, hi := 0, len(scored)-1
	for lo < hi {
		pivot := scored[(lo+hi)/2]
		i, j := lo, hi
		for i <= j {
			for scoredLess(&scored[i], &pivot) {
				i++
			}
			for scoredLess(&pivot, &scored[j]) {
				j--
			}
			if i <= j {
				scored[i], scored[j] = scored[j], scored[i]
				i++
				j--
			}
		}
		if limit <= j {
			hi = j
		} else if limit >= i {
			lo = i
		} else {
			return
		}
	}
}

func scoreItem(it *model.SearchItem, normalizedQuery string, nowEpochSecs int64, f *Filter) (int64, bool) {
	if !matchesMode(it, f.Mode) {
		return 0, false
	}
	if !f.IncludeFiles && strings.EqualFold(it.Kind, model.KindFile) {
		return 0, false
	}
	if !f.IncludeFolders && strings.EqualFold(it.Kind, model.KindFolder) {
		return 0, false
	}
	if f.KindFilter != "" && !matchesKindFilter(it, f.KindFilter) {
		return 0, false
	}
	if f.ExtensionFilter != "" && !matchesExtension(it, f.ExtensionFilter) {
		return 0, false
	}
	if !matchesTermFilters(it, f) {
		return 0, false
	}
	if !matchesTimeFilters(it, f, nowEpochSecs) {
		return 0, false
	}

	var textScore int64
	if normalizedQuery != "" {
		ts, ok := scoreItemText(it, normalizedQuery)
		if !ok {
			// An OR query's free text is the conjunction of every group;
			// an item matching a single group still deserves a score.
			ts, ok = bestGroupScore(it, f.IncludeGroups)
		}
		if !ok {
			return 0, false
		}
		textScore = ts
	}

	return textScore +
		sourceBonus(it) +
		recencyBonus(it.LastAccessedEpochSecs, nowEpochSecs) +
		frequencyBonus(it.UseCount), true
}

// scoreItemText scores q against the title, falling back to the wider
// search text with a flat malus.
func scoreItemText(it *model.SearchItem, q string) (int64, bool) {
	if ts, ok := scoreText(it.NormalizedTitle(), q); ok {
		return ts, true
	}
	if wide := it.NormalizedSearchText(); wide != it.NormalizedTitle() {
		if ts, ok := scoreText(wide, q); ok {
			return ts - searchTextMalus, true
		}
	}
	return 0, false
}

func bestGroupScore(it *model.SearchItem, groups [][]string) (int64, bool) {
	if len(groups) < 2 {
		return 0, false
	}
	var best int64
	found := false
	for _, group := range groups {
		if ts, ok := scoreItemText(it, strings.Join(group, " ")); ok {
			if !found || ts > best {
				best = ts
			}
			found = true
		}
	}
	return best, found
}

func scoreText(normalizedTitle, q string) (int64, bool) {
	if normalizedTitle == "" || q == "" {
		return 0, false
	}
	lengthPenalty := abs64(int64(len(normalizedTitle)) - int64(len(q)))
	compactBonus := int64(len(q)) * 45

	if normalizedTitle == q {
		return scoreExact + compactBonus - lengthPenalty, true
	}
	if strings.HasPrefix(normalizedTitle, q) {
		return scorePrefix + compactBonus - lengthPenalty, true
	}
	if p := strings.Index(normalizedTitle, q); p >= 0 {
		score := scoreSubstring + compactBonus - int64(p)*3 - lengthPenalty
		if p == 0 || normalizedTitle[p-1] == ' ' {
			score += wordStartBonus
			if end := p + len(q); end == len(normalizedTitle) || normalizedTitle[end] == ' ' {
				score += wholeWordBonus
			}
		}
		return score, true
	}

	startPenalty, gapPenalty, wordHits, ok := subsequencePenalties(normalizedTitle, q)
	if !ok {
		return 0, false
	}
	return scoreFuzzy + compactBonus - gapPenalty*8 - startPenalty - lengthPenalty +
		int64(wordHits)*acronymHitBonus, true
}

// subsequencePenalties matches q as an in-order subsequence of haystack.
// It returns the index of the first match, the sum of gaps between
// consecutive matches, and the count of matches landing on word starts.
func subsequencePenalties(haystack, q string) (start, gap int64, wordHits int, ok bool) {
	hay := []rune(haystack)
	next := 0
	prev := -1
	first := -1
	for _, qr := range q {
		pos := -1
		for i := next; i < len(hay); i++ {
			if hay[i] == qr {
				pos = i
				break
			}
		}
		if pos < 0 {
			return 0, 0, 0, false
		}
		if first < 0 {
			first = pos
		}
		if prev >= 0 && pos > prev+1 {
			gap += int64(pos - prev - 1)
		}
		if pos == 0 || hay[pos-1] == ' ' {
			wordHits++
		}
		prev = pos
		next = pos + 1
	}
	if first < 0 {
		first = 0
	}
	return int64(first), gap, wordHits, true
}

func matchesMode(it *model.SearchItem, mode query.Mode) bool {
	switch mode {
	case query.ModeNone:
		return true
	case query.ModeApps:
		return strings.EqualFold(it.Kind, model.KindApp)
	case query.ModeFiles:
		return strings.EqualFold(it.Kind, model.KindFile) || strings.EqualFold(it.Kind, model.KindFolder)
	case query.ModeFolders:
		return strings.EqualFold(it.Kind, model.KindFolder)
	case query.ModeActions:
		return strings.EqualFold(it.Kind, model.KindAction)
	case query.ModeClipboard:
		return strings.EqualFold(it.Kind, model.KindClipboard)
	}
	return false
}

func matchesKindFilter(it *model.SearchItem, kindFilter string) bool {
	switch strings.TrimSpace(strings.ToLower(kindFilter)) {
	case "":
		return true
	case "app", "apps":
		return strings.EqualFold(it.Kind, model.KindApp)
	case "file", "files":
		return strings.EqualFold(it.Kind, model.KindFile)
	case "folder", "folders":
		return strings.EqualFold(it.Kind, model.KindFolder)
	case "action", "actions":
		return strings.EqualFold(it.Kind, model.KindAction)
	case "clipboard":
		return strings.EqualFold(it.Kind, model.KindClipboard)
	default:
		return strings.EqualFold(it.Kind, strings.TrimSpace(kindFilter))
	}
}

func matchesExtension(it *model.SearchItem, ext string) bool {
	path := strings.TrimSpace(it.Path)
	dot := strings.LastIndexByte(path, '.')
	if dot < 0 || dot == len(path)-1 {
		return false
	}
	return strings.EqualFold(path[dot+1:], ext)
}

// matchesTermFilters applies exclude terms (substring) and include groups
// (disjunction of conjunctions) against the wide search text. An include
// term matches as a substring or, failing that, as an in-order
// subsequence, so multi-token fuzzy queries are not filtered away.
func matchesTermFilters(it *model.SearchItem, f *Filter) bool {
	haystack := it.NormalizedSearchText()
	for _, term := range f.ExcludeTerms {
		if term != "" && strings.Contains(haystack, term) {
			return false
		}
	}
	if len(f.IncludeGroups) == 0 {
		return true
	}
	for _, group := range f.IncludeGroups {
		all := true
		for _, term := range group {
			if term == "" {
				continue
			}
			if strings.Contains(haystack, term) {
				continue
			}
			if _, _, _, ok := subsequencePenalties(haystack, term); !ok {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func matchesTimeFilters(it *model.SearchItem, f *Filter, nowEpochSecs int64) bool {
	if f.ModifiedWithin == query.WindowNone && f.CreatedWithin == query.WindowNone {
		return true
	}
	info, err := os.Stat(strings.TrimSpace(it.Path))
	if err != nil {
		return false
	}
	// Creation time is not portably available; the modification time is
	// the best timestamp for both windows.
	mod := info.ModTime().Unix()
	if f.ModifiedWithin != query.WindowNone && !withinWindow(mod, nowEpochSecs, f.ModifiedWithin) {
		return false
	}
	if f.CreatedWithin != query.WindowNone && !withinWindow(mod, nowEpochSecs, f.CreatedWithin) {
		return false
	}
	return true
}

func withinWindow(valueSecs, nowSecs int64, w query.TimeWindow) bool {
	if valueSecs <= 0 || nowSecs <= 0 || valueSecs > nowSecs {
		return false
	}
	age := nowSecs - valueSecs
	switch w {
	case query.WindowToday:
		return age <= 24*60*60
	case query.WindowWeek:
		return age <= 7*24*60*60
	case query.WindowMonth:
		return age <= 31*24*60*60
	}
	return false
}

// sourceRank buckets items for the tiebreak: apps 0, local files and
// folders 1, everything else 2.
func sourceRank(it *model.SearchItem) int {
	if strings.EqualFold(it.Kind, model.KindApp) {
		return 0
	}
	if (strings.EqualFold(it.Kind, model.KindFile) || strings.EqualFold(it.Kind, model.KindFolder)) &&
		isLocalPath(it.Path) {
		return 1
	}
	return 2
}

func sourceBonus(it *model.SearchItem) int64 {
	switch sourceRank(it) {
	case 0:
		return sourceAppBonus
	case 1:
		return sourceLocalBonus
	default:
		return 0
	}
}

// isLocalPath reports whether path points at the local filesystem: not a
// URL, not a UNC share, and either rooted at / or a drive-letter path.
func isLocalPath(path string) bool {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || strings.Contains(trimmed, "://") || strings.HasPrefix(trimmed, `\\`) {
		return false
	}
	if len(trimmed) >= 3 && trimmed[1] == ':' && (trimmed[2] == '\\' || trimmed[2] == '/') {
		return true
	}
	return strings.HasPrefix(trimmed, "/")
}

func recencyBonus(lastAccessedEpochSecs, nowEpochSecs int64) int64 {
	if lastAccessedEpochSecs <= 0 || nowEpochSecs <= 0 {
		return 0
	}
	age := nowEpochSecs - lastAccessedEpochSecs
	if age < 0 {
		age = 0
	}
	switch {
	case age <= 3_600:
		return 260
	case age <= 86_400:
		return 220
	case age <= 604_800:
		return 170
	case age <= 2_592_000:
		return 110
	case age <= 7_776_000:
		return 60
	case age <= 31_536_000:
		return 25
	default:
		return 0
	}
}

func frequencyBonus(useCount int64) int64 {
	if useCount <= 0 {
		return 0
	}
	bonus := useCount * 18
	if bonus > 220 {
		return 220
	}
	return bonus
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// NowEpochSecs is the production clock for Rank.
func NowEpochSecs() int64 {
	return time.Now().Unix()
}
