// Package resolve picks the region hierarchy hidden in the head of an address.
//
// A Resolver is the index.Visitor that decides, at every ambiguous term, which
// region is consistent with the levels already matched, and keeps the best
// complete chain seen during the search.
package resolve

import (
	"strings"

	"github.com/bastiangx/addrserve/pkg/index"
	"github.com/bastiangx/addrserve/pkg/region"
)

// Suffixes that reveal a short alias as the head of a lower-level name,
// e.g. 昌黎 in 昌黎镇.
var guardSuffixes = []string{"街道", "大街", "大道", "公路", "镇", "乡", "村", "路"}

// Administrative suffixes a county alias may be followed by in the text.
var countySuffixes = []string{"县", "区", "市", "旗"}

// Selection priorities, lower wins.
const (
	priorityChild = iota + 1
	prioritySkippedCity
	priorityRepeat
	priorityReclassified
	priorityStopWord
	priorityNone
)

type frame struct {
	item   *index.Item
	key    string
	end    int
	full   bool
	repeat bool
}

type result struct {
	division  region.Division
	depth     int
	matches   int
	repeated  int
	fullCount int
	end       int
}

// Resolver is not safe for concurrent use. Call Reset before each address,
// or take one from a Pool.
type Resolver struct {
	cat *region.Catalog

	frames []frame
	seed   region.Division
	cur    region.Division
	pos    int
	start  int
	begun  bool

	best    result
	hasBest bool
}

// New returns a resolver bound to cat.
func New(cat *region.Catalog) *Resolver {
	return &Resolver{cat: cat, frames: make([]frame, 0, 8)}
}

// Reset clears all state, including the seed.
func (r *Resolver) Reset() {
	r.frames = r.frames[:0]
	r.seed = region.Division{}
	r.cur = region.Division{}
	r.pos, r.start = 0, 0
	r.begun = false
	r.best = result{}
	r.hasBest = false
}

// Seed starts the search from an already known division. Matches repeating
// a seeded level are accepted without changing the hierarchy.
func (r *Resolver) Seed(d region.Division) {
	r.seed = d
	r.cur = d
}

// Resolve runs a full search over text from pos. It does not reset.
func (r *Resolver) Resolve(idx *index.TermIndex, text string, pos int) bool {
	idx.DeepMostQuery(text, pos, r)
	return r.HasResult()
}

// HasResult reports whether the best chain reached county level.
func (r *Resolver) HasResult() bool {
	return r.hasBest && r.best.division.County != nil
}

// Division returns the best division found.
func (r *Resolver) Division() region.Division { return r.best.division }

// EndPosition returns the byte offset just past the best chain.
func (r *Resolver) EndPosition() int { return r.best.end }

// StartPosition returns the offset the search began at.
func (r *Resolver) StartPosition() int { return r.start }

// FullMatchCount returns how many terms of the best chain were full names.
func (r *Resolver) FullMatchCount() int { return r.best.fullCount }

// MatchCount returns how many region terms, repeats included, the best chain
// matched. Stop words are not counted.
func (r *Resolver) MatchCount() int { return r.best.matches }

// RepeatedLevels returns how many distinct known regions the best chain
// named again. Mentioning the same city twice counts once.
func (r *Resolver) RepeatedLevels() int { return r.best.repeated }

// Depth returns the number of terms in the best chain.
func (r *Resolver) Depth() int { return r.best.depth }

func (r *Resolver) StartRound() {}

func (r *Resolver) Position() int { return r.pos }

func (r *Resolver) Visit(node *index.Node, text string, pos int) bool {
	if !r.begun {
		r.begun = true
		r.start = pos
	}

	item, prio := r.choose(node)
	if item == nil {
		return false
	}
	repeat := prio == priorityRepeat && !r.cur.Empty()

	end := pos + len(node.Key)
	if item.Region != nil && r.guarded(item, repeat, node.Key, text[end:]) {
		return false
	}
	full := item.Region != nil && node.Key == item.Region.Name
	if item.Type == index.County && !full {
		for _, s := range countySuffixes {
			if strings.HasPrefix(text[end:], s) {
				full = node.Key+s == item.Region.Name
				end += len(s)
				break
			}
		}
	}

	f := frame{item: item, key: node.Key, end: end, full: full, repeat: repeat}
	r.frames = append(r.frames, f)
	r.apply(f)
	r.pos = end
	return true
}

func (r *Resolver) EndVisit(*index.Node, string, int) {
	if len(r.frames) == 0 {
		return
	}
	r.frames = r.frames[:len(r.frames)-1]
	r.cur = r.seed
	for _, f := range r.frames {
		r.apply(f)
	}
}

// EndRound closes the chain currently on the stack and keeps it if it beats
// the best so far.
func (r *Resolver) EndRound() {
	if len(r.frames) == 0 {
		return
	}
	cand := result{
		division: r.cur,
		depth:    len(r.frames),
		end:      r.frames[len(r.frames)-1].end,
	}
	var repeated [3]int64
	for _, f := range r.frames {
		if f.item.Region != nil {
			cand.matches++
		}
		if f.full {
			cand.fullCount++
		}
		if f.repeat && f.item.Region != nil && cand.repeated < len(repeated) &&
			!containsID(repeated[:cand.repeated], f.item.Region.ID) {
			repeated[cand.repeated] = f.item.Region.ID
			cand.repeated++
		}
	}
	if !r.hasBest || better(cand, r.best) {
		r.best = cand
		r.hasBest = true
	}
}

func (r *Resolver) apply(f frame) {
	if f.repeat || f.item.Region == nil {
		return
	}
	reg := f.item.Region
	switch f.item.Type {
	case index.Province:
		r.cur.SetProvince(reg)
	case index.City:
		r.cur.SetCity(r.cat, reg)
	case index.County:
		r.cur.SetCounty(r.cat, reg)
	}
}

// choose selects the item of node that fits the current hierarchy.
func (r *Resolver) choose(node *index.Node) (*index.Item, int) {
	var best *index.Item
	bestPrio := priorityNone
	for _, item := range node.Items {
		p := r.priority(item)
		if p == priorityNone {
			continue
		}
		if best == nil || p < bestPrio || (p == bestPrio && lessItem(item, best)) {
			best, bestPrio = item, p
		}
	}
	return best, bestPrio
}

func (r *Resolver) priority(item *index.Item) int {
	if item.Region == nil {
		// Stop words only lead the chain.
		if item.Type == index.Undefined && !r.matchedRegion() {
			return priorityStopWord
		}
		return priorityNone
	}
	if item.Type == index.Undefined {
		return priorityNone
	}

	if r.cur.Empty() {
		// Nothing matched yet: the broadest level comes first.
		return priorityChild + int(item.Type) - int(index.Province)
	}

	reg := item.Region
	least := r.cur.Least()
	switch {
	case reg.ParentID == least.ID:
		return priorityChild
	case item.Type == index.County && !r.cur.HasCity() && r.cur.HasProvince() &&
		r.grandparentID(reg) == r.cur.Province.ID:
		return prioritySkippedCity
	case r.cur.Contains(reg):
		return priorityRepeat
	case reg.Type == region.CityLevelCounty && r.cur.HasProvince() && r.cur.HasCity() &&
		reg.ParentID == r.cur.Province.ID:
		return priorityReclassified
	}
	return priorityNone
}

func (r *Resolver) matchedRegion() bool {
	for _, f := range r.frames {
		if f.item.Region != nil {
			return true
		}
	}
	return false
}

func (r *Resolver) grandparentID(reg *region.Region) int64 {
	parent := r.cat.Parent(reg)
	if parent == nil {
		return -1
	}
	return parent.ParentID
}

// guarded rejects a short alias that is really the head of a town, village
// or road name. Province and city aliases are only checked while nothing
// has been matched, or when they repeat a known level.
func (r *Resolver) guarded(item *index.Item, repeat bool, key, rest string) bool {
	if key == item.Region.Name || len(key) >= len(item.Region.Name) {
		return false
	}
	if item.Type != index.County && !repeat && !r.cur.Empty() {
		return false
	}
	for _, s := range guardSuffixes {
		if strings.HasPrefix(rest, s) {
			return true
		}
	}
	return false
}

func lessItem(a, b *index.Item) bool {
	if a.Region == nil || b.Region == nil {
		return b.Region == nil && a.Region != nil
	}
	return a.Region.ID < b.Region.ID
}

// better orders chains: more text consumed, then more terms, then more full
// names, then having a county, then the smallest ids.
func better(a, b result) bool {
	if a.end != b.end {
		return a.end > b.end
	}
	if a.depth != b.depth {
		return a.depth > b.depth
	}
	if a.fullCount != b.fullCount {
		return a.fullCount > b.fullCount
	}
	ac, bc := a.division.County != nil, b.division.County != nil
	if ac != bc {
		return ac
	}
	for _, pair := range [][2]*region.Region{
		{a.division.County, b.division.County},
		{a.division.City, b.division.City},
		{a.division.Province, b.division.Province},
	} {
		if id, other := regionID(pair[0]), regionID(pair[1]); id != other {
			return id < other
		}
	}
	return false
}

func containsID(ids []int64, id int64) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func regionID(r *region.Region) int64 {
	if r == nil {
		return 1<<63 - 1
	}
	return r.ID
}
