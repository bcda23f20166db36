// Package address turns free-form Chinese mailing addresses into Records.
//
// A Parser runs a fixed sequence of stages over one mutable text: it
// normalizes the input, sets bracketed notes aside, resolves the region head
// through the term index, removes repeated headers, then reads towns,
// village, road and building number with anchored patterns. Whatever is left
// stays in Record.Text.
package address

import (
	"strings"

	"github.com/bastiangx/addrserve/internal/logger"
	"github.com/bastiangx/addrserve/internal/utils"
	"github.com/bastiangx/addrserve/pkg/index"
	"github.com/bastiangx/addrserve/pkg/region"
	"github.com/bastiangx/addrserve/pkg/resolve"
	"github.com/charmbracelet/log"
)

var ErrCatalogNotInitialized = index.ErrCatalogNotInitialized

const DefaultMaxLength = 150

// Parser is safe for concurrent use; each call takes its own Resolver.
type Parser struct {
	idx       *index.TermIndex
	cat       *region.Catalog
	pool      *resolve.Pool
	maxLength int
	log       *log.Logger
}

type Option func(*Parser)

// WithMaxLength bounds the input in runes. n <= 0 disables the bound.
func WithMaxLength(n int) Option {
	return func(p *Parser) { p.maxLength = n }
}

func WithLogger(l *log.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l
		}
	}
}

func NewParser(idx *index.TermIndex, cat *region.Catalog, opts ...Option) (*Parser, error) {
	if idx == nil || cat == nil {
		return nil, ErrCatalogNotInitialized
	}
	p := &Parser{
		idx:       idx,
		cat:       cat,
		pool:      resolve.NewPool(cat),
		maxLength: DefaultMaxLength,
		log:       logger.New("parser"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Pool returns the resolver pool the parser draws from.
func (p *Parser) Pool() *resolve.Pool { return p.pool }

func (p *Parser) Index() *index.TermIndex  { return p.idx }
func (p *Parser) Catalog() *region.Catalog { return p.cat }

// Parse parses text with a pooled resolver.
func (p *Parser) Parse(text string) *Record {
	res := p.pool.Get()
	defer p.pool.Put(res)
	return p.ParseWith(res, text)
}

// ParseWith parses text using res as scratch state. res must not be used
// concurrently.
func (p *Parser) ParseWith(res *resolve.Resolver, text string) *Record {
	rec := &Record{Raw: text}
	rec.Text = normalize(text, p.maxLength)
	rec.Text, rec.notes = extractBrackets(rec.Text)

	if p.ExtractRegion(res, rec) {
		p.RemoveRedundancy(res, rec)
	}

	p.extractTowns(rec)
	if rec.County != nil && len(rec.Towns) > 0 && p.removeRedundancy(res, rec, true) {
		p.extractTowns(rec)
	}

	p.extractRoad(rec)
	p.extractBuilding(rec)
	p.cleanup(rec)

	if !rec.Interpreted() {
		p.log.Debugf("Not interpreted: %q", text)
	}
	return rec
}

// ExtractRegion resolves the region head of rec.Text. On success the head is
// consumed and the division stored on rec.
func (p *Parser) ExtractRegion(res *resolve.Resolver, rec *Record) bool {
	res.Reset()
	if !res.Resolve(p.idx, rec.Text, 0) {
		p.log.Debugf("No region in %q", rec.Text)
		return false
	}
	rec.setDivision(res.Division())
	rec.Text = rec.Text[res.EndPosition():]
	p.log.Debugf("Region %s/%s/%s, rest %q", rec.Province, rec.City, rec.County, rec.Text)
	return true
}

// RemoveRedundancy drops repeated region headers from rec.Text until none is
// left. It reports whether anything was removed.
func (p *Parser) RemoveRedundancy(res *resolve.Resolver, rec *Record) bool {
	return p.removeRedundancy(res, rec, false)
}

func (p *Parser) removeRedundancy(res *resolve.Resolver, rec *Record, withTowns bool) bool {
	if rec.County == nil {
		return false
	}
	removed := false
	for {
		cut, ok := p.findRepeat(res, rec, withTowns)
		if !ok {
			break
		}
		p.log.Debugf("Repeated header %q dropped", rec.Text[:cut])
		rec.Text = rec.Text[cut:]
		removed = true
	}
	return removed
}

// findRepeat looks for a position where the known province or city is named
// again together with at least one more known level. Naming the same region
// twice is one level. It returns the offset just past that repeated header.
// Trials run on res and log nothing.
func (p *Parser) findRepeat(res *resolve.Resolver, rec *Record, withTowns bool) (int, bool) {
	seed := rec.Division()
	var leads []rune
	for _, r := range []*region.Region{rec.Province, rec.City} {
		if r != nil {
			leads = append(leads, utils.FirstRune(r.Name))
		}
	}

	for i, ch := range rec.Text {
		if !containsRune(leads, ch) {
			continue
		}
		res.Reset()
		res.Seed(seed)
		res.Resolve(p.idx, rec.Text, i)

		levels := res.RepeatedLevels()
		if levels == 0 || !res.Division().Same(seed) {
			continue
		}
		end := res.EndPosition()
		if withTowns && levels < 2 {
			for _, town := range rec.Towns {
				if strings.HasPrefix(rec.Text[end:], town) {
					levels++
					end += len(town)
					break
				}
			}
		}
		if levels >= 2 {
			return end, true
		}
	}
	return 0, false
}

func containsRune(rs []rune, r rune) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

func (p *Parser) extractTowns(rec *Record) {
	text := rec.Text
	m := matchTowns(text)
	if m.empty() && strings.HasPrefix(text, "市") {
		if short := matchTowns(text[len("市"):]); short.street != "" || short.town != "" {
			m = short
			m.end += len("市")
		}
	}
	if m.empty() {
		return
	}
	rec.addTown(m.street)
	rec.addTown(m.town)
	rec.addTown(m.township)
	if m.village != "" {
		rec.Village = m.village
	}
	rec.Text = text[m.end:]
}

func (p *Parser) extractRoad(rec *Record) {
	loc := roadPattern.FindStringSubmatchIndex(rec.Text)
	if loc == nil {
		return
	}
	road := roadPattern.SubexpIndex("road")
	num := roadPattern.SubexpIndex("num")
	rec.Road = rec.Text[loc[2*road]:loc[2*road+1]]
	if loc[2*num] >= 0 {
		rec.RoadNum = rec.Text[loc[2*num]:loc[2*num+1]]
	}
	rec.Text = rec.Text[loc[1]:]
}

func (p *Parser) extractBuilding(rec *Record) {
	for _, re := range buildingPatterns {
		loc := re.FindStringIndex(rec.Text)
		if loc == nil {
			continue
		}
		rec.BuildingNum = rec.Text[loc[0]:loc[1]]
		rec.Text = rec.Text[:loc[0]] + rec.Text[loc[1]:]
		return
	}
}

func (p *Parser) cleanup(rec *Record) {
	text := residualPattern.ReplaceAllString(rec.Text, "")
	text = strings.Trim(text, "-#")
	rec.Text = text + strings.Join(rec.notes, "")
	rec.notes = nil
}
