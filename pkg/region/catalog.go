package region

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

var (
	ErrEmptyCatalog  = errors.New("region catalog is empty")
	ErrNoRoot        = errors.New("region catalog has no country root")
	ErrMultipleRoots = errors.New("region catalog has more than one root")
	ErrDuplicateID   = errors.New("duplicate region id")
	ErrUnknownParent = errors.New("region parent does not exist")
	ErrRankOrder     = errors.New("region is less specific than its parent")
	ErrUnreachable   = errors.New("region is not reachable from the root")
)

// Record is the flat storage form of a region, as produced by catalog sources.
type Record struct {
	ID       int64
	ParentID int64
	Type     Type
	Name     string
	Alias    []string
}

// Region is a node of the catalog tree. Regions are owned by the Catalog and
// must not be modified after it is built.
type Region struct {
	ID       int64
	ParentID int64
	Type     Type
	Name     string
	// Alias holds alternate names, longest first.
	Alias    []string
	Children []*Region
}

// Names returns the primary name followed by the aliases.
func (r *Region) Names() []string {
	names := make([]string, 0, len(r.Alias)+1)
	names = append(names, r.Name)
	return append(names, r.Alias...)
}

func (r *Region) String() string {
	if r == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%d)", r.Name, r.ID)
}

// Catalog is the immutable administrative tree, rooted at a single Country.
// It is safe for concurrent use once built.
type Catalog struct {
	root *Region
	byID map[int64]*Region
}

// NewCatalog links records into a tree and validates it.
func NewCatalog(records []Record) (*Catalog, error) {
	if len(records) == 0 {
		return nil, ErrEmptyCatalog
	}

	byID := make(map[int64]*Region, len(records))
	for _, rec := range records {
		if _, exists := byID[rec.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, rec.ID)
		}
		byID[rec.ID] = &Region{
			ID:       rec.ID,
			ParentID: rec.ParentID,
			Type:     rec.Type,
			Name:     rec.Name,
			Alias:    normalizeAliases(rec.Name, rec.Alias),
		}
	}

	var root *Region
	for _, r := range byID {
		if r.Type == Country {
			if root != nil {
				return nil, fmt.Errorf("%w: %s and %s", ErrMultipleRoots, root, r)
			}
			root = r
			continue
		}
		parent, ok := byID[r.ParentID]
		if !ok {
			return nil, fmt.Errorf("%w: %s -> %d", ErrUnknownParent, r, r.ParentID)
		}
		if !rankAllowed(parent.Type, r.Type) {
			return nil, fmt.Errorf("%w: %s (%s) under %s (%s)", ErrRankOrder, r, r.Type, parent, parent.Type)
		}
		parent.Children = append(parent.Children, r)
	}
	if root == nil {
		return nil, ErrNoRoot
	}

	for _, r := range byID {
		sort.Slice(r.Children, func(i, j int) bool { return r.Children[i].ID < r.Children[j].ID })
	}

	c := &Catalog{root: root, byID: byID}
	reached := 0
	c.Walk(func(*Region) bool {
		reached++
		return true
	})
	if reached != len(byID) {
		return nil, fmt.Errorf("%w: %d of %d regions reached", ErrUnreachable, reached, len(byID))
	}
	return c, nil
}

// rankAllowed reports whether child may hang under parent. County and
// CityLevelCounty may nest in either direction after reclassification.
func rankAllowed(parent, child Type) bool {
	if child.Rank() >= parent.Rank() {
		return true
	}
	return parent.IsCountyLike() && child.IsCountyLike()
}

// normalizeAliases drops blanks, duplicates and the primary name, then orders
// the rest longest first so the most specific spelling is preferred.
func normalizeAliases(name string, alias []string) []string {
	if len(alias) == 0 {
		return nil
	}
	seen := map[string]bool{name: true}
	out := make([]string, 0, len(alias))
	for _, a := range alias {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(out[i]), utf8.RuneCountInString(out[j])
		if li != lj {
			return li > lj
		}
		return out[i] < out[j]
	})
	return out
}

// Root returns the country region.
func (c *Catalog) Root() *Region { return c.root }

// Get returns the region with the given id, or nil.
func (c *Catalog) Get(id int64) *Region {
	if c == nil {
		return nil
	}
	return c.byID[id]
}

// Children returns the ordered children of the region with the given id.
func (c *Catalog) Children(id int64) []*Region {
	if r := c.Get(id); r != nil {
		return r.Children
	}
	return nil
}

// Parent returns the parent of r, or nil for the root.
func (c *Catalog) Parent(r *Region) *Region {
	if r == nil || r == c.root {
		return nil
	}
	return c.byID[r.ParentID]
}

// Len returns the number of regions.
func (c *Catalog) Len() int { return len(c.byID) }

// Walk visits regions in pre-order, children by ascending id. Returning false
// from fn skips the region's subtree.
func (c *Catalog) Walk(fn func(*Region) bool) {
	var walk func(*Region)
	walk = func(r *Region) {
		if !fn(r) {
			return
		}
		for _, child := range r.Children {
			walk(child)
		}
	}
	walk(c.root)
}

// Records flattens the catalog back into records in Walk order.
func (c *Catalog) Records() []Record {
	out := make([]Record, 0, len(c.byID))
	c.Walk(func(r *Region) bool {
		out = append(out, Record{
			ID:       r.ID,
			ParentID: r.ParentID,
			Type:     r.Type,
			Name:     r.Name,
			Alias:    append([]string(nil), r.Alias...),
		})
		return true
	})
	return out
}
