// Package index recognizes region names and aliases inside address text.
//
// A TermIndex is a byte-keyed patricia trie over every indexed term. Query
// reports all terms that prefix the text at a position; DeepMostQuery walks
// every chain of such terms and lets a Visitor decide which chains are legal.
package index

import (
	"errors"
	"fmt"

	"github.com/bastiangx/addrserve/pkg/region"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

var ErrCatalogNotInitialized = errors.New("region catalog not initialized")

// ItemType is the level a term stands for when matched.
type ItemType int

const (
	Undefined ItemType = iota
	Province
	City
	County
)

func (t ItemType) String() string {
	switch t {
	case Province:
		return "province"
	case City:
		return "city"
	case County:
		return "county"
	default:
		return "undefined"
	}
}

// ItemTypeOf maps a region type onto the level it is indexed under. Regions
// below county level, and the country itself, are not indexed.
func ItemTypeOf(t region.Type) (ItemType, bool) {
	switch {
	case t.IsProvinceLike():
		return Province, true
	case t.IsCityLike():
		return City, true
	case t.IsCountyLike():
		return County, true
	default:
		return Undefined, false
	}
}

// Item is one meaning of a term. Stop words carry a nil Region.
type Item struct {
	Type   ItemType
	Region *region.Region
}

// Node is the index entry for one term.
type Node struct {
	Key   string
	Items []*Item
}

// Stats summarizes an index.
type Stats struct {
	Terms     int `msgpack:"terms" json:"terms"`
	Items     int `msgpack:"items" json:"items"`
	StopWords int `msgpack:"stop_words" json:"stop_words"`
	Ambiguous int `msgpack:"ambiguous" json:"ambiguous"`
}

// TermIndex is immutable after Build and safe for concurrent queries.
type TermIndex struct {
	trie  *patricia.Trie
	stats Stats
}

// Build indexes every name and alias of cat, then the stop words.
func Build(cat *region.Catalog, stopWords []string) (*TermIndex, error) {
	if cat == nil {
		return nil, ErrCatalogNotInitialized
	}

	idx := &TermIndex{trie: patricia.NewTrie()}
	cat.Walk(func(r *region.Region) bool {
		typ, ok := ItemTypeOf(r.Type)
		if !ok {
			return true
		}
		for _, name := range r.Names() {
			idx.add(name, &Item{Type: typ, Region: r})
		}
		return true
	})

	for _, w := range stopWords {
		if w == "" {
			continue
		}
		idx.add(w, &Item{Type: Undefined})
		idx.stats.StopWords++
	}

	if idx.stats.Terms == 0 {
		return nil, fmt.Errorf("%w: no indexable regions", ErrCatalogNotInitialized)
	}
	log.Debugf("Term index built: %d terms, %d items, %d ambiguous",
		idx.stats.Terms, idx.stats.Items, idx.stats.Ambiguous)
	return idx, nil
}

func (idx *TermIndex) add(key string, item *Item) {
	k := patricia.Prefix(key)
	if v := idx.trie.Get(k); v != nil {
		node := v.(*Node)
		for _, existing := range node.Items {
			if existing.Type == item.Type && existing.Region == item.Region {
				return
			}
		}
		if len(node.Items) == 1 {
			idx.stats.Ambiguous++
		}
		node.Items = append(node.Items, item)
		idx.stats.Items++
		return
	}
	idx.trie.Insert(k, &Node{Key: key, Items: []*Item{item}})
	idx.stats.Terms++
	idx.stats.Items++
}

// Stats returns term and item counts.
func (idx *TermIndex) Stats() Stats { return idx.stats }

// Lookup returns the node for an exact term.
func (idx *TermIndex) Lookup(term string) (*Node, bool) {
	if term == "" {
		return nil, false
	}
	v := idx.trie.Get(patricia.Prefix(term))
	if v == nil {
		return nil, false
	}
	return v.(*Node), true
}

// Query returns every node whose term is a prefix of text[pos:], shortest
// first. pos is a byte offset.
func (idx *TermIndex) Query(text string, pos int) []*Node {
	if pos < 0 || pos >= len(text) {
		return nil
	}
	var nodes []*Node
	_ = idx.trie.VisitPrefixes(patricia.Prefix(text[pos:]), func(_ patricia.Prefix, item patricia.Item) error {
		nodes = append(nodes, item.(*Node))
		return nil
	})
	return nodes
}
