package index

// Visitor drives DeepMostQuery. Visit decides whether a node is accepted at
// pos; when it is, Position reports where the search continues.
type Visitor interface {
	StartRound()
	Visit(node *Node, text string, pos int) bool
	EndVisit(node *Node, text string, pos int)
	EndRound()
	Position() int
}

// DeepMostQuery explores every chain of accepted terms starting at pos,
// trying longer candidates first. Each accepted node is paired with exactly
// one EndVisit, and each round with one EndRound, so visitors can keep a
// stack without an undo log.
func (idx *TermIndex) DeepMostQuery(text string, pos int, v Visitor) {
	if text == "" || v == nil {
		return
	}
	v.StartRound()
	defer v.EndRound()

	candidates := idx.Query(text, pos)
	for i := len(candidates) - 1; i >= 0; i-- {
		node := candidates[i]
		if !v.Visit(node, text, pos) {
			continue
		}
		if next := v.Position(); next > pos {
			idx.DeepMostQuery(text, next, v)
		}
		v.EndVisit(node, text, pos)
	}
}
