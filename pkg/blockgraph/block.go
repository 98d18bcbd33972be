package blockgraph

import "strings"

// Block is a unit of code treated as an atomic node of the dependency
// graph. Its source is fixed at creation; the analysis results live in the
// graph's annotation layer, not on the block itself.
type Block struct {
	id     string
	source []string
}

// ID returns the block's unique identifier.
func (b *Block) ID() string {
	return b.id
}

// Source returns a copy of the block's source lines.
func (b *Block) Source() []string {
	src := make([]string, len(b.source))
	copy(src, b.source)

	return src
}

// SourceText returns the block's source as a single newline-joined string,
// the form the name resolver consumes.
func (b *Block) SourceText() string {
	return strings.Join(b.source, "\n")
}
