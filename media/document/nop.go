package document

var _ Formatter = (*Nop)(nil)

// Nop provides a no-operation Formatter. Used as a default when a document
// carries no explicit formatter.
type Nop struct{}

// nop is a singleton instance of Nop to avoid unnecessary allocations.
var nop = &Nop{}

// NewNop returns a singleton instance of Nop.
// Since Nop is stateless, the same instance can be safely reused.
func NewNop() *Nop {
	return nop
}

// Format returns only the document's text content, ignoring metadata mode.
func (n *Nop) Format(doc *Document, _ MetadataMode) string {
	return doc.Text
}
