package domain

// Document is a corpus entry: a stable identifier plus the text it covers.
// The corpus is fixed at process start; document order matters because the
// embedding cache is index-aligned with it.
type Document struct {
	ID   string
	Text string
}
