package ast

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if isNilNode(node) {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// ZeroSpan returns an empty span value.
func ZeroSpan() Span {
	return Span{}
}

// IsZero reports whether the span carries no position.
func (s Span) IsZero() bool {
	return s == Span{}
}
