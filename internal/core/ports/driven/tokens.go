package driven

// TokenCounter counts model tokens in a text.
type TokenCounter interface {
	Count(text string) int
}

// TokenCounterFunc adapts a function to TokenCounter.
type TokenCounterFunc func(text string) int

// Count calls f(text).
func (f TokenCounterFunc) Count(text string) int {
	return f(text)
}
