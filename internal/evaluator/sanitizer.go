package evaluator

const defaultMaxFieldChars = 40000

const truncationMarker = "\n\n[... content truncated for length ...]\n\n"

// MessageSanitizer bounds the size of each test case field placed in a judge prompt.
type MessageSanitizer struct {
	maxMessageLength int
}

// NewMessageSanitizer limits fields to maxChars runes; zero or less uses the default.
func NewMessageSanitizer(maxChars int) *MessageSanitizer {
	if maxChars <= 0 {
		maxChars = defaultMaxFieldChars
	}
	return &MessageSanitizer{maxMessageLength: maxChars}
}

// TruncateMessage keeps the first 60% and the last part of an oversized
// field, joined by a marker, so the result fits maxMessageLength.
func (s *MessageSanitizer) TruncateMessage(content string) string {
	runes := []rune(content)
	if len(runes) <= s.maxMessageLength {
		return content
	}

	marker := []rune(truncationMarker)
	budget := s.maxMessageLength - len(marker)
	if budget <= 0 {
		return string(runes[:s.maxMessageLength])
	}

	keepStart := int(float64(budget) * 0.6)
	keepEnd := budget - keepStart

	return string(runes[:keepStart]) + truncationMarker + string(runes[len(runes)-keepEnd:])
}
