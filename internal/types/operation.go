package types

// Operation identifies the kind of text processing requested.
type Operation string

const (
	OpGrammarCheck Operation = "grammar_check"
	OpRephrase     Operation = "rephrase"
)

func ParseOperation(s string) (Operation, bool) {
	switch Operation(s) {
	case OpGrammarCheck, OpRephrase:
		return Operation(s), true
	default:
		return "", false
	}
}

// Style conditions a rephrase. Ignored for grammar checks.
type Style string

const (
	StyleFormal   Style = "formal"
	StyleCasual   Style = "casual"
	StyleConcise  Style = "concise"
	StyleDetailed Style = "detailed"
)

func ParseStyle(s string) (Style, bool) {
	switch Style(s) {
	case StyleFormal, StyleCasual, StyleConcise, StyleDetailed:
		return Style(s), true
	default:
		return "", false
	}
}
