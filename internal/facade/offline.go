package facade

import (
	"strings"
	"unicode"

	"github.com/quillworks/quill-gateway/internal/types"
)

// offlineConfidence marks dictionary hits as clearly weaker than
// model-produced suggestions.
const offlineConfidence = 0.7

// misspellings is the degraded-mode dictionary. Deliberately tiny: it
// exists so the product does something useful with no connectivity,
// not to compete with a model.
var misspellings = map[string]string{
	"teh":        "the",
	"adn":        "and",
	"recieve":    "receive",
	"seperate":   "separate",
	"definately": "definitely",
	"occured":    "occurred",
	"untill":     "until",
	"wich":       "which",
	"thier":      "their",
	"becuase":    "because",
	"alot":       "a lot",
	"accross":    "across",
	"tommorow":   "tomorrow",
	"goverment":  "government",
}

// offlineResponse scans whitespace-split tokens against the
// misspelling dictionary. Each hit becomes one spelling suggestion
// carrying the corrected word. Never touches the network.
func offlineResponse(req *types.Request) *types.Response {
	suggestions := []types.Suggestion{}
	for _, token := range strings.Fields(req.Text) {
		word := strings.TrimFunc(token, unicode.IsPunct)
		fixed, ok := misspellings[strings.ToLower(word)]
		if !ok {
			continue
		}
		suggestions = append(suggestions, types.Suggestion{
			Text:       matchCase(word, fixed),
			Confidence: offlineConfidence,
			Type:       "spelling",
		})
	}
	return &types.Response{Original: req.Text, Suggestions: suggestions}
}

// matchCase capitalizes the replacement when the source word was
// capitalized, so "Teh" corrects to "The".
func matchCase(src, repl string) string {
	if src == "" || repl == "" {
		return repl
	}
	first := []rune(src)[0]
	if unicode.IsUpper(first) {
		r := []rune(repl)
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	}
	return repl
}
