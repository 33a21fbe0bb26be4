package provider

import (
	"fmt"

	"github.com/quillworks/quill-gateway/internal/types"
)

const suggestionShape = `Respond with ONLY a JSON array, no prose and no markdown. Each element must be an object with fields "text" (string), "confidence" (number between 0 and 1), and "type" (string).`

// BuildPrompt constructs the system instruction and user content for a
// request. Every backend receives the same instruction pair; the
// adapters only differ in how they frame it on the wire.
func BuildPrompt(req *types.Request) (system, user string) {
	switch req.Operation {
	case types.OpRephrase:
		style := req.Style
		if style == "" {
			style = types.StyleFormal
		}
		system = fmt.Sprintf(
			"You are a writing assistant. Rewrite the user's text in a %s style. Produce one or more alternative phrasings. For each, set \"type\" to \"rephrasing\". %s",
			style, suggestionShape)
	default:
		system = fmt.Sprintf(
			"You are a grammar checker for the language %q. Find grammar, spelling, and punctuation problems in the user's text and propose corrected replacements. Set \"type\" to one of \"grammar\", \"spelling\", or \"punctuation\". If the text is already correct, respond with an empty JSON array. %s",
			req.Lang(), suggestionShape)
	}
	return system, req.Text
}
