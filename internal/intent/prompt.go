package intent

import (
	"fmt"

	"github.com/kalambet/frank/internal/engine"
)

const promptTemplate = `Analyze this search query for expert discovery: %q

Suggest up to five ways to improve the search or clarify what the user might be looking for.

Respond with ONLY a JSON object in this format:
{
  "intent": "Brief description of what the user is looking for",
  "suggestions": ["suggestion 1", "suggestion 2", "suggestion 3"],
  "searchTerms": ["key", "terms", "extracted"]
}`

// BuildPrompt constructs the chat messages for query analysis.
func BuildPrompt(query string) []engine.Message {
	return []engine.Message{
		{Role: "user", Content: fmt.Sprintf(promptTemplate, query)},
	}
}
