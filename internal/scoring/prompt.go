package scoring

import (
	"fmt"
	"strings"

	"github.com/kalambet/frank/internal/engine"
	"github.com/kalambet/frank/internal/expert"
)

const promptHeader = `You are an expert matching system. Given a search query and a list of experts, score how well each expert matches the query based on their skills, experience, and background.

Search Query: %q

Experts to analyze:
`

const promptFooter = `
For each expert, provide a relevance score from 0.0 to 1.0 and a brief explanation of why they match or don't match the query.

Respond with ONLY a JSON array in this exact format:
[
  {"expertIndex": 0, "score": 0.85, "explanation": "Brief explanation of why this expert matches the query"},
  {"expertIndex": 1, "score": 0.23, "explanation": "Brief explanation of match level"}
]

expertIndex is the number shown in brackets next to each expert. Include ALL experts in your response, even if their score is 0.0.`

// BuildPrompt serialises the query and candidates into a single user message.
// Candidates are labelled by their zero-based position.
func BuildPrompt(query string, candidates []expert.Expert) []engine.Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, promptHeader, query)
	for i, e := range candidates {
		fmt.Fprintf(&sb, "\nExpert [%d]:\n", i)
		fmt.Fprintf(&sb, "- Name: %s\n", e.Name)
		fmt.Fprintf(&sb, "- Industry: %s\n", e.Industry)
		fmt.Fprintf(&sb, "- Function: %s\n", e.Function)
		fmt.Fprintf(&sb, "- Expertise: %s\n", strings.Join(e.Expertise, ", "))
		fmt.Fprintf(&sb, "- Bio: %s\n", e.Bio)
		fmt.Fprintf(&sb, "- Experience: %d years\n", e.YearsExperience)
		fmt.Fprintf(&sb, "- Notes: %s\n", e.Notes)
	}
	sb.WriteString(promptFooter)
	return []engine.Message{{Role: "user", Content: sb.String()}}
}
