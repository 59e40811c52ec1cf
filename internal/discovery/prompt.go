package discovery

import (
	"fmt"

	"github.com/kalambet/frank/internal/engine"
)

const promptTemplate = `You are an expert discovery system. Based on the search query: %q, generate 2-3 realistic expert profiles that would be perfect matches.

For each expert, provide these exact fields:
- name: Full professional name (realistic, diverse backgrounds)
- location: City, State/Country (global locations)
- industry: One of: Nuclear, Venture Capital, Robotics, AI/ML, Mining, Biotech, Aerospace, Energy, Finance, Healthcare
- function: One of: Engineering, Finance, Research, Operations, Strategy, Consulting, Academia
- email: Professional email address
- phone: International phone number
- expertise: Array of 4-6 specific technical skills relevant to the query
- bio: 2-3 sentence professional biography highlighting relevant experience
- notes: Brief note about their specialization and availability
- yearsExperience: Number between 8-35
- certifications: Array of 1-3 relevant professional certifications
- availability: One of: Available, Busy, Unknown

Do not include a "lead" or "id" field; those are assigned automatically.

Respond with ONLY a JSON array of 2-3 expert objects. No additional text, explanations, or markdown formatting.

Example format:
[
  {
    "name": "Dr. Jane Smith",
    "location": "Boston, MA",
    "industry": "Biotech",
    "function": "Research",
    "email": "jane.smith@biotechcorp.com",
    "phone": "+1 (617) 555-0123",
    "expertise": ["Gene Therapy", "Clinical Trials", "Regulatory Affairs", "Biomarker Discovery"],
    "bio": "Leading biotechnology researcher with 15 years in gene therapy development.",
    "notes": "Expert in rare disease therapeutics. Currently available for consulting projects.",
    "yearsExperience": 15,
    "certifications": ["PhD - Harvard Medical", "Clinical Research Certification"],
    "availability": "Available"
  }
]`

// BuildPrompt constructs the chat messages asking for new expert profiles.
func BuildPrompt(query string) []engine.Message {
	return []engine.Message{{Role: "user", Content: fmt.Sprintf(promptTemplate, query)}}
}
