package discovery

import (
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/kalambet/frank/internal/expert"
)

type keywordRule struct {
	pattern *regexp.Regexp
	value   string
}

type skillRule struct {
	pattern *regexp.Regexp
	skills  []string
}

// Rules are checked in order; the first match wins. "ai" only matches as a
// whole word.
var (
	industryRules = []keywordRule{
		{regexp.MustCompile(`nuclear`), "Nuclear"},
		{regexp.MustCompile(`robot`), "Robotics"},
		{regexp.MustCompile(`\bai\b|machine learning`), "AI/ML"},
		{regexp.MustCompile(`mining`), "Mining"},
		{regexp.MustCompile(`venture|funding`), "Venture Capital"},
		{regexp.MustCompile(`bio`), "Biotech"},
		{regexp.MustCompile(`aerospace|space`), "Aerospace"},
		{regexp.MustCompile(`energy`), "Energy"},
	}

	skillRules = []skillRule{
		{regexp.MustCompile(`nuclear`), []string{"Nuclear Safety", "Reactor Design", "Radiation Protection", "Nuclear Waste Management"}},
		{regexp.MustCompile(`robot`), []string{"Robotics Engineering", "Automation Systems", "Computer Vision", "Motion Control"}},
		{regexp.MustCompile(`\bai\b|machine learning`), []string{"Machine Learning", "Deep Learning", "Neural Networks", "Data Science"}},
		{regexp.MustCompile(`mining`), []string{"Mining Operations", "Geological Analysis", "Equipment Management", "Safety Protocols"}},
		{regexp.MustCompile(`venture`), []string{"Investment Analysis", "Due Diligence", "Portfolio Management", "Startup Evaluation"}},
		{regexp.MustCompile(`bio`), []string{"Biotechnology", "Molecular Biology", "Clinical Research", "Regulatory Affairs"}},
	}
)

const defaultIndustry = "Technology"

var defaultSkills = []string{"Strategic Consulting", "Technical Analysis", "Project Management", "Innovation Strategy"}

// IndustryFor returns the template industry for query.
func IndustryFor(query string) string {
	q := strings.ToLower(query)
	for _, r := range industryRules {
		if r.pattern.MatchString(q) {
			return r.value
		}
	}
	return defaultIndustry
}

// SkillsFor returns the template skill list for query.
func SkillsFor(query string) []string {
	q := strings.ToLower(query)
	for _, r := range skillRules {
		if r.pattern.MatchString(q) {
			return append([]string(nil), r.skills...)
		}
	}
	return append([]string(nil), defaultSkills...)
}

// templateCount is 2 or 3, fixed per query.
func templateCount(query string) int {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(query))))
	return int(h.Sum32()%2) + 2
}

var templates = []expert.Expert{
	{
		Name:            "Dr. Alexandra Martinez",
		Location:        "Barcelona, Spain",
		Function:        "Research",
		Email:           "a.martinez@techresearch.es",
		Phone:           "+34 93 555 0123",
		Bio:             "International expert with extensive experience in cutting-edge research and development.",
		Notes:           "Highly recommended specialist. Available for strategic consulting and technical reviews.",
		YearsExperience: 18,
		Certifications:  []string{"PhD - Technical University", "International Research Fellow"},
	},
	{
		Name:            "Michael Chen",
		Location:        "Vancouver, Canada",
		Function:        "Engineering",
		Email:           "mchen@innovativetech.ca",
		Phone:           "+1 (604) 555-0156",
		Bio:             "Senior engineer with proven track record in complex technical implementations and team leadership.",
		Notes:           "Excellent problem solver with strong industry connections. Currently taking on new projects.",
		YearsExperience: 22,
		Certifications:  []string{"Professional Engineer", "Project Management Professional"},
	},
	{
		Name:            "Priya Raman",
		Location:        "London, UK",
		Function:        "Strategy",
		Email:           "p.raman@strategicinsight.co.uk",
		Phone:           "+44 20 5555 0177",
		Bio:             "Strategy advisor who turns emerging technology into commercial roadmaps for global firms.",
		Notes:           "Broad advisory network across Europe. Open to short engagements.",
		YearsExperience: 15,
		Certifications:  []string{"MBA - London Business School", "Chartered Engineer"},
	},
}

// fallbackProfiles builds the template experts for query. Identity fields
// (ID, lead, photo, flags) are filled in by the generator.
func fallbackProfiles(query string) []expert.Expert {
	industry := IndustryFor(query)
	n := templateCount(query)
	out := make([]expert.Expert, n)
	for i := range n {
		e := templates[i].Clone()
		e.Industry = industry
		e.Expertise = SkillsFor(query)
		e.Type = expert.TypeExternal
		e.Availability = expert.AvailabilityAvailable
		out[i] = e
	}
	return out
}
