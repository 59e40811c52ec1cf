package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kalambet/frank/internal/expert"
	"github.com/kalambet/frank/internal/intent"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

// writeExpert prints a one-line summary of e followed by its expertise.
func writeExpert(w io.Writer, e expert.Expert) {
	tag := string(e.Type)
	if e.IsAIGenerated {
		tag += ", generated"
	}
	fmt.Fprintf(w, "%s  %s (%s)\n", colorize(colorBold, e.ID), e.Name, tag)
	fmt.Fprintf(w, "    %s · %s · %s · %s\n", e.Function, e.Industry, e.Location, e.Availability)
	if len(e.Expertise) > 0 {
		fmt.Fprintf(w, "    expertise: %s\n", strings.Join(e.Expertise, ", "))
	}
}

// writeDetail prints every populated field of e.
func writeDetail(w io.Writer, e expert.Expert) {
	writeExpert(w, e)
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "    %s %s\n", colorize(colorBold, label+":"), value)
		}
	}
	field("email", e.Email)
	field("phone", e.Phone)
	for i, c := range e.Certifications {
		field(fmt.Sprintf("certification[%d]", i), c)
	}
	if e.YearsExperience > 0 {
		field("experience", fmt.Sprintf("%d years", e.YearsExperience))
	}
	if e.Rating != nil {
		reviews := 0
		if e.ReviewCount != nil {
			reviews = *e.ReviewCount
		}
		field("rating", fmt.Sprintf("%.1f (%d reviews)", *e.Rating, reviews))
	}
	if e.LastContact != nil {
		field("last contact", e.LastContact.String())
	}
	field("lead", e.LeadName())
	field("bio", e.Bio)
	field("notes", e.Notes)
}

// writeMatches prints ranked matches. Scores are shown only when the search
// ran in AI mode.
func writeMatches(w io.Writer, matches []expert.Match, showScore bool) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matching experts.")
		return
	}
	for i, m := range matches {
		if showScore {
			fmt.Fprintf(w, "%2d. %s  %s\n", i+1,
				colorize(colorCyan, fmt.Sprintf("%3.0f%%", m.AIScore*100)), m.Name)
		} else {
			fmt.Fprintf(w, "%2d. %s\n", i+1, m.Name)
		}
		writeExpert(w, m.Expert)
		if m.MatchExplanation != "" {
			fmt.Fprintf(w, "    why: %s\n", m.MatchExplanation)
		}
	}
}

func writeAnalysis(w io.Writer, a *intent.Analysis) {
	if a == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "Intent:"), a.Intent)
	if len(a.Suggestions) > 0 {
		fmt.Fprintf(w, "%s\n", colorize(colorBold, "Try also:"))
		for _, s := range a.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	fmt.Fprintln(w)
}
