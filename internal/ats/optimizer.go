package ats

import (
	"strings"

	"edulens-backend/internal/models"
)

type Suggestion struct {
	Section  string `json:"section"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Optimize returns static suggestion strings keyed by which scoring
// heuristics the resume fails. No content is generated.
func Optimize(r *models.Resume) []Suggestion {
	suggestions := []Suggestion{}

	p := r.PersonalInfo
	if p.Email == "" || p.Phone == "" {
		suggestions = append(suggestions, Suggestion{
			Section:  "contact",
			Severity: "high",
			Message:  "Add an email address and phone number — recruiters discard resumes they cannot reply to.",
		})
	}
	if p.LinkedIn == "" && p.Website == "" {
		suggestions = append(suggestions, Suggestion{
			Section:  "contact",
			Severity: "low",
			Message:  "Link a LinkedIn profile or personal site to give reviewers more context.",
		})
	}
	if strings.TrimSpace(p.Summary) == "" {
		suggestions = append(suggestions, Suggestion{
			Section:  "summary",
			Severity: "medium",
			Message:  "Write a 2-3 sentence professional summary; ATS keyword matching weighs the top of the document heavily.",
		})
	}

	if len(r.Experience) == 0 {
		suggestions = append(suggestions, Suggestion{
			Section:  "experience",
			Severity: "high",
			Message:  "Add work or internship experience; even volunteer projects count.",
		})
	} else {
		unquantified := false
		weakVerbs := false
		for _, exp := range r.Experience {
			for _, bullet := range exp.Bullets {
				if !metricRe.MatchString(bullet) {
					unquantified = true
				}
				if !startsWithActionVerb(bullet) {
					weakVerbs = true
				}
			}
		}
		if unquantified {
			suggestions = append(suggestions, Suggestion{
				Section:  "experience",
				Severity: "medium",
				Message:  "Quantify your bullet points with numbers, percentages, or dollar amounts (e.g. \"reduced load time by 40%\").",
			})
		}
		if weakVerbs {
			suggestions = append(suggestions, Suggestion{
				Section:  "experience",
				Severity: "low",
				Message:  "Start each bullet with a strong action verb such as \"led\", \"built\", or \"improved\".",
			})
		}
	}

	if len(r.Education) == 0 {
		suggestions = append(suggestions, Suggestion{
			Section:  "education",
			Severity: "high",
			Message:  "Add your education history — most university programs require it.",
		})
	}

	if len(r.Skills) < 5 {
		suggestions = append(suggestions, Suggestion{
			Section:  "skills",
			Severity: "medium",
			Message:  "List at least 5 skills; ATS systems match openings against the skills section first.",
		})
	}

	return suggestions
}
