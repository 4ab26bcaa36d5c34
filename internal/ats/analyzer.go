// Package ats scores resumes against fixed Applicant-Tracking-System
// heuristics: presence checks and regexes per section, combined with
// hard-coded weights into a 0-100 score.
package ats

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"edulens-backend/internal/models"
)

// CacheWindow is how long a stored score stays fresh for unchanged content.
const CacheWindow = 24 * time.Hour

type sectionWeight struct {
	name   string
	weight float64
}

var weights = []sectionWeight{
	{"contact", 0.15},
	{"summary", 0.15},
	{"experience", 0.35},
	{"education", 0.15},
	{"skills", 0.20},
}

var (
	metricRe = regexp.MustCompile(`\d+%|\$\d+|\d+\+|\b\d+x\b`)
	emailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

var actionVerbs = []string{
	"led", "built", "designed", "developed", "launched", "managed",
	"created", "improved", "increased", "reduced", "delivered",
	"implemented", "automated", "optimized", "mentored", "shipped",
}

// Flatten renders the resume as one text blob, the same shape the scoring
// regexes run against.
func Flatten(r *models.Resume) string {
	var b strings.Builder
	p := r.PersonalInfo
	for _, s := range []string{p.FullName, p.Email, p.Phone, p.Location, p.LinkedIn, p.Website, p.Summary} {
		if s != "" {
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	for _, exp := range r.Experience {
		b.WriteString(exp.Title + " " + exp.Company + " " + exp.StartDate + " " + exp.EndDate + "\n")
		for _, bullet := range exp.Bullets {
			b.WriteString(bullet + "\n")
		}
	}
	for _, edu := range r.Education {
		b.WriteString(edu.School + " " + edu.Degree + " " + edu.Field + " " + edu.GPA + "\n")
	}
	b.WriteString(strings.Join(r.Skills, ", ") + "\n")
	for _, proj := range r.Projects {
		b.WriteString(proj.Name + " " + proj.Description + "\n")
	}
	for _, cert := range r.Certifications {
		b.WriteString(cert.Name + " " + cert.Issuer + "\n")
	}
	return b.String()
}

// ContentHash fingerprints the flattened resume for cache comparisons.
func ContentHash(r *models.Resume) string {
	sum := sha256.Sum256([]byte(Flatten(r)))
	return hex.EncodeToString(sum[:])
}

// Fresh reports whether a cached score can be served instead of re-scoring:
// same content hash and generated within the cache window.
func Fresh(score *models.AIScore, hash string, now time.Time) bool {
	if score == nil {
		return false
	}
	return score.ContentHash == hash && now.Sub(score.GeneratedAt) < CacheWindow
}

// Analyze computes the weighted heuristic score.
func Analyze(r *models.Resume, now time.Time) *models.AIScore {
	sections := map[string]int{
		"contact":    scoreContact(r),
		"summary":    scoreSummary(r),
		"experience": scoreExperience(r),
		"education":  scoreEducation(r),
		"skills":     scoreSkills(r),
	}

	var overall float64
	for _, w := range weights {
		overall += float64(sections[w.name]) * w.weight
	}
	rounded := int(overall + 0.5)

	return &models.AIScore{
		Overall:     rounded,
		Grade:       grade(rounded),
		Sections:    sections,
		ContentHash: ContentHash(r),
		GeneratedAt: now,
	}
}

func grade(score int) string {
	switch {
	case score >= 85:
		return "A"
	case score >= 70:
		return "B"
	case score >= 55:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}

// Contact: 20 points per populated field, email must look like one.
func scoreContact(r *models.Resume) int {
	p := r.PersonalInfo
	score := 0
	if p.FullName != "" {
		score += 20
	}
	if emailRe.MatchString(p.Email) {
		score += 20
	}
	if p.Phone != "" {
		score += 20
	}
	if p.Location != "" {
		score += 20
	}
	if p.LinkedIn != "" || p.Website != "" {
		score += 20
	}
	return score
}

// Summary: present, and long enough to say something.
func scoreSummary(r *models.Resume) int {
	summary := strings.TrimSpace(r.PersonalInfo.Summary)
	switch {
	case summary == "":
		return 0
	case len(strings.Fields(summary)) < 15:
		return 50
	default:
		return 100
	}
}

// Experience: entries present, bullets quantified, bullets led by action verbs.
func scoreExperience(r *models.Resume) int {
	if len(r.Experience) == 0 {
		return 0
	}
	score := 40

	bullets := 0
	quantified := 0
	verbLed := 0
	for _, exp := range r.Experience {
		for _, bullet := range exp.Bullets {
			bullets++
			if metricRe.MatchString(bullet) {
				quantified++
			}
			if startsWithActionVerb(bullet) {
				verbLed++
			}
		}
	}
	if bullets == 0 {
		return score
	}
	if quantified*2 >= bullets {
		score += 30
	} else if quantified > 0 {
		score += 15
	}
	if verbLed*2 >= bullets {
		score += 30
	} else if verbLed > 0 {
		score += 15
	}
	return score
}

func startsWithActionVerb(bullet string) bool {
	fields := strings.Fields(strings.ToLower(bullet))
	if len(fields) == 0 {
		return false
	}
	for _, v := range actionVerbs {
		if fields[0] == v {
			return true
		}
	}
	return false
}

func scoreEducation(r *models.Resume) int {
	if len(r.Education) == 0 {
		return 0
	}
	score := 60
	complete := true
	for _, edu := range r.Education {
		if edu.Degree == "" || edu.Field == "" {
			complete = false
		}
	}
	if complete {
		score += 40
	}
	return score
}

func scoreSkills(r *models.Resume) int {
	switch n := len(r.Skills); {
	case n == 0:
		return 0
	case n < 5:
		return 40
	case n < 10:
		return 80
	default:
		return 100
	}
}
