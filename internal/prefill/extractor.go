// Package prefill classifies dream-chat transcripts into structured signup
// prefill fields. It is a fixed pattern-table scan: first match wins per
// category, and each pattern carries a confidence tier.
package prefill

import (
	"regexp"
	"strconv"
	"strings"

	"edulens-backend/internal/models"
)

type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Extraction holds every field the classifier found, with its confidence.
type Extraction struct {
	DreamCountries     []string       `json:"dreamCountries,omitempty"`
	CountriesConf      Confidence     `json:"countriesConfidence,omitempty"`
	DegreeType         string         `json:"degreeType,omitempty"`
	DegreeConf         Confidence     `json:"degreeConfidence,omitempty"`
	FieldOfStudy       string         `json:"fieldOfStudy,omitempty"`
	FieldConf          Confidence     `json:"fieldConfidence,omitempty"`
	Budget             string         `json:"budget,omitempty"`
	BudgetConf         Confidence     `json:"budgetConfidence,omitempty"`
	TargetIntake       *models.Intake `json:"targetIntake,omitempty"`
	IntakeConf         Confidence     `json:"intakeConfidence,omitempty"`
}

// Data is the prefill object handed to the signup form. Only high and
// medium confidence extractions make it in.
type Data struct {
	DreamCountries []string       `json:"dreamCountries,omitempty"`
	DegreeType     string         `json:"degreeType,omitempty"`
	FieldOfStudy   string         `json:"fieldOfStudy,omitempty"`
	Budget         string         `json:"budget,omitempty"`
	TargetIntake   *models.Intake `json:"targetIntake,omitempty"`
}

type countryPattern struct {
	re        *regexp.Regexp
	canonical string
	conf      Confidence
}

var countryPatterns = []countryPattern{
	{regexp.MustCompile(`\b(usa|u\.s\.a?\.?|us|united states|america)\b`), "USA", High},
	{regexp.MustCompile(`\bstates\b`), "USA", Medium},
	{regexp.MustCompile(`\b(uk|u\.k\.|united kingdom|britain|england)\b`), "UK", High},
	{regexp.MustCompile(`\bcanada\b`), "Canada", High},
	{regexp.MustCompile(`\baustralia\b`), "Australia", High},
	{regexp.MustCompile(`\bgermany\b`), "Germany", High},
}

type degreePattern struct {
	re   *regexp.Regexp
	kind string
	conf Confidence
}

var degreePatterns = []degreePattern{
	{regexp.MustCompile(`\b(master'?s?|msc|m\.s\.|ms degree|graduate school|grad school)\b`), "master", High},
	{regexp.MustCompile(`\b(bachelor'?s?|bsc|b\.s\.|undergrad(uate)?)\b`), "bachelor", High},
	{regexp.MustCompile(`\b(phd|ph\.d\.|doctorate|doctoral)\b`), "phd", High},
	{regexp.MustCompile(`\bmba\b`), "mba", High},
}

type fieldPattern struct {
	substr    string
	canonical string
	conf      Confidence
}

// Order matters: more specific substrings come before generic ones.
var fieldPatterns = []fieldPattern{
	{"computer science", "Computer Science", High},
	{"software engineering", "Computer Science", High},
	{"data science", "Data Science", High},
	{"artificial intelligence", "Data Science", Medium},
	{"machine learning", "Data Science", Medium},
	{"mechanical engineering", "Engineering", High},
	{"electrical engineering", "Engineering", High},
	{"civil engineering", "Engineering", High},
	{"engineering", "Engineering", Medium},
	{"business administration", "Business", High},
	{"business", "Business", Medium},
	{"finance", "Business", Medium},
	{"medicine", "Medicine", High},
	{"medical school", "Medicine", High},
	{"law school", "Law", High},
	{"law degree", "Law", High},
	{"psychology", "Psychology", High},
	{"economics", "Economics", High},
	{"design", "Design", Medium},
}

const (
	BudgetUnder20k = "under_20k"
	Budget20kTo50k = "20k_50k"
	BudgetOver50k  = "over_50k"
)

var (
	amountRe      = regexp.MustCompile(`\$?\s?(\d{1,3})\s?k\b|\$\s?(\d{4,6})\b`)
	fundingRe     = regexp.MustCompile(`scholarship|financial aid|funding|stipend|can'?t afford|low budget|cheap`)
	intakeRe      = regexp.MustCompile(`\b(fall|spring|summer|winter)\b[ ,]*('?)(\d{2}|\d{4})\b`)
	bareYearRe    = regexp.MustCompile(`\b(start|begin|intake|by|in)\b[^.]*\b(20\d{2})\b`)
)

// Extract scans the user messages of a transcript against the pattern
// tables. Assistant turns are ignored.
func Extract(messages []Message) Extraction {
	var e Extraction
	for _, msg := range messages {
		if msg.Role != "user" {
			continue
		}
		text := strings.ToLower(msg.Content)

		if e.CountriesConf == "" {
			for _, p := range countryPatterns {
				if p.re.MatchString(text) {
					e.DreamCountries = []string{p.canonical}
					e.CountriesConf = p.conf
					break
				}
			}
		}
		if e.DegreeConf == "" {
			for _, p := range degreePatterns {
				if p.re.MatchString(text) {
					e.DegreeType = p.kind
					e.DegreeConf = p.conf
					break
				}
			}
		}
		if e.FieldConf == "" {
			for _, p := range fieldPatterns {
				if strings.Contains(text, p.substr) {
					e.FieldOfStudy = p.canonical
					e.FieldConf = p.conf
					break
				}
			}
		}
		if e.BudgetConf == "" {
			if band, ok := amountBand(text); ok {
				e.Budget = band
				e.BudgetConf = High
			} else if fundingRe.MatchString(text) {
				e.Budget = BudgetUnder20k
				e.BudgetConf = Medium
			}
		}
		if e.IntakeConf == "" {
			if m := intakeRe.FindStringSubmatch(text); m != nil {
				e.TargetIntake = &models.Intake{Semester: m[1], Year: normalizeYear(m[3])}
				e.IntakeConf = High
			} else if m := bareYearRe.FindStringSubmatch(text); m != nil {
				year, _ := strconv.Atoi(m[2])
				e.TargetIntake = &models.Intake{Semester: "fall", Year: year}
				e.IntakeConf = Medium
			}
		}
	}
	return e
}

// Prefill copies high and medium confidence fields into the signup prefill
// object; low confidence values are dropped.
func (e Extraction) Prefill() Data {
	var d Data
	if usable(e.CountriesConf) {
		d.DreamCountries = e.DreamCountries
	}
	if usable(e.DegreeConf) {
		d.DegreeType = e.DegreeType
	}
	if usable(e.FieldConf) {
		d.FieldOfStudy = e.FieldOfStudy
	}
	if usable(e.BudgetConf) {
		d.Budget = e.Budget
	}
	if usable(e.IntakeConf) {
		d.TargetIntake = e.TargetIntake
	}
	return d
}

func usable(c Confidence) bool {
	return c == High || c == Medium
}

func amountBand(text string) (string, bool) {
	m := amountRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	var amount int
	if m[1] != "" {
		n, _ := strconv.Atoi(m[1])
		amount = n * 1000
	} else {
		amount, _ = strconv.Atoi(m[2])
	}
	switch {
	case amount < 20000:
		return BudgetUnder20k, true
	case amount <= 50000:
		return Budget20kTo50k, true
	default:
		return BudgetOver50k, true
	}
}

func normalizeYear(s string) int {
	n, _ := strconv.Atoi(s)
	if n < 100 {
		n += 2000
	}
	return n
}
