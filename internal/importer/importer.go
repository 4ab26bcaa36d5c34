// Package importer normalizes application rows imported from CSV, Excel
// exports, or CommonApp-shaped JSON into Application documents. Rows fail
// individually; a bad row never aborts the batch.
package importer

import (
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"edulens-backend/internal/models"
)

// Row is one import row before normalization. All fields are free text.
type Row struct {
	UniversityName string `json:"universityName"`
	ProgramName    string `json:"programName"`
	Country        string `json:"country"`
	DegreeType     string `json:"degreeType"`
	Status         string `json:"status"`
	Term           string `json:"term"`
	Deadline       string `json:"deadline"`
	Notes          string `json:"notes"`
}

// RowError reports one failed row, 1-based.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

var (
	ErrMissingUniversity = errors.New("universityName is required")
	ErrMissingProgram    = errors.New("programName is required")
)

// Normalize turns a free-text row into an Application, or fails the row.
func Normalize(row Row, userID, batchID string, now time.Time) (*models.Application, error) {
	university := strings.TrimSpace(row.UniversityName)
	if university == "" {
		return nil, ErrMissingUniversity
	}
	program := strings.TrimSpace(row.ProgramName)
	if program == "" {
		return nil, ErrMissingProgram
	}

	status := NormalizeStatus(row.Status)
	app := &models.Application{
		UserID:         userID,
		UniversityName: university,
		ProgramName:    program,
		Country:        strings.TrimSpace(row.Country),
		DegreeType:     strings.ToLower(strings.TrimSpace(row.DegreeType)),
		Status:         status,
		StatusHistory:  []models.StatusChange{{Status: status, ChangedAt: now, Note: "imported"}},
		Term:           ParseTerm(row.Term),
		Deadline:       ParseDeadline(row.Deadline),
		Notes:          strings.TrimSpace(row.Notes),
		ImportBatchID:  batchID,
	}
	return app, nil
}

// NormalizeStatus maps free text ("Accepted!!", "In Review") onto the status
// enum via substring matching. Unrecognized text becomes draft.
func NormalizeStatus(s string) string {
	text := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(text, "accept") || strings.Contains(text, "admit"):
		return models.AppStatusAccepted
	case strings.Contains(text, "reject") || strings.Contains(text, "denied") || strings.Contains(text, "declin"):
		return models.AppStatusRejected
	case strings.Contains(text, "waitlist") || strings.Contains(text, "wait list"):
		return models.AppStatusWaitlisted
	case strings.Contains(text, "interview"):
		return models.AppStatusInterview
	case strings.Contains(text, "review") || strings.Contains(text, "pending") || strings.Contains(text, "process"):
		return models.AppStatusUnderReview
	case strings.Contains(text, "submit") || strings.Contains(text, "applied") || strings.Contains(text, "sent"):
		return models.AppStatusSubmitted
	default:
		return models.AppStatusDraft
	}
}

var termRe = regexp.MustCompile(`(?i)\b(fall|spring|summer|winter)\b[ ,]*('?)(\d{2}|\d{4})\b`)

// ParseTerm extracts a semester/year pair from free text, or nil.
func ParseTerm(s string) *models.Intake {
	m := termRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}
	return &models.Intake{Semester: strings.ToLower(m[1]), Year: year}
}

var deadlineLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseDeadline tries the known spreadsheet date layouts, or nil.
func ParseDeadline(s string) *time.Time {
	text := strings.TrimSpace(s)
	if text == "" {
		return nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}
	return nil
}

// csv header aliases → Row field
var headerAliases = map[string]string{
	"university":      "universityName",
	"universityname":  "universityName",
	"school":          "universityName",
	"college":         "universityName",
	"institution":     "universityName",
	"program":         "programName",
	"programname":     "programName",
	"major":           "programName",
	"course":          "programName",
	"country":         "country",
	"degree":          "degreeType",
	"degreetype":      "degreeType",
	"level":           "degreeType",
	"status":          "status",
	"term":            "term",
	"intake":          "term",
	"semester":        "term",
	"deadline":        "deadline",
	"due":             "deadline",
	"duedate":         "deadline",
	"applicationdue":  "deadline",
	"notes":           "notes",
	"comments":        "notes",
}

// RowsFromCSV reads a CSV body with a header line into rows, matching
// headers case-insensitively against the known aliases.
func RowsFromCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	fields := make([]string, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), " ", ""))
		key = strings.ReplaceAll(key, "_", "")
		fields[i] = headerAliases[key]
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		var row Row
		for i, value := range record {
			if i >= len(fields) {
				break
			}
			switch fields[i] {
			case "universityName":
				row.UniversityName = value
			case "programName":
				row.ProgramName = value
			case "country":
				row.Country = value
			case "degreeType":
				row.DegreeType = value
			case "status":
				row.Status = value
			case "term":
				row.Term = value
			case "deadline":
				row.Deadline = value
			case "notes":
				row.Notes = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
