package ats

import (
	"testing"

	"edulens-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func sections(suggestions []Suggestion) []string {
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.Section)
	}
	return out
}

func TestOptimizeEmptyResumeFlagsEverything(t *testing.T) {
	got := sections(Optimize(&models.Resume{}))

	assert.Contains(t, got, "contact")
	assert.Contains(t, got, "summary")
	assert.Contains(t, got, "experience")
	assert.Contains(t, got, "education")
	assert.Contains(t, got, "skills")
}

func TestOptimizeStrongResumeIsQuiet(t *testing.T) {
	assert.Empty(t, Optimize(strongResume()))
}

func TestOptimizeFlagsUnquantifiedBullets(t *testing.T) {
	r := strongResume()
	r.Experience[0].Bullets = []string{"responsible for stuff"}

	suggestions := Optimize(r)
	got := sections(suggestions)
	assert.Contains(t, got, "experience")

	// Suggestions are static template strings, not generated content
	for _, s := range suggestions {
		assert.NotEmpty(t, s.Severity)
		assert.NotEmpty(t, s.Message)
	}
}
