package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Intake is a target start term, e.g. {fall 2026}.
type Intake struct {
	Semester string `bson:"semester" json:"semester"`
	Year     int    `bson:"year" json:"year"`
}

type TargetProgram struct {
	University string `bson:"university" json:"university"`
	Program    string `bson:"program" json:"program"`
	Country    string `bson:"country,omitempty" json:"country,omitempty"`
}

// UserProfile lives in `user_profiles`. The collection predates the camelCase
// convention and keys the owner as `user_id`.
type UserProfile struct {
	ID             bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID         string          `bson:"user_id" json:"userId"`
	RealityContext string          `bson:"reality_context,omitempty" json:"realityContext,omitempty"`
	Goals          []string        `bson:"goals,omitempty" json:"goals,omitempty"`
	TargetPrograms []TargetProgram `bson:"target_programs,omitempty" json:"targetPrograms,omitempty"`
	StageProgress  map[string]bool `bson:"stage_progress,omitempty" json:"stageProgress,omitempty"`
	CreatedAt      time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updated_at" json:"updatedAt"`
}

// SmartProfile lives in `smart_profiles`, also keyed by `user_id`. It is
// seeded from the dream-chat transcript during migration and refined as the
// user progresses.
type SmartProfile struct {
	ID              bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string        `bson:"user_id" json:"userId"`
	DreamCountries  []string      `bson:"dream_countries,omitempty" json:"dreamCountries,omitempty"`
	DegreeType      string        `bson:"degree_type,omitempty" json:"degreeType,omitempty"`
	FieldOfStudy    string        `bson:"field_of_study,omitempty" json:"fieldOfStudy,omitempty"`
	Budget          string        `bson:"budget,omitempty" json:"budget,omitempty"`
	TargetIntake    *Intake       `bson:"target_intake,omitempty" json:"targetIntake,omitempty"`
	FutureAmbitions string        `bson:"future_ambitions,omitempty" json:"futureAmbitions,omitempty"`
	MigratedFrom    string        `bson:"migrated_from,omitempty" json:"migratedFrom,omitempty"`
	CreatedAt       time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time     `bson:"updated_at" json:"updatedAt"`
}
