package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	AppStatusDraft       = "draft"
	AppStatusSubmitted   = "submitted"
	AppStatusUnderReview = "under_review"
	AppStatusInterview   = "interview_scheduled"
	AppStatusAccepted    = "accepted"
	AppStatusRejected    = "rejected"
	AppStatusWaitlisted  = "waitlisted"
)

var ApplicationStatuses = []string{
	AppStatusDraft,
	AppStatusSubmitted,
	AppStatusUnderReview,
	AppStatusInterview,
	AppStatusAccepted,
	AppStatusRejected,
	AppStatusWaitlisted,
}

func IsValidApplicationStatus(s string) bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type StatusChange struct {
	Status    string    `bson:"status" json:"status"`
	ChangedAt time.Time `bson:"changedAt" json:"changedAt"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
}

// Application is a single university application record.
type Application struct {
	ID             bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID         string         `bson:"userId" json:"userId"`
	UniversityName string         `bson:"universityName" json:"universityName"`
	ProgramName    string         `bson:"programName" json:"programName"`
	Country        string         `bson:"country,omitempty" json:"country,omitempty"`
	DegreeType     string         `bson:"degreeType,omitempty" json:"degreeType,omitempty"`
	Status         string         `bson:"status" json:"status"`
	StatusHistory  []StatusChange `bson:"statusHistory,omitempty" json:"statusHistory,omitempty"`
	Deadline       *time.Time     `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Term           *Intake        `bson:"term,omitempty" json:"term,omitempty"`
	Notes          string         `bson:"notes,omitempty" json:"notes,omitempty"`
	Documents      []string       `bson:"documents,omitempty" json:"documents,omitempty"`
	ImportBatchID  string         `bson:"importBatchId,omitempty" json:"importBatchId,omitempty"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time      `bson:"updatedAt" json:"updatedAt"`
}
