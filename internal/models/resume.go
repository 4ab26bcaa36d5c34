package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ResumePersonalInfo struct {
	FullName string `bson:"fullName" json:"fullName"`
	Email    string `bson:"email,omitempty" json:"email,omitempty"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Location string `bson:"location,omitempty" json:"location,omitempty"`
	LinkedIn string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Website  string `bson:"website,omitempty" json:"website,omitempty"`
	Summary  string `bson:"summary,omitempty" json:"summary,omitempty"`
}

type ResumeExperience struct {
	Title     string   `bson:"title" json:"title"`
	Company   string   `bson:"company" json:"company"`
	Location  string   `bson:"location,omitempty" json:"location,omitempty"`
	StartDate string   `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate   string   `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Current   bool     `bson:"current,omitempty" json:"current,omitempty"`
	Bullets   []string `bson:"bullets,omitempty" json:"bullets,omitempty"`
}

type ResumeEducation struct {
	School    string `bson:"school" json:"school"`
	Degree    string `bson:"degree,omitempty" json:"degree,omitempty"`
	Field     string `bson:"field,omitempty" json:"field,omitempty"`
	StartDate string `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate   string `bson:"endDate,omitempty" json:"endDate,omitempty"`
	GPA       string `bson:"gpa,omitempty" json:"gpa,omitempty"`
}

type ResumeProject struct {
	Name        string   `bson:"name" json:"name"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Tech        []string `bson:"tech,omitempty" json:"tech,omitempty"`
	URL         string   `bson:"url,omitempty" json:"url,omitempty"`
}

type ResumeCertification struct {
	Name   string `bson:"name" json:"name"`
	Issuer string `bson:"issuer,omitempty" json:"issuer,omitempty"`
	Date   string `bson:"date,omitempty" json:"date,omitempty"`
}

type ResumeDesign struct {
	Template    string `bson:"template,omitempty" json:"template,omitempty"`
	AccentColor string `bson:"accentColor,omitempty" json:"accentColor,omitempty"`
	FontFamily  string `bson:"fontFamily,omitempty" json:"fontFamily,omitempty"`
}

// AIScore caches the last heuristic analysis. GeneratedAt and ContentHash
// together decide whether a re-analysis can be served from cache.
type AIScore struct {
	Overall     int            `bson:"overall" json:"overall"`
	Grade       string         `bson:"grade" json:"grade"`
	Sections    map[string]int `bson:"sections" json:"sections"`
	ContentHash string         `bson:"contentHash" json:"contentHash"`
	GeneratedAt time.Time      `bson:"generatedAt" json:"generatedAt"`
}

type Resume struct {
	ID             bson.ObjectID         `bson:"_id,omitempty" json:"id"`
	UserID         string                `bson:"userId" json:"userId"`
	PersonalInfo   ResumePersonalInfo    `bson:"personalInfo" json:"personalInfo"`
	Experience     []ResumeExperience    `bson:"experience,omitempty" json:"experience,omitempty"`
	Education      []ResumeEducation     `bson:"education,omitempty" json:"education,omitempty"`
	Skills         []string              `bson:"skills,omitempty" json:"skills,omitempty"`
	Projects       []ResumeProject       `bson:"projects,omitempty" json:"projects,omitempty"`
	Certifications []ResumeCertification `bson:"certifications,omitempty" json:"certifications,omitempty"`
	Design         ResumeDesign          `bson:"design,omitempty" json:"design,omitempty"`
	AIScore        *AIScore              `bson:"aiScore,omitempty" json:"aiScore,omitempty"`
	CreatedAt      time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time             `bson:"updatedAt" json:"updatedAt"`
}
