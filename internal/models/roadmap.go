package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	TaskNotStarted = "not_started"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskSkipped    = "skipped"
)

const (
	ScenarioDream   = "dream"
	ScenarioReality = "reality"
	ScenarioFuture  = "future"
)

type RoadmapTask struct {
	ID        string    `bson:"id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Status    string    `bson:"status" json:"status"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type RoadmapMilestoneRef struct {
	ID    string        `bson:"id" json:"id"`
	Title string        `bson:"title" json:"title"`
	Order int           `bson:"order" json:"order"`
	Tasks []RoadmapTask `bson:"tasks" json:"tasks"`
}

type RoadmapScenario struct {
	Kind       string                `bson:"kind" json:"kind"`
	Milestones []RoadmapMilestoneRef `bson:"milestones" json:"milestones"`
	Completion float64               `bson:"completion" json:"completion"`
}

// RoadmapPlan holds the three scenario projections for one user.
type RoadmapPlan struct {
	ID        bson.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID    string            `bson:"userId" json:"userId"`
	Scenarios []RoadmapScenario `bson:"scenarios" json:"scenarios"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// CanTransitionTask reports whether a task may move from one status to
// another. Skipped and completed are terminal.
func CanTransitionTask(from, to string) bool {
	switch from {
	case TaskNotStarted:
		return to == TaskInProgress || to == TaskSkipped
	case TaskInProgress:
		return to == TaskCompleted || to == TaskSkipped
	default:
		return false
	}
}

// ScenarioCompletion is the share of tasks in terminal success state,
// rounded to whole percent. Skipped tasks are excluded from the denominator.
func ScenarioCompletion(s RoadmapScenario) float64 {
	total, done := 0, 0
	for _, m := range s.Milestones {
		for _, t := range m.Tasks {
			if t.Status == TaskSkipped {
				continue
			}
			total++
			if t.Status == TaskCompleted {
				done++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(done*100) / float64(total)
}
