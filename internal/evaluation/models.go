package evaluation

import (
	"github.com/mind-engage/mindengage-fuzzyeval/internal/grading"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/performance"
)

// Record is one persisted evaluation.
type Record struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	RuleBase  string `json:"rule_base"`

	Profile       performance.Profile `json:"profile"`
	Inputs        performance.Inputs  `json:"inputs"`
	MeanGrade     float64             `json:"mean_grade"`
	AdjustedGrade float64             `json:"adjusted_grade"`

	Centroid *float64          `json:"centroid,omitempty"` // nil when no rule fired
	Score    float64           `json:"score"`
	Label    performance.Label `json:"label"`
	Source   grading.Source    `json:"source"`
	Override string            `json:"override,omitempty"`

	CreatedBy string `json:"created_by,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// NewRecord captures a graded profile.
func NewRecord(id string, p performance.Profile, res grading.Result, createdBy string) Record {
	return Record{
		ID:            id,
		StudentID:     p.StudentID,
		Name:          p.Name,
		RuleBase:      res.RuleBase,
		Profile:       p,
		Inputs:        res.Inputs,
		MeanGrade:     res.MeanGrade,
		AdjustedGrade: res.AdjustedGrade,
		Centroid:      res.Centroid,
		Score:         res.Score,
		Label:         res.Label,
		Source:        res.Source,
		Override:      res.Override,
		CreatedBy:     createdBy,
		CreatedAt:     res.EvaluatedAt.Unix(),
	}
}
