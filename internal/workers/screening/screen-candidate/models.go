package screencandidate

import (
	"encoding/json"

	"candidate-screening/internal/models"
	"candidate-screening/internal/notify"
	"candidate-screening/internal/screening"
	"candidate-screening/internal/workflow"
)

type Input struct {
	Application json.RawMessage `json:"application"`
	Role        string          `json:"role"`
}

type Output struct {
	RunID           string                    `json:"runId"`
	ExperienceLevel screening.ExperienceLevel `json:"experienceLevel"`
	SkillMatch      screening.SkillMatch      `json:"skillMatch"`
	Response        string                    `json:"response"`
	Outcome         workflow.StageID          `json:"outcome"`
	Notification    *notify.Notification      `json:"notification,omitempty"`
	Application     *models.Application       `json:"application"`
}
