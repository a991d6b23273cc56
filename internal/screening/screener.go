// Package screening screens a candidate application: it categorizes
// experience, assesses skills against a role and routes to one of three
// terminal outcomes.
package screening

import (
	"context"
	"strings"
	"time"

	"candidate-screening/internal/classifier"
	apperrors "candidate-screening/internal/common/errors"
	"candidate-screening/internal/common/logger"
	"candidate-screening/internal/models"
	"candidate-screening/internal/workflow"
)

const GraphName = "candidate-screening"

// Deps are the collaborators a Screener needs.
type Deps struct {
	Classifier classifier.Classifier
	// Clock defaults to time.Now.
	Clock     func() time.Time
	Logger    logger.Logger
	Observers []workflow.Observer
}

// Result is the outcome of one screening run.
type Result struct {
	RunID           string             `json:"runId"`
	Role            string             `json:"role"`
	ExperienceLevel ExperienceLevel    `json:"experienceLevel"`
	SkillMatch      SkillMatch         `json:"skillMatch"`
	Response        string             `json:"response"`
	Outcome         workflow.StageID   `json:"outcome"`
	Path            []workflow.StageID `json:"path"`
	CompletedAt     time.Time          `json:"completedAt"`
}

// Screener holds the compiled screening graph. It is safe for concurrent use.
type Screener struct {
	runnable *workflow.Runnable[State, Update]
	now      func() time.Time
	logger   logger.Logger
}

// New compiles the screening graph.
func New(deps Deps) (*Screener, error) {
	if deps.Classifier == nil {
		return nil, apperrors.NewGraphDefinitionError("screening requires a classifier")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}

	st := &stages{classifier: deps.Classifier, now: deps.Clock}
	runnable, err := buildGraph(st).Compile(workflow.WithObserver(deps.Observers...))
	if err != nil {
		return nil, err
	}

	return &Screener{
		runnable: runnable,
		now:      deps.Clock,
		logger:   deps.Logger,
	}, nil
}

func buildGraph(st *stages) *workflow.Graph[State, Update] {
	return workflow.NewGraph[State, Update](GraphName, merge).
		AddStage(StageCategorizeExperience, []string{FieldExperienceLevel}, st.categorizeExperience).
		AddStage(StageAssessSkillset, []string{FieldSkillMatch}, st.assessSkillset).
		AddStage(StageScheduleInterview, []string{FieldResponse}, scheduleInterview).
		AddStage(StageEscalateToRecruiter, []string{FieldResponse}, escalateToRecruiter).
		AddStage(StageRejectApplication, []string{FieldResponse}, rejectApplication).
		SetEntry(StageCategorizeExperience).
		AddEdge(StageCategorizeExperience, StageAssessSkillset).
		AddBranch(StageAssessSkillset, newRouter(),
			StageScheduleInterview, StageEscalateToRecruiter, StageRejectApplication)
}

// Screen runs the workflow once for app and role.
func (s *Screener) Screen(ctx context.Context, app *models.Application, role string) (*Result, error) {
	if app == nil {
		return nil, apperrors.NewMissingFieldError("application")
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, apperrors.NewMissingFieldError("role")
	}

	run, err := s.runnable.Invoke(ctx, State{Application: app, Role: role})
	if err != nil {
		return nil, err
	}

	final := run.State
	if final.ExperienceLevel == nil || final.SkillMatch == nil || final.Response == nil {
		return nil, apperrors.NewGraphDefinitionError("run finished without a complete result")
	}

	return &Result{
		RunID:           run.ID,
		Role:            role,
		ExperienceLevel: *final.ExperienceLevel,
		SkillMatch:      *final.SkillMatch,
		Response:        *final.Response,
		Outcome:         run.Terminal,
		Path:            run.Path,
		CompletedAt:     s.now().UTC(),
	}, nil
}
