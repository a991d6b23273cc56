package screening

import (
	apperrors "candidate-screening/internal/common/errors"
	"candidate-screening/internal/workflow"
)

// routeKey is the router's input domain: 2 verdicts x 3 levels.
type routeKey struct {
	Skill SkillMatch
	Level ExperienceLevel
}

func routeDomain() []routeKey {
	out := make([]routeKey, 0, len(SkillMatches)*len(ExperienceLevels))
	for _, m := range SkillMatches {
		for _, l := range ExperienceLevels {
			out = append(out, routeKey{Skill: m, Level: l})
		}
	}
	return out
}

// routeTable: a match always goes to interview; a senior mismatch is
// escalated; any other mismatch is rejected.
var routeTable = map[routeKey]workflow.StageID{
	{Match, EntryLevel}:    StageScheduleInterview,
	{Match, MidLevel}:      StageScheduleInterview,
	{Match, SeniorLevel}:   StageScheduleInterview,
	{NoMatch, SeniorLevel}: StageEscalateToRecruiter,
	{NoMatch, EntryLevel}:  StageRejectApplication,
	{NoMatch, MidLevel}:    StageRejectApplication,
}

func routeKeyOf(s State) (routeKey, error) {
	if s.SkillMatch == nil {
		return routeKey{}, apperrors.NewMissingFieldError(FieldSkillMatch)
	}
	if s.ExperienceLevel == nil {
		return routeKey{}, apperrors.NewMissingFieldError(FieldExperienceLevel)
	}
	return routeKey{Skill: *s.SkillMatch, Level: *s.ExperienceLevel}, nil
}

// newRouter returns the decision table evaluated after assess-skillset.
func newRouter() *workflow.DecisionTable[State, routeKey] {
	return workflow.NewDecisionTable[State, routeKey](routeKeyOf, routeDomain(), routeTable)
}

// Route picks the terminal stage for a verdict and level.
func Route(match SkillMatch, level ExperienceLevel) (workflow.StageID, error) {
	return newRouter().Next(State{SkillMatch: &match, ExperienceLevel: &level})
}
