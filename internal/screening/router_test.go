package screening

import (
	"testing"

	"candidate-screening/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoute_DecisionTable(t *testing.T) {
	tests := []struct {
		match SkillMatch
		level ExperienceLevel
		want  workflow.StageID
	}{
		{Match, EntryLevel, StageScheduleInterview},
		{Match, MidLevel, StageScheduleInterview},
		{Match, SeniorLevel, StageScheduleInterview},
		{NoMatch, SeniorLevel, StageEscalateToRecruiter},
		{NoMatch, EntryLevel, StageRejectApplication},
		{NoMatch, MidLevel, StageRejectApplication},
	}

	for _, tt := range tests {
		t.Run(string(tt.match)+"/"+string(tt.level), func(t *testing.T) {
			got, err := Route(tt.match, tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouter_TotalOverDomain(t *testing.T) {
	r := newRouter()
	require.NoError(t, r.Validate())
	assert.Len(t, routeDomain(), 6)
	assert.ElementsMatch(t,
		[]workflow.StageID{StageScheduleInterview, StageEscalateToRecruiter, StageRejectApplication},
		r.Targets())
}

func TestRouter_MissingFields(t *testing.T) {
	match := Match
	_, err := newRouter().Next(State{SkillMatch: &match})
	assert.Error(t, err)
	_, err = newRouter().Next(State{})
	assert.Error(t, err)
}
