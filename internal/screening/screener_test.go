package screening

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"candidate-screening/internal/classifier"
	apperrors "candidate-screening/internal/common/errors"
	"candidate-screening/internal/common/logger"
	"candidate-screening/internal/models"
	"candidate-screening/internal/workflow"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test helpers
// ==========================

var fixedNow = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

type call struct {
	description string
	payload     interface{}
}

// scripted answers categorize calls with level and assess calls with match.
type scripted struct {
	mu    sync.Mutex
	level string
	match string
	calls []call
}

func (s *scripted) Classify(_ context.Context, description string, payload interface{}) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{description: description, payload: payload})
	if _, ok := payload.(*models.Application); ok {
		return s.level, nil
	}
	return s.match, nil
}

func newScreener(t *testing.T, c classifier.Classifier) *Screener {
	t.Helper()
	s, err := New(Deps{
		Classifier: c,
		Clock:      func() time.Time { return fixedNow },
		Logger:     logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return s
}

func sampleApplication(email string) *models.Application {
	app := &models.Application{
		Name:    "Ada Lovelace",
		Contact: map[string]string{"phone": "555-0100"},
		Experience: []models.Experience{
			{Title: "Backend Engineer", Company: "Analytical Engines", Duration: "2019-2024"},
		},
		Skills:    []string{"Go", "PostgreSQL", "Kubernetes"},
		Education: []models.Education{{Degree: "BSc Mathematics", Institution: "University of London"}},
	}
	if email != "" {
		app.Contact["email"] = email
	}
	return app
}

// ==========================
// Scenarios
// ==========================

func TestScreen_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		level        string
		match        string
		email        string
		wantOutcome  workflow.StageID
		wantLevel    ExperienceLevel
		wantMatch    SkillMatch
		wantResponse string
	}{
		{
			name:         "match mid-level is shortlisted",
			level:        "Mid-level",
			match:        "Match",
			email:        "ada@example.com",
			wantOutcome:  StageScheduleInterview,
			wantLevel:    MidLevel,
			wantMatch:    Match,
			wantResponse: "Candidate has been shortlisted for an HR interview.",
		},
		{
			name:         "senior mismatch escalates without email",
			level:        "Senior-level",
			match:        "No Match",
			wantOutcome:  StageEscalateToRecruiter,
			wantLevel:    SeniorLevel,
			wantMatch:    NoMatch,
			wantResponse: "Candidate has senior-level experience but doesn't match job skills.",
		},
		{
			name:         "entry mismatch is rejected",
			level:        "Entry-level",
			match:        "No Match",
			email:        "a@b.com",
			wantOutcome:  StageRejectApplication,
			wantLevel:    EntryLevel,
			wantMatch:    NoMatch,
			wantResponse: "Candidate doesn't meet JD and has been rejected, Sending rejection mail at a@b.com",
		},
		{
			name:         "lenient classifier text",
			level:        " senior level\n",
			match:        "match.",
			wantOutcome:  StageScheduleInterview,
			wantLevel:    SeniorLevel,
			wantMatch:    Match,
			wantResponse: ResponseShortlisted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &scripted{level: tt.level, match: tt.match}
			result, err := newScreener(t, c).Screen(context.Background(), sampleApplication(tt.email), "Go Developer")

			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, result.Outcome)
			assert.Equal(t, tt.wantLevel, result.ExperienceLevel)
			assert.Equal(t, tt.wantMatch, result.SkillMatch)
			assert.Equal(t, tt.wantResponse, result.Response)
			assert.Equal(t, "Go Developer", result.Role)
			assert.Equal(t, fixedNow, result.CompletedAt)
			assert.Equal(t, []workflow.StageID{StageCategorizeExperience, StageAssessSkillset, tt.wantOutcome}, result.Path)
			assert.Len(t, c.calls, 2)
		})
	}
}

func TestScreen_ClassifierInputs(t *testing.T) {
	c := &scripted{level: "Mid-level", match: "Match"}
	app := sampleApplication("ada@example.com")

	_, err := newScreener(t, c).Screen(context.Background(), app, "Go Developer")
	require.NoError(t, err)
	require.Len(t, c.calls, 2)

	assert.Contains(t, c.calls[0].description, "2025-03-14")
	assert.Same(t, app, c.calls[0].payload)

	assert.Contains(t, c.calls[1].description, "Go Developer")
	assert.Equal(t, skillsPayload{Role: "Go Developer", Skills: app.Skills}, c.calls[1].payload)
}

func TestScreen_UnknownLevelFailsBeforeRouting(t *testing.T) {
	c := &scripted{level: "Unknown", match: "Match"}
	result, err := newScreener(t, c).Screen(context.Background(), sampleApplication("a@b.com"), "Go Developer")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrClassification)

	var stageErr *workflow.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageCategorizeExperience, stageErr.Stage)
	assert.Len(t, c.calls, 1, "assess-skillset must not run")
}

func TestScreen_UnrecognizedSkillVerdict(t *testing.T) {
	c := &scripted{level: "Mid-level", match: "Partial"}
	_, err := newScreener(t, c).Screen(context.Background(), sampleApplication("a@b.com"), "Go Developer")

	var stageErr *workflow.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageAssessSkillset, stageErr.Stage)
	assert.ErrorIs(t, err, apperrors.ErrClassification)
}

func TestScreen_RejectWithoutEmail(t *testing.T) {
	for _, email := range []string{"", "   "} {
		t.Run("email="+strings.TrimSpace(email), func(t *testing.T) {
			app := sampleApplication("")
			if email != "" {
				app.Contact["email"] = email
			}
			c := &scripted{level: "Entry-level", match: "No Match"}

			result, err := newScreener(t, c).Screen(context.Background(), app, "Go Developer")

			assert.Nil(t, result)
			assert.ErrorIs(t, err, apperrors.ErrMissingField)
			assert.NotContains(t, err.Error(), "None")
			var stageErr *workflow.StageError
			require.True(t, errors.As(err, &stageErr))
			assert.Equal(t, StageRejectApplication, stageErr.Stage)
		})
	}
}

func TestScreen_ClassifierUnavailable(t *testing.T) {
	down := classifier.Func(func(context.Context, string, interface{}) (string, error) {
		return "", apperrors.NewClassifierUnavailableError(errors.New("connection refused"))
	})

	_, err := newScreener(t, down).Screen(context.Background(), sampleApplication("a@b.com"), "Go Developer")
	assert.ErrorIs(t, err, apperrors.ErrClassifierUnavailable)
}

func TestScreen_CachedUnparseableLevelIsRetriedOnResubmission(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	var mu sync.Mutex
	levels := []string{"Unknown", "Mid-level"}
	categorizeCalls := 0
	inner := classifier.Func(func(_ context.Context, description string, _ interface{}) (string, error) {
		if !strings.HasPrefix(description, categorizePrefix) {
			return "Match", nil
		}
		mu.Lock()
		defer mu.Unlock()
		text := levels[categorizeCalls]
		categorizeCalls++
		return text, nil
	})
	cached := classifier.NewCached(inner, rdb, time.Hour, "test:", logger.NewTestLogger(t), classifier.WithAccept(Cacheable))
	s := newScreener(t, cached)
	app := sampleApplication("a@b.com")

	_, err := s.Screen(context.Background(), app, "Go Developer")
	require.ErrorIs(t, err, apperrors.ErrClassification)
	assert.Empty(t, mr.Keys())

	result, err := s.Screen(context.Background(), app, "Go Developer")
	require.NoError(t, err)
	assert.Equal(t, MidLevel, result.ExperienceLevel)
	assert.Equal(t, 2, categorizeCalls)
	assert.Len(t, mr.Keys(), 2)
}

func TestScreen_InputValidation(t *testing.T) {
	s := newScreener(t, &scripted{level: "Mid-level", match: "Match"})

	_, err := s.Screen(context.Background(), nil, "Go Developer")
	assert.ErrorIs(t, err, apperrors.ErrMissingField)

	_, err = s.Screen(context.Background(), sampleApplication("a@b.com"), "  ")
	assert.ErrorIs(t, err, apperrors.ErrMissingField)
}

func TestScreen_Idempotent(t *testing.T) {
	s := newScreener(t, &scripted{level: "Entry-level", match: "No Match"})
	app := sampleApplication("a@b.com")

	first, err := s.Screen(context.Background(), app, "Go Developer")
	require.NoError(t, err)
	second, err := s.Screen(context.Background(), app, "Go Developer")
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	second.RunID = first.RunID
	assert.Equal(t, first, second)
}

func TestScreen_ConcurrentCalls(t *testing.T) {
	s := newScreener(t, classifier.Func(func(_ context.Context, _ string, payload interface{}) (string, error) {
		if app, ok := payload.(*models.Application); ok {
			if app.Name == "senior" {
				return "Senior-level", nil
			}
			return "Entry-level", nil
		}
		return "No Match", nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			app := sampleApplication("a@b.com")
			want := StageRejectApplication
			if i%2 == 0 {
				app.Name = "senior"
				want = StageEscalateToRecruiter
			}
			result, err := s.Screen(context.Background(), app, "Go Developer")
			if assert.NoError(t, err) {
				assert.Equal(t, want, result.Outcome)
			}
		}(i)
	}
	wg.Wait()
}

func TestNew_RequiresClassifier(t *testing.T) {
	_, err := New(Deps{})
	assert.ErrorIs(t, err, apperrors.ErrGraphDefinition)
}
