// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candidate-screening/internal/classifier"
	"candidate-screening/internal/common/camunda"
	"candidate-screening/internal/common/config"
	"candidate-screening/internal/common/database"
	"candidate-screening/internal/common/logger"
	"candidate-screening/internal/ingest"
	"candidate-screening/internal/notify"
	"candidate-screening/internal/screening"
	"candidate-screening/internal/workflow"

	sc "candidate-screening/internal/workers/screening/screen-candidate"
)

// ==========================
// Fake GenAI service
// ==========================

type genAI struct {
	level string
	match string
	calls int32
}

func (g *genAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&g.calls, 1)

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	text := g.match
	switch {
	case strings.HasPrefix(req.Prompt, "Today's date"):
		text = g.level
	case strings.HasPrefix(req.Prompt, "Extract"):
		text = "```json\n" + applicationJSON + "\n```"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"text":       text,
		"confidence": 0.9,
		"sources":    []string{},
	})
}

type fakeSES struct{ sent int32 }

func (f *fakeSES) SendEmail(_ context.Context, _ *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	atomic.AddInt32(&f.sent, 1)
	return &ses.SendEmailOutput{MessageId: aws.String("ses-e2e")}, nil
}

type fakeSNS struct{ published int32 }

func (f *fakeSNS) Publish(_ context.Context, _ *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	atomic.AddInt32(&f.published, 1)
	return &sns.PublishOutput{MessageId: aws.String("sns-e2e")}, nil
}

const applicationJSON = `{
	"name": "Alan Turing",
	"contact": {"email": "alan@example.com", "phone": "555-0199"},
	"experience": [
		{"title": "Research Scientist", "company": "Bletchley Park", "duration": "1939-1945"},
		{"title": "Reader", "company": "University of Manchester", "duration": "1948-1954"}
	],
	"skills": ["Python", "python", "Cryptanalysis", " "],
	"education": [{"degree": "PhD Mathematics", "institution": "Princeton"}]
}`

// ==========================
// Stack wiring
// ==========================

type stack struct {
	handler *sc.Handler
	genai   *genAI
	ses     *fakeSES
	sns     *fakeSNS
	redis   *miniredis.Miniredis
}

func newStack(t *testing.T, level, match string) *stack {
	t.Helper()
	log := logger.NewTestLogger(t)

	g := &genAI{level: level, match: match}
	srv := httptest.NewServer(g)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rdb := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()))

	clf := classifier.NewCached(
		classifier.NewHTTPClassifier(&classifier.HTTPConfig{
			BaseURL: srv.URL,
			APIKey:  "e2e",
			Timeout: 5 * time.Second,
		}, log),
		rdb.GetClient(), time.Hour, "e2e:classify:", log, classifier.WithAccept(screening.Cacheable),
	)

	screener, err := screening.New(screening.Deps{
		Classifier: clf,
		Logger:     log,
		Observers: []workflow.Observer{
			screening.LogObserver{Logger: log},
			screening.MetricsObserver{},
		},
	})
	require.NoError(t, err)

	sesClient, snsClient := &fakeSES{}, &fakeSNS{}
	notifier := notify.NewNotifier(&notify.Config{
		EmailEnabled:      true,
		FromEmail:         "careers@example.com",
		EscalationEnabled: true,
		TopicARN:          "arn:aws:sns:us-east-1:000000000000:recruiters",
	}, sesClient, snsClient, log)

	return &stack{
		handler: sc.NewHandler(&sc.Config{Timeout: 10 * time.Second}, screener, notifier, log),
		genai:   g,
		ses:     sesClient,
		sns:     snsClient,
		redis:   mr,
	}
}

// ==========================
// Scenarios
// ==========================

func TestScreenCandidate_EndToEnd(t *testing.T) {
	tests := []struct {
		name          string
		level         string
		match         string
		wantOutcome   workflow.StageID
		wantEmails    int32
		wantEscalated int32
	}{
		{"shortlisted", "Mid-level", "Match", screening.StageScheduleInterview, 0, 0},
		{"escalated", "Senior-level", "No Match", screening.StageEscalateToRecruiter, 0, 1},
		{"rejected", "Entry-level", "No Match", screening.StageRejectApplication, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStack(t, tt.level, tt.match)

			out, err := s.handler.Execute(context.Background(), &sc.Input{
				Application: json.RawMessage(applicationJSON),
				Role:        "Python Developer",
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantOutcome, out.Outcome)
			assert.Equal(t, []string{"Python", "Cryptanalysis"}, out.Application.Skills)
			assert.Equal(t, tt.wantEmails, atomic.LoadInt32(&s.ses.sent))
			assert.Equal(t, tt.wantEscalated, atomic.LoadInt32(&s.sns.published))
			assert.EqualValues(t, 2, atomic.LoadInt32(&s.genai.calls))
			assert.Len(t, s.redis.Keys(), 2)
		})
	}
}

func TestScreenCandidate_RepeatedRunsHitCache(t *testing.T) {
	s := newStack(t, "Senior-level", "Match")
	input := &sc.Input{Application: json.RawMessage(applicationJSON), Role: "Python Developer"}

	first, err := s.handler.Execute(context.Background(), input)
	require.NoError(t, err)
	second, err := s.handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Outcome, second.Outcome)
	assert.EqualValues(t, 2, atomic.LoadInt32(&s.genai.calls))
}

func TestScreenCandidate_ClassifierDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	log := logger.NewTestLogger(t)
	screener, err := screening.New(screening.Deps{
		Classifier: classifier.NewHTTPClassifier(&classifier.HTTPConfig{BaseURL: srv.URL, Timeout: time.Second}, log),
		Logger:     log,
	})
	require.NoError(t, err)

	h := sc.NewHandler(&sc.Config{Timeout: 5 * time.Second}, screener, nil, log)
	_, err = h.Execute(context.Background(), &sc.Input{
		Application: json.RawMessage(applicationJSON),
		Role:        "Python Developer",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLASSIFIER_UNAVAILABLE")
}

func TestExtractThenScreen(t *testing.T) {
	log := logger.NewTestLogger(t)

	srv := httptest.NewServer(&genAI{level: "Entry-level", match: "Match"})
	defer srv.Close()
	clf := classifier.NewHTTPClassifier(&classifier.HTTPConfig{BaseURL: srv.URL, Timeout: time.Second}, log)

	app, err := ingest.NewExtractor(clf).Extract(context.Background(), "Alan Turing, mathematician. Skills: Python.")
	require.NoError(t, err)
	assert.Equal(t, "Alan Turing", app.Name)

	screener, err := screening.New(screening.Deps{Classifier: clf, Logger: log})
	require.NoError(t, err)
	result, err := screener.Screen(context.Background(), app, "Python Developer")
	require.NoError(t, err)
	assert.Equal(t, screening.StageScheduleInterview, result.Outcome)
}

// TestBrokerConnectivity runs only against a live gateway.
func TestBrokerConnectivity(t *testing.T) {
	addr := os.Getenv("E2E_ZEEBE_ADDRESS")
	if addr == "" {
		t.Skip("E2E_ZEEBE_ADDRESS not set")
	}

	client, err := camunda.Connect(context.Background(), &camunda.ClientConfig{
		GatewayAddress:         addr,
		UsePlaintextConnection: true,
		RetryConfig:            &camunda.RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 5 * time.Second},
	}, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.HealthCheck(context.Background()))
}
