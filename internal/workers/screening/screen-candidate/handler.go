package screencandidate

import (
	"context"
	"encoding/json"
	"time"

	apperrors "candidate-screening/internal/common/errors"
	"candidate-screening/internal/common/logger"
	"candidate-screening/internal/common/metrics"
	"candidate-screening/internal/ingest"
	"candidate-screening/internal/models"
	"candidate-screening/internal/notify"
	"candidate-screening/internal/screening"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "screen-candidate"

	// commandTimeout bounds the complete/throw command sent after a job ran.
	commandTimeout = 10 * time.Second
)

// Screener runs the screening workflow.
type Screener interface {
	Screen(ctx context.Context, app *models.Application, role string) (*screening.Result, error)
}

// Notifier delivers the post-screening message.
type Notifier interface {
	Notify(ctx context.Context, app *models.Application, result *screening.Result) *notify.Notification
}

type Handler struct {
	config       *Config
	screener     Screener
	notifier     Notifier
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

// NewHandler builds the job handler. notifier may be nil.
func NewHandler(config *Config, screener Screener, notifier Notifier, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		screener:     screener,
		notifier:     notifier,
		errorHandler: apperrors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(client, job, apperrors.NewDocumentParseError(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	output, err := h.Execute(ctx, &input)
	cancel()
	if err != nil {
		h.fail(client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// Execute ingests the application, screens it and sends the matching
// notification.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Application) == 0 || string(input.Application) == "null" {
		return nil, apperrors.NewMissingFieldError("application")
	}

	app, err := ingest.Parse(input.Application)
	if err != nil {
		return nil, err
	}

	result, err := h.screener.Screen(ctx, app, input.Role)
	if err != nil {
		return nil, err
	}

	output := &Output{
		RunID:           result.RunID,
		ExperienceLevel: result.ExperienceLevel,
		SkillMatch:      result.SkillMatch,
		Response:        result.Response,
		Outcome:         result.Outcome,
		Application:     app,
	}
	if h.notifier != nil {
		output.Notification = h.notifier.Notify(ctx, app, result)
	}

	h.logger.Info("candidate screened", map[string]interface{}{
		"runId":           result.RunID,
		"role":            result.Role,
		"experienceLevel": string(result.ExperienceLevel),
		"skillMatch":      string(result.SkillMatch),
		"outcome":         string(result.Outcome),
	})
	return output, nil
}

// Commands go out on a fresh context; the execution context may already be
// past its deadline.
func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) fail(client worker.JobClient, job entities.Job, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
