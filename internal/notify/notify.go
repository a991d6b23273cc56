// Package notify delivers post-screening messages: a rejection email to the
// candidate through SES and a recruiter escalation through SNS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "candidate-screening/internal/common/errors"
	"candidate-screening/internal/common/logger"
	"candidate-screening/internal/common/metrics"
	"candidate-screening/internal/models"
	"candidate-screening/internal/screening"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
	StatusNone     = "none"

	ChannelEmail = "email"
	ChannelSNS   = "sns"
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Config struct {
	EmailEnabled      bool
	FromEmail         string
	EscalationEnabled bool
	TopicARN          string
}

// Notification reports what was delivered for one screening result.
type Notification struct {
	NotificationID string `json:"notificationId"`
	Channel        string `json:"channel,omitempty"`
	Recipient      string `json:"recipient,omitempty"`
	Status         string `json:"status"`
	MessageID      string `json:"messageId,omitempty"`
	Error          string `json:"error,omitempty"`
	SentAt         string `json:"sentAt,omitempty"`
}

type Notifier struct {
	config *Config
	ses    SESService
	sns    SNSService
	logger logger.Logger
}

func NewNotifier(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		config: config,
		ses:    sesClient,
		sns:    snsClient,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// Notify sends the message matching result.Outcome. Delivery failures are
// reported in the returned Notification, never as an error.
func (n *Notifier) Notify(ctx context.Context, app *models.Application, result *screening.Result) *Notification {
	switch result.Outcome {
	case screening.StageRejectApplication:
		return n.sendRejection(ctx, app, result)
	case screening.StageEscalateToRecruiter:
		return n.sendEscalation(ctx, app, result)
	default:
		return &Notification{NotificationID: uuid.NewString(), Status: StatusNone}
	}
}

func (n *Notifier) sendRejection(ctx context.Context, app *models.Application, result *screening.Result) *Notification {
	out := &Notification{NotificationID: uuid.NewString(), Channel: ChannelEmail}
	if !n.config.EmailEnabled || n.ses == nil {
		out.Status = StatusDisabled
		return out
	}

	email, _ := app.Email()
	out.Recipient = strings.TrimSpace(email)

	subject := fmt.Sprintf("Your application for %s", result.Role)
	body := rejectionBody(app.Name, result.Role)

	resp, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{out.Recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	if err != nil {
		return n.failed(out, result, err)
	}

	out.Status = StatusSent
	out.MessageID = aws.ToString(resp.MessageId)
	out.SentAt = time.Now().UTC().Format(time.RFC3339)
	n.record(out, result)
	return out
}

type escalationMessage struct {
	RunID           string                    `json:"runId"`
	Candidate       string                    `json:"candidate"`
	Contact         map[string]string         `json:"contact,omitempty"`
	Role            string                    `json:"role"`
	ExperienceLevel screening.ExperienceLevel `json:"experienceLevel"`
	SkillMatch      screening.SkillMatch      `json:"skillMatch"`
	Skills          []string                  `json:"skills"`
	Response        string                    `json:"response"`
}

func (n *Notifier) sendEscalation(ctx context.Context, app *models.Application, result *screening.Result) *Notification {
	out := &Notification{NotificationID: uuid.NewString(), Channel: ChannelSNS}
	if !n.config.EscalationEnabled || n.sns == nil {
		out.Status = StatusDisabled
		return out
	}
	out.Recipient = n.config.TopicARN

	msg, err := json.Marshal(escalationMessage{
		RunID:           result.RunID,
		Candidate:       app.Name,
		Contact:         app.Contact,
		Role:            result.Role,
		ExperienceLevel: result.ExperienceLevel,
		SkillMatch:      result.SkillMatch,
		Skills:          app.Skills,
		Response:        result.Response,
	})
	if err != nil {
		return n.failed(out, result, err)
	}

	resp, err := n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.TopicARN),
		Subject:  aws.String(fmt.Sprintf("Senior candidate for %s needs review", result.Role)),
		Message:  aws.String(string(msg)),
	})
	if err != nil {
		return n.failed(out, result, err)
	}

	out.Status = StatusSent
	out.MessageID = aws.ToString(resp.MessageId)
	out.SentAt = time.Now().UTC().Format(time.RFC3339)
	n.record(out, result)
	return out
}

func (n *Notifier) failed(out *Notification, result *screening.Result, err error) *Notification {
	stdErr := apperrors.NewNotificationSendFailedError(out.Channel, err)
	out.Status = StatusFailed
	out.Error = stdErr.Error()
	n.logger.Error("notification send failed", map[string]interface{}{
		"runId":     result.RunID,
		"channel":   out.Channel,
		"recipient": out.Recipient,
		"error":     err.Error(),
	})
	n.record(out, result)
	return out
}

func (n *Notifier) record(out *Notification, result *screening.Result) {
	metrics.NotificationsSent.WithLabelValues(out.Channel, out.Status).Inc()
	if out.Status == StatusSent {
		n.logger.Info("notification sent", map[string]interface{}{
			"runId":     result.RunID,
			"channel":   out.Channel,
			"messageId": out.MessageID,
		})
	}
}

func rejectionBody(name, role string) string {
	return fmt.Sprintf("Dear %s,\n\n"+
		"Thank you for your interest in the %s position. After reviewing your application, "+
		"we have decided not to move forward with your candidacy at this time.\n\n"+
		"We wish you the best in your job search.\n", name, role)
}
