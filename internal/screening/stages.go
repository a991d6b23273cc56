package screening

import (
	"context"
	"fmt"
	"strings"
	"time"

	"candidate-screening/internal/classifier"
	apperrors "candidate-screening/internal/common/errors"
	"candidate-screening/internal/workflow"
)

// Stage identifiers.
const (
	StageCategorizeExperience workflow.StageID = "categorize-experience"
	StageAssessSkillset       workflow.StageID = "assess-skillset"
	StageScheduleInterview    workflow.StageID = "schedule-hr-interview"
	StageEscalateToRecruiter  workflow.StageID = "escalate-to-recruiter"
	StageRejectApplication    workflow.StageID = "reject-application"
)

// Terminal responses.
const (
	ResponseShortlisted = "Candidate has been shortlisted for an HR interview."
	ResponseEscalated   = "Candidate has senior-level experience but doesn't match job skills."
	responseRejected    = "Candidate doesn't meet JD and has been rejected, Sending rejection mail at %s"
)

// RejectionResponse is the reject-application message for email.
func RejectionResponse(email string) string {
	return fmt.Sprintf(responseRejected, email)
}

type stages struct {
	classifier classifier.Classifier
	now        func() time.Time
}

func (s *stages) categorizeExperience(ctx context.Context, st State) (Update, error) {
	raw, err := s.classifier.Classify(ctx, categorizePrompt(s.now()), st.Application)
	if err != nil {
		return Update{}, err
	}
	level, err := ParseExperienceLevel(raw)
	if err != nil {
		return Update{}, err
	}
	return Update{ExperienceLevel: &level}, nil
}

func (s *stages) assessSkillset(ctx context.Context, st State) (Update, error) {
	payload := skillsPayload{Role: st.Role, Skills: st.Application.Skills}
	if payload.Skills == nil {
		payload.Skills = []string{}
	}

	raw, err := s.classifier.Classify(ctx, assessPrompt(st.Role), payload)
	if err != nil {
		return Update{}, err
	}
	match, err := ParseSkillMatch(raw)
	if err != nil {
		return Update{}, err
	}
	return Update{SkillMatch: &match}, nil
}

func scheduleInterview(context.Context, State) (Update, error) {
	msg := ResponseShortlisted
	return Update{Response: &msg}, nil
}

func escalateToRecruiter(context.Context, State) (Update, error) {
	msg := ResponseEscalated
	return Update{Response: &msg}, nil
}

func rejectApplication(_ context.Context, st State) (Update, error) {
	email, ok := st.Application.Email()
	email = strings.TrimSpace(email)
	if !ok || email == "" {
		return Update{}, apperrors.NewMissingFieldError("contact.email")
	}
	msg := RejectionResponse(email)
	return Update{Response: &msg}, nil
}
