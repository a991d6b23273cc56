package ingest

import (
	"context"
	"errors"
	"strings"

	"candidate-screening/internal/classifier"
	apperrors "candidate-screening/internal/common/errors"
	"candidate-screening/internal/models"
)

const extractPrompt = "Extract the following information from the resume below. " +
	"Return ONLY valid JSON matching the specified schema: " +
	`{"name": string, "contact": {"email": string, "phone": string, "linkedin": string}, ` +
	`"experience": [{"title": string, "company": string, "duration": string}], ` +
	`"skills": [string], "education": [{"degree": string, "institution": string}]}`

// Extractor builds an Application from raw resume text with the classifier.
type Extractor struct {
	classifier classifier.Classifier
}

func NewExtractor(c classifier.Classifier) *Extractor {
	return &Extractor{classifier: c}
}

func (e *Extractor) Extract(ctx context.Context, resumeText string) (*models.Application, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, apperrors.NewDocumentParseError(errors.New("resume text is empty"))
	}

	raw, err := e.classifier.Classify(ctx, extractPrompt, map[string]string{"resume_text": resumeText})
	if err != nil {
		return nil, err
	}
	return Parse([]byte(stripCodeFence(raw)))
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
