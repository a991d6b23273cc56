// Package errors provides the error kinds surfaced by the screening service and
// their translation into BPMN errors for the Zeebe job surface.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode identifies an error kind.
type ErrorCode string

const (
	ErrCodeGraphDefinition       ErrorCode = "GRAPH_DEFINITION_ERROR"
	ErrCodeStageContract         ErrorCode = "STAGE_CONTRACT_VIOLATION"
	ErrCodeClassification        ErrorCode = "CLASSIFICATION_ERROR"
	ErrCodeClassifierUnavailable ErrorCode = "CLASSIFIER_UNAVAILABLE"
	ErrCodeMissingField          ErrorCode = "MISSING_FIELD"
	ErrCodeDocumentParse         ErrorCode = "DOCUMENT_PARSE_ERROR"
	ErrCodeSchemaValidation      ErrorCode = "SCHEMA_VALIDATION_ERROR"
	ErrCodeNotificationSend      ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Is matches any *StandardError carrying the same code, so the sentinels below
// work with errors.Is regardless of message or details.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is matching.
var (
	ErrGraphDefinition       = &StandardError{Code: ErrCodeGraphDefinition}
	ErrStageContract         = &StandardError{Code: ErrCodeStageContract}
	ErrClassification        = &StandardError{Code: ErrCodeClassification}
	ErrClassifierUnavailable = &StandardError{Code: ErrCodeClassifierUnavailable}
	ErrMissingField          = &StandardError{Code: ErrCodeMissingField}
	ErrDocumentParse         = &StandardError{Code: ErrCodeDocumentParse}
	ErrSchemaValidation      = &StandardError{Code: ErrCodeSchemaValidation}
	ErrNotificationSend      = &StandardError{Code: ErrCodeNotificationSend}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewGraphDefinitionError reports a structurally invalid workflow graph.
func NewGraphDefinitionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGraphDefinition,
		Message:   "Workflow graph definition is invalid",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewStageContractError reports a stage emitting a field outside its write-set.
func NewStageContractError(stage string, field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStageContract,
		Message:   "Stage wrote a field outside its declared write-set",
		Details:   fmt.Sprintf("stage: %s, field: %s", stage, field),
		Metadata:  map[string]interface{}{"stage": stage, "field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewClassificationError reports classifier text that maps to no expected category.
func NewClassificationError(kind, raw string) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassification,
		Message:   fmt.Sprintf("Unrecognized %s classification", kind),
		Details:   fmt.Sprintf("raw: %q", raw),
		Metadata:  map[string]interface{}{"kind": kind, "raw": raw},
		Timestamp: time.Now().UTC(),
	}
}

// NewClassifierUnavailableError reports that the classification capability could not be reached.
func NewClassifierUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassifierUnavailable,
		Message:   "Classifier unavailable",
		Details:   errDetails(err),
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewMissingFieldError reports a required application field that is absent.
func NewMissingFieldError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingField,
		Message:   "Required field missing",
		Details:   fmt.Sprintf("field: %s", field),
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentParseError reports an unreadable application document.
func NewDocumentParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentParse,
		Message:   "Application document could not be parsed",
		Details:   errDetails(err),
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewSchemaValidationError reports document content that does not fit the application schema.
func NewSchemaValidationError(violations []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaValidation,
		Message:   "Application document does not match schema",
		Details:   fmt.Sprintf("%v", violations),
		Metadata:  map[string]interface{}{"violations": violations},
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError reports a failed notification delivery.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSend,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, errDetails(err)),
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeGraphDefinition:       "GRAPH_DEFINITION_ERROR",
	ErrCodeStageContract:         "STAGE_CONTRACT_VIOLATION",
	ErrCodeClassification:        "CLASSIFICATION_ERROR",
	ErrCodeClassifierUnavailable: "CLASSIFIER_UNAVAILABLE",
	ErrCodeMissingField:          "MISSING_FIELD",
	ErrCodeDocumentParse:         "DOCUMENT_PARSE_ERROR",
	ErrCodeSchemaValidation:      "SCHEMA_VALIDATION_ERROR",
	ErrCodeNotificationSend:      "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns how many times the job surface may retry a code.
// Screening jobs are never retried automatically.
func GetRetryCount(ErrorCode) int {
	return 0
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeGraphDefinition, ErrCodeStageContract:
		return "definition"
	case ErrCodeClassification, ErrCodeClassifierUnavailable:
		return "classifier"
	case ErrCodeMissingField, ErrCodeDocumentParse, ErrCodeSchemaValidation:
		return "input"
	case ErrCodeNotificationSend:
		return "delivery"
	default:
		return "internal"
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        GetRetryCount(stdErr.Code),
		ErrorVariables: copyFields(stdErr.Metadata),
	}
}

// AsStandardError finds the first *StandardError in err's chain, or wraps err
// as an INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   errDetails(err),
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// CodeOf returns the error code carried by err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	return AsStandardError(err).Code
}

// fieldCarrier is implemented by wrappers that locate an error, such as the
// workflow stage it came from.
type fieldCarrier interface {
	ErrorFields() map[string]interface{}
}

// ContextFields returns the fields of the outermost wrapper in err's chain
// that implements ErrorFields, or nil.
func ContextFields(err error) map[string]interface{} {
	var fc fieldCarrier
	if stderrors.As(err, &fc) {
		return copyFields(fc.ErrorFields())
	}
	return nil
}

func copyFields(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
