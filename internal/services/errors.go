package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/edunexus-service/internal/validator"
)

var (
	ErrUserNotFound          = errors.New("user profile not found")
	ErrProfileExists         = errors.New("user profile already exists")
	ErrEmailRegistered       = errors.New("email already registered")
	ErrClassroomNotFound     = errors.New("classroom not found")
	ErrInvalidClassroomCode  = errors.New("invalid classroom code")
	ErrAlreadyMember         = errors.New("already a member of this classroom")
	ErrSubjectNotFound       = errors.New("subject not found")
	ErrChapterNotFound       = errors.New("chapter not found")
	ErrNoteNotFound          = errors.New("note not found")
	ErrQuestionNotFound      = errors.New("question not found")
	ErrTeacherAccessNotFound = errors.New("teacher access not found")
	ErrTeacherNotFound       = errors.New("teacher not found")
	ErrAccessExists          = errors.New("teacher already has access to this subject")
	ErrUnsupportedFileType   = errors.New("only PDF and TXT files are supported")
	ErrForbidden             = errors.New("forbidden")
	ErrTeacherRequired       = errors.New("teacher access required")
)

// ValidationErrors is returned for malformed requests.
type ValidationErrors = validator.ValidationErrors

// PermissionError reports an action the caller may not perform on a resource.
type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %s: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

// Is lets callers match any permission failure with errors.Is(err, ErrForbidden).
func (e *PermissionError) Is(target error) bool {
	return target == ErrForbidden
}

// BusinessRuleError reports a well-formed request that the current state rejects.
type BusinessRuleError struct {
	Message string                 `json:"message"`
	Rule    string                 `json:"rule"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Message: message, Rule: rule, Context: context}
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}
