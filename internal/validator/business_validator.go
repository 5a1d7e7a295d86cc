package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
)

var classroomCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)

func registerBusinessRules(v *validator.Validate) {
	// Join codes are matched case-insensitively, so lower case is accepted here.
	v.RegisterValidation("classroom_code", func(fl validator.FieldLevel) bool {
		return classroomCodePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})

	v.RegisterValidation("note_visibility", func(fl validator.FieldLevel) bool {
		switch models.NoteVisibility(fl.Field().String()) {
		case models.VisibilityPublic, models.VisibilityPrivate:
			return true
		}
		return false
	})

	// Pending is not a decision a teacher can submit.
	v.RegisterValidation("approval_decision", func(fl validator.FieldLevel) bool {
		switch models.ApprovalStatus(fl.Field().String()) {
		case models.ApprovalApproved, models.ApprovalRejected:
			return true
		}
		return false
	})

	v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).IsValid()
	})

	v.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}
