package validator

import (
	"errors"
	"testing"

	"github.com/SAP-F-2025/edunexus-service/internal/models"
)

func TestValidator_Validate(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		input     interface{}
		wantErr   bool
		wantField string
	}{
		{
			name:  "valid join code",
			input: &JoinClassroomRequest{Code: "CS2024"},
		},
		{
			name:      "short join code",
			input:     &JoinClassroomRequest{Code: "CS20"},
			wantErr:   true,
			wantField: "code",
		},
		{
			name:      "join code with symbols",
			input:     &JoinClassroomRequest{Code: "CS-024"},
			wantErr:   true,
			wantField: "code",
		},
		{
			name:  "approve decision",
			input: &NoteApprovalRequest{Status: models.ApprovalApproved},
		},
		{
			name:      "pending is not a decision",
			input:     &NoteApprovalRequest{Status: models.ApprovalPending},
			wantErr:   true,
			wantField: "status",
		},
		{
			name: "profile with unknown role",
			input: &CreateProfileRequest{
				ProviderUID: "uid-1",
				Email:       "a@b.co",
				Name:        "Ada",
				Role:        "admin",
			},
			wantErr:   true,
			wantField: "role",
		},
		{
			name:      "blank classroom name",
			input:     &CreateClassroomRequest{Name: "   "},
			wantErr:   true,
			wantField: "name",
		},
		{
			name: "upload with bad visibility",
			input: &UploadNoteRequest{
				Title:      "Week 1",
				Visibility: "friends",
				FileName:   "w1.txt",
				Data:       []byte("x"),
			},
			wantErr:   true,
			wantField: "Visibility",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var ve ValidationErrors
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			if ve[0].Field != tt.wantField {
				t.Errorf("Field = %s, want %s", ve[0].Field, tt.wantField)
			}
		})
	}
}

func TestValidator_Var(t *testing.T) {
	v := New()
	err := v.Var("visibility", "secret", "note_visibility")
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if ve[0].Field != "visibility" {
		t.Errorf("Field = %s, want visibility", ve[0].Field)
	}
	if err := v.Var("visibility", "private", "note_visibility"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
