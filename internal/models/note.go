package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type NoteVisibility string

const (
	VisibilityPublic  NoteVisibility = "public"
	VisibilityPrivate NoteVisibility = "private"
)

type ApprovalStatus string

const (
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalRejected ApprovalStatus = "rejected"
)

const (
	// NoteContentLimit caps the extracted text stored with a note.
	NoteContentLimit = 5000
	// NotePreviewLimit caps the content returned right after an upload.
	NotePreviewLimit = 500
)

type Note struct {
	ID             string         `json:"id" gorm:"primaryKey;size:36"`
	ChapterID      string         `json:"chapter_id" gorm:"not null;index;size:36"`
	Title          string         `json:"title" gorm:"not null;size:255"`
	Content        string         `json:"content" gorm:"type:text"`
	FileURL        *string        `json:"file_url" gorm:"size:1000"`
	FileName       *string        `json:"file_name" gorm:"size:255"`
	StorageKey     *string        `json:"-" gorm:"size:500"`
	Visibility     NoteVisibility `json:"visibility" gorm:"not null;size:20;default:'public'"`
	ApprovalStatus ApprovalStatus `json:"approval_status" gorm:"not null;size:20;index;default:'pending'"`
	UploadedBy     string         `json:"uploaded_by" gorm:"not null;index;size:36"`
	ApprovedBy     *string        `json:"approved_by" gorm:"size:36"`
	ApprovedAt     *time.Time     `json:"approved_at"`
	RejectReason   *string        `json:"reject_reason" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Uploader User `json:"-" gorm:"foreignKey:UploadedBy"`
}

func (Note) TableName() string {
	return "notes"
}

// IsSearchable reports whether the note belongs in the chapter notebook index.
func (n *Note) IsSearchable() bool {
	return n.ApprovalStatus == ApprovalApproved && n.Visibility == VisibilityPublic
}

// NoteEmbedding stores the vector used by the chapter notebook search.
type NoteEmbedding struct {
	NoteID    string         `json:"note_id" gorm:"primaryKey;size:36"`
	ChapterID string         `json:"chapter_id" gorm:"not null;index;size:36"`
	Title     string         `json:"title" gorm:"not null;size:255"`
	Content   string         `json:"content" gorm:"type:text"`
	Uploader  string         `json:"uploader" gorm:"size:100"`
	Vector    datatypes.JSON `json:"vector" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	Note Note `json:"-" gorm:"foreignKey:NoteID;constraint:OnDelete:CASCADE"`
}

func (NoteEmbedding) TableName() string {
	return "note_embeddings"
}

func (e *NoteEmbedding) SetVector(v []float32) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e.Vector = datatypes.JSON(data)
	return nil
}

func (e *NoteEmbedding) GetVector() ([]float32, error) {
	var v []float32
	if len(e.Vector) == 0 {
		return v, nil
	}
	err := json.Unmarshal(e.Vector, &v)
	return v, err
}
