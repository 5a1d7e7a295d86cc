package models

import (
	"time"
)

type Classroom struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Name        string  `json:"name" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`
	Code        string  `json:"code" gorm:"uniqueIndex;not null;size:6"`
	CreatedBy   string  `json:"created_by" gorm:"not null;index;size:36"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Creator  User              `json:"-" gorm:"foreignKey:CreatedBy"`
	Members  []ClassroomMember `json:"-" gorm:"foreignKey:ClassroomID;constraint:OnDelete:CASCADE"`
	Subjects []Subject         `json:"-" gorm:"foreignKey:ClassroomID;constraint:OnDelete:CASCADE"`
}

func (Classroom) TableName() string {
	return "classrooms"
}

type ClassroomMember struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	ClassroomID string    `json:"classroom_id" gorm:"not null;uniqueIndex:idx_classroom_member;size:36"`
	UserID      string    `json:"user_id" gorm:"not null;uniqueIndex:idx_classroom_member;index;size:36"`
	JoinedAt    time.Time `json:"joined_at"`
}

func (ClassroomMember) TableName() string {
	return "classroom_members"
}

type Subject struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	ClassroomID string  `json:"classroom_id" gorm:"not null;index;size:36"`
	Name        string  `json:"name" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Chapters      []Chapter       `json:"-" gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE"`
	TeacherAccess []TeacherAccess `json:"-" gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE"`
}

func (Subject) TableName() string {
	return "subjects"
}

type Chapter struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	SubjectID   string  `json:"subject_id" gorm:"not null;index;size:36"`
	Name        string  `json:"name" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Notes         []Note         `json:"-" gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE"`
	Questions     []Question     `json:"-" gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE"`
	Announcements []Announcement `json:"-" gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE"`
}

func (Chapter) TableName() string {
	return "chapters"
}

// TeacherAccess delegates management of a subject to a teacher who does not
// own the classroom.
type TeacherAccess struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	SubjectID string    `json:"subject_id" gorm:"not null;uniqueIndex:idx_subject_teacher;size:36"`
	TeacherID string    `json:"teacher_id" gorm:"not null;uniqueIndex:idx_subject_teacher;index;size:36"`
	CreatedAt time.Time `json:"created_at"`

	Teacher User `json:"-" gorm:"foreignKey:TeacherID"`
}

func (TeacherAccess) TableName() string {
	return "teacher_access"
}
