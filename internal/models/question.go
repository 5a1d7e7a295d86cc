package models

import (
	"time"
)

type Question struct {
	ID         string     `json:"id" gorm:"primaryKey;size:36"`
	ChapterID  string     `json:"chapter_id" gorm:"not null;index;size:36"`
	UserID     string     `json:"user_id" gorm:"not null;index;size:36"`
	Title      string     `json:"title" gorm:"not null;size:255"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	IsPrivate  bool       `json:"is_private" gorm:"default:false"`
	Answer     *string    `json:"answer" gorm:"type:text"`
	AnsweredBy *string    `json:"answered_by" gorm:"size:36"`
	AnsweredAt *time.Time `json:"answered_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author User `json:"-" gorm:"foreignKey:UserID"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) IsAnswered() bool {
	return q.Answer != nil && *q.Answer != ""
}

type Announcement struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ChapterID string    `json:"chapter_id" gorm:"not null;index;size:36"`
	Title     string    `json:"title" gorm:"not null;size:255"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedBy string    `json:"created_by" gorm:"not null;size:36"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	Creator User `json:"-" gorm:"foreignKey:CreatedBy"`
}

func (Announcement) TableName() string {
	return "announcements"
}

// AllModels lists every table owned by the service, in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Classroom{},
		&ClassroomMember{},
		&Subject{},
		&Chapter{},
		&TeacherAccess{},
		&Note{},
		&NoteEmbedding{},
		&Question{},
		&Announcement{},
	}
}
