package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	StoryTitleMaxLength    = 100
	StoryImageURLMaxLength = 255
	StoryAgeGroupMaxLength = 10
	StoryThemeMaxLength    = 50
)

// Story is a single catalogue entry.
//
// AgeGroup and Theme are plain strings matched by value against
// AgeGroup.Range and Theme.Name. They are not foreign keys:
// a story may point at a code no AgeGroup carries, and filters then simply
// return nothing.
type Story struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"type:varchar(100);not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Summary     string    `gorm:"type:text;not null" json:"summary"`
	ImageURL    string    `gorm:"type:varchar(255);not null" json:"image_url"`
	AgeGroup    string    `gorm:"type:varchar(10);not null;index" json:"age_group"`
	ReadingTime int       `gorm:"not null" json:"reading_time"` // minutes
	Theme       string    `gorm:"type:varchar(50);not null;index" json:"theme"`
	IsFeatured  bool      `gorm:"not null;default:false;index" json:"is_featured"`
	Rating      int       `gorm:"not null" json:"rating"`
	CreatedAt   time.Time `gorm:"<-:create;autoCreateTime;index" json:"created_at"` // written once on insert
}

func (Story) TableName() string {
	return "stories"
}

// BeforeCreate stores an explicit CreatedAt in UTC so fixture, spreadsheet
// and admin rows compare correctly.
func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if !s.CreatedAt.IsZero() {
		s.CreatedAt = s.CreatedAt.UTC()
	}
	return nil
}

func (s Story) String() string {
	return s.Title
}
