package model

import (
	"time"

	"github.com/google/uuid"
)

type Card struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ListID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title       string     `gorm:"not null"`
	Description string
	Position    int        `gorm:"not null"`
	Archived    bool       `gorm:"not null;default:false"`
	Done        bool       `gorm:"not null;default:false"`
	DueDate     *time.Time
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	List    List    `gorm:"foreignKey:ListID"`
	Labels  []Label `gorm:"many2many:card_labels"`
	Members []User  `gorm:"many2many:card_members"`
}

type CardLabel struct {
	CardID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	LabelID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

type CardMember struct {
	CardID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
}
