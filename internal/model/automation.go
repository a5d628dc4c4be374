package model

import (
	"time"

	"github.com/google/uuid"
)

type TriggerType string

const (
	TriggerCardMovedToList TriggerType = "CARD_MOVED_TO_LIST"
	TriggerCardCreated     TriggerType = "CARD_CREATED"
)

type ActionType string

const (
	ActionArchiveCard  ActionType = "ARCHIVE_CARD"
	ActionMarkAsDone   ActionType = "MARK_AS_DONE"
	ActionAddLabel     ActionType = "ADD_LABEL"
	ActionMoveCard     ActionType = "MOVE_CARD"
	ActionAssignMember ActionType = "ASSIGN_MEMBER"
	ActionSetDueDate   ActionType = "SET_DUE_DATE"
	ActionRemoveLabel  ActionType = "REMOVE_LABEL"
)

type LogStatus string

const (
	LogSuccess LogStatus = "SUCCESS"
	LogFailure LogStatus = "FAILURE"
)

// AutomationRule reacts to TriggerType events whose value equals TriggerVal.
// ActionVal is interpreted according to ActionType.
type AutomationRule struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	BoardID     uuid.UUID   `gorm:"type:uuid;not null;index"`
	TriggerType TriggerType `gorm:"type:varchar(32);not null" validate:"required,oneof=CARD_MOVED_TO_LIST CARD_CREATED"`
	TriggerVal  string      `gorm:"not null;default:''"`
	ActionType  ActionType  `gorm:"type:varchar(32);not null" validate:"required,oneof=ARCHIVE_CARD MARK_AS_DONE ADD_LABEL MOVE_CARD ASSIGN_MEMBER SET_DUE_DATE REMOVE_LABEL"`
	ActionVal   string      `gorm:"not null;default:''" validate:"max=255"`
	IsActive    bool        `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AutomationLog is written once per attempted rule execution and never updated.
type AutomationLog struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	RuleID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    LogStatus `gorm:"type:varchar(16);not null"`
	Message   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
