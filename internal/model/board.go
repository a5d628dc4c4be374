package model

import (
	"time"

	"github.com/google/uuid"
)

type Board struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title       string     `gorm:"not null"`
	Description string
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null"`
	WorkspaceID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Owner     User          `gorm:"foreignKey:OwnerID"`
	Workspace *Workspace    `gorm:"foreignKey:WorkspaceID"`
	Members   []BoardMember `gorm:"foreignKey:BoardID"`
	Lists     []List        `gorm:"foreignKey:BoardID"`
}

// BoardAccess is what the permission resolver needs to know about one
// user and one board. Members only ever carry the caller's own rows.
type BoardAccess struct {
	Board            Board
	BoardMember      *BoardMember
	WorkspaceOwnerID *uuid.UUID
	WorkspaceMember  *WorkspaceMember
}
