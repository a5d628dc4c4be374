package repository

import (
	"context"
	"errors"

	"boardflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BoardMemberRepository struct {
	db *gorm.DB
}

func NewBoardMemberRepository(db *gorm.DB) *BoardMemberRepository {
	return &BoardMemberRepository{db: db}
}

// AddMember grants userID role on boardID, or changes the role if the user
// is already a member. The board owner is rejected with ErrOwnerMembership.
func (r *BoardMemberRepository) AddMember(ctx context.Context, boardID, userID uuid.UUID, role model.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var board model.Board
		if err := tx.Select("id", "owner_id").Where("id = ?", boardID).First(&board).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBoardNotFound
			}
			return err
		}
		if board.OwnerID == userID {
			return ErrOwnerMembership
		}

		var existing model.BoardMember
		err := tx.Where("board_id = ? AND user_id = ?", boardID, userID).First(&existing).Error
		if err == nil {
			return tx.Model(&existing).Update("role", role).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Omit("User").Create(&model.BoardMember{
			BoardID: boardID,
			UserID:  userID,
			Role:    role,
		}).Error
	})
}

func (r *BoardMemberRepository) RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&model.BoardMember{}).Error
}

func (r *BoardMemberRepository) ListMembers(ctx context.Context, boardID uuid.UUID) ([]model.BoardMember, error) {
	var members []model.BoardMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("board_id = ?", boardID).
		Order("created_at").
		Find(&members).Error
	return members, err
}

// SharedBoards returns the boards userID is a direct member of.
func (r *BoardMemberRepository) SharedBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	var boards []model.Board
	err := r.db.WithContext(ctx).
		Joins("JOIN board_members ON board_members.board_id = boards.id").
		Where("board_members.user_id = ?", userID).
		Find(&boards).Error
	return boards, err
}
