package repository

import (
	"context"
	"errors"
	"time"

	"boardflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

// Create appends the card to the end of its list.
func (r *CardRepository) Create(ctx context.Context, card *model.Card) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next struct{ Next int }
		if err := tx.Model(&model.Card{}).
			Select("COALESCE(MAX(position) + 1, 0) AS next").
			Where("list_id = ?", card.ListID).
			Scan(&next).Error; err != nil {
			return err
		}
		card.Position = next.Next
		return tx.Omit("List", "Labels", "Members").Create(card).Error
	})
}

// GetByID retrieves a card with its labels and members
func (r *CardRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Card, error) {
	var card model.Card
	result := r.db.WithContext(ctx).
		Preload("List").
		Preload("Labels").
		Preload("Members").
		First(&card, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, result.Error
	}
	return &card, nil
}

// GetByListID retrieves the non-archived cards of a list in order
func (r *CardRepository) GetByListID(ctx context.Context, listID uuid.UUID) ([]model.Card, error) {
	var cards []model.Card
	result := r.db.WithContext(ctx).
		Preload("Labels").
		Where("list_id = ? AND archived = ?", listID, false).
		Order("position").
		Find(&cards)
	if result.Error != nil {
		return nil, result.Error
	}
	return cards, nil
}

// Delete removes a card by its ID
func (r *CardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Card{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

// Move places a card at newPosition in listID, shifting its neighbours.
func (r *CardRepository) Move(ctx context.Context, cardID, listID uuid.UUID, newPosition int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var card model.Card
		if err := tx.First(&card, "id = ?", cardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCardNotFound
			}
			return err
		}

		oldListID := card.ListID
		oldPosition := card.Position

		if oldListID != listID {
			// Close the gap in the old list
			if err := tx.Model(&model.Card{}).
				Where("list_id = ? AND position > ?", oldListID, oldPosition).
				Update("position", gorm.Expr("position - 1")).Error; err != nil {
				return err
			}

			// Make room in the new one
			if err := tx.Model(&model.Card{}).
				Where("list_id = ? AND position >= ?", listID, newPosition).
				Update("position", gorm.Expr("position + 1")).Error; err != nil {
				return err
			}
		} else if oldPosition < newPosition {
			if err := tx.Model(&model.Card{}).
				Where("list_id = ? AND position > ? AND position <= ?", listID, oldPosition, newPosition).
				Update("position", gorm.Expr("position - 1")).Error; err != nil {
				return err
			}
		} else if oldPosition > newPosition {
			if err := tx.Model(&model.Card{}).
				Where("list_id = ? AND position >= ? AND position < ?", listID, newPosition, oldPosition).
				Update("position", gorm.Expr("position + 1")).Error; err != nil {
				return err
			}
		} else {
			return nil
		}

		return tx.Model(&model.Card{}).
			Where("id = ?", cardID).
			Updates(map[string]interface{}{"list_id": listID, "position": newPosition}).Error
	})
}

func (r *CardRepository) updateCard(ctx context.Context, cardID uuid.UUID, values map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.Card{}).
		Where("id = ?", cardID).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (r *CardRepository) ArchiveCard(ctx context.Context, cardID uuid.UUID) error {
	return r.updateCard(ctx, cardID, map[string]interface{}{"archived": true})
}

func (r *CardRepository) MarkCardDone(ctx context.Context, cardID uuid.UUID) error {
	return r.updateCard(ctx, cardID, map[string]interface{}{"done": true})
}

func (r *CardRepository) SetCardDueDate(ctx context.Context, cardID uuid.UUID, due time.Time) error {
	return r.updateCard(ctx, cardID, map[string]interface{}{"due_date": due})
}

type cardPlacement struct {
	ListID   uuid.UUID
	Position int
	BoardID  uuid.UUID
}

// MoveCardToList puts the card at the bottom of listID and closes the gap it
// leaves behind. listID must be on the card's board. Callers run it inside a
// transaction.
func (r *CardRepository) MoveCardToList(ctx context.Context, cardID, listID uuid.UUID) error {
	db := r.db.WithContext(ctx)

	var src cardPlacement
	result := db.Table("cards").
		Select("cards.list_id, cards.position, lists.board_id").
		Joins("JOIN lists ON lists.id = cards.list_id").
		Where("cards.id = ?", cardID).
		Scan(&src)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	if src.ListID == listID {
		return nil
	}

	var dst struct{ BoardID uuid.UUID }
	result = db.Model(&model.List{}).Select("board_id").Where("id = ?", listID).Scan(&dst)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrListNotFound
	}
	if dst.BoardID != src.BoardID {
		return ErrForeignList
	}

	if err := db.Model(&model.Card{}).
		Where("list_id = ? AND position > ?", src.ListID, src.Position).
		Update("position", gorm.Expr("position - 1")).Error; err != nil {
		return err
	}

	return r.updateCard(ctx, cardID, map[string]interface{}{
		"list_id":  listID,
		"position": gorm.Expr("(SELECT COALESCE(MAX(c.position) + 1, 0) FROM cards c WHERE c.list_id = ?)", listID),
	})
}

// AttachLabel adds a label from the card's own board unless it is already
// there. It reports whether a row was inserted.
func (r *CardRepository) AttachLabel(ctx context.Context, cardID, labelID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("cards").
		Joins("JOIN lists ON lists.id = cards.list_id").
		Joins("JOIN labels ON labels.board_id = lists.board_id").
		Where("cards.id = ? AND labels.id = ?", cardID, labelID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrForeignLabel
	}

	result := r.db.WithContext(ctx).Exec(
		"INSERT INTO card_labels (card_id, label_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		cardID, labelID,
	)
	return result.RowsAffected > 0, result.Error
}

// DetachLabel removes a label from a card; absent labels are not an error.
func (r *CardRepository) DetachLabel(ctx context.Context, cardID, labelID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"DELETE FROM card_labels WHERE card_id = ? AND label_id = ?",
		cardID, labelID,
	).Error
}

// AttachMember assigns a user who can see the card's board, unless already
// assigned. It reports whether a row was inserted.
func (r *CardRepository) AttachMember(ctx context.Context, cardID, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("cards").
		Joins("JOIN lists ON lists.id = cards.list_id").
		Joins("JOIN boards ON boards.id = lists.board_id").
		Joins("LEFT JOIN workspaces ON workspaces.id = boards.workspace_id").
		Where("cards.id = ?", cardID).
		Where("(boards.owner_id = ? OR workspaces.owner_id = ? OR "+
			"EXISTS (SELECT 1 FROM board_members bm WHERE bm.board_id = boards.id AND bm.user_id = ?) OR "+
			"EXISTS (SELECT 1 FROM workspace_members wm WHERE wm.workspace_id = boards.workspace_id AND wm.user_id = ?))",
			userID, userID, userID, userID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrNoBoardAccess
	}

	result := r.db.WithContext(ctx).Exec(
		"INSERT INTO card_members (card_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		cardID, userID,
	)
	return result.RowsAffected > 0, result.Error
}
