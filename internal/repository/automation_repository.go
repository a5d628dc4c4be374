package repository

import (
	"context"
	"errors"

	"boardflow/internal/automation"
	"boardflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AutomationRepository struct {
	db *gorm.DB
}

func NewAutomationRepository(db *gorm.DB) *AutomationRepository {
	return &AutomationRepository{db: db}
}

func (r *AutomationRepository) CreateRule(ctx context.Context, rule *model.AutomationRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *AutomationRepository) GetRule(ctx context.Context, id uuid.UUID) (*model.AutomationRule, error) {
	var rule model.AutomationRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return &rule, nil
}

func (r *AutomationRepository) ListRules(ctx context.Context, boardID uuid.UUID) ([]model.AutomationRule, error) {
	var rules []model.AutomationRule
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at").
		Find(&rules).Error
	return rules, err
}

// UpdateRule overwrites the editable fields; BoardID never changes.
func (r *AutomationRepository) UpdateRule(ctx context.Context, rule *model.AutomationRule) error {
	result := r.db.WithContext(ctx).Model(rule).
		Select("trigger_type", "trigger_val", "action_type", "action_val", "is_active").
		Updates(rule)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *AutomationRepository) DeleteRule(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.AutomationRule{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// ActiveRules returns the board's active rules for trigger, oldest first.
func (r *AutomationRepository) ActiveRules(ctx context.Context, boardID uuid.UUID, trigger model.TriggerType) ([]model.AutomationRule, error) {
	var rules []model.AutomationRule
	err := r.db.WithContext(ctx).
		Where("board_id = ? AND trigger_type = ? AND is_active = ?", boardID, trigger, true).
		Order("created_at").
		Find(&rules).Error
	return rules, err
}

func (r *AutomationRepository) AppendLog(ctx context.Context, entry *model.AutomationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListLogs returns the most recent log rows for every rule on the board.
func (r *AutomationRepository) ListLogs(ctx context.Context, boardID uuid.UUID, limit int) ([]model.AutomationLog, error) {
	var logs []model.AutomationLog
	err := r.db.WithContext(ctx).
		Joins("JOIN automation_rules ON automation_rules.id = automation_logs.rule_id").
		Where("automation_rules.board_id = ?", boardID).
		Order("automation_logs.created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// AutomationStore is the automation engine's gateway over gorm.
type AutomationStore struct {
	*CardRepository
	rules *AutomationRepository
	db    *gorm.DB
}

var _ automation.Gateway = (*AutomationStore)(nil)

func NewAutomationStore(db *gorm.DB) *AutomationStore {
	return &AutomationStore{
		CardRepository: NewCardRepository(db),
		rules:          NewAutomationRepository(db),
		db:             db,
	}
}

func (s *AutomationStore) ActiveRules(ctx context.Context, boardID uuid.UUID, trigger model.TriggerType) ([]model.AutomationRule, error) {
	return s.rules.ActiveRules(ctx, boardID, trigger)
}

func (s *AutomationStore) AppendLog(ctx context.Context, entry *model.AutomationLog) error {
	return s.rules.AppendLog(ctx, entry)
}

func (s *AutomationStore) Transaction(ctx context.Context, fn func(tx automation.Gateway) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewAutomationStore(tx))
	})
}
