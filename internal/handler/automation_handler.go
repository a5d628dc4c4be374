package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"boardflow/internal/automation"
	"boardflow/internal/model"
	"boardflow/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// logPageSize caps how many automation log rows one request returns.
const logPageSize = 100

type AutomationHandler struct {
	rules  RuleStore
	lists  ListStore
	labels LabelStore
	guard  boardGuard
	logger logrus.FieldLogger
}

func NewAutomationHandler(rules RuleStore, lists ListStore, labels LabelStore, boards BoardStore, resolver Authorizer, logger logrus.FieldLogger) *AutomationHandler {
	guard := newBoardGuard(boards, resolver, logger)
	return &AutomationHandler{rules: rules, lists: lists, labels: labels, guard: guard, logger: guard.logger}
}

type AutomationRuleRequest struct {
	TriggerType model.TriggerType `json:"trigger_type"`
	TriggerVal  string            `json:"trigger_val"`
	ActionType  model.ActionType  `json:"action_type"`
	ActionVal   string            `json:"action_val"`
	IsActive    *bool             `json:"is_active"`
}

type AutomationRuleResponse struct {
	ID          string            `json:"id"`
	BoardID     string            `json:"board_id"`
	TriggerType model.TriggerType `json:"trigger_type"`
	TriggerVal  string            `json:"trigger_val"`
	ActionType  model.ActionType  `json:"action_type"`
	ActionVal   string            `json:"action_val"`
	IsActive    bool              `json:"is_active"`
	CreatedAt   string            `json:"created_at"`
}

type AutomationLogResponse struct {
	ID        string          `json:"id"`
	RuleID    string          `json:"rule_id"`
	Status    model.LogStatus `json:"status"`
	Message   string          `json:"message"`
	CreatedAt string          `json:"created_at"`
}

func toRuleResponse(rule *model.AutomationRule) AutomationRuleResponse {
	return AutomationRuleResponse{
		ID:          rule.ID.String(),
		BoardID:     rule.BoardID.String(),
		TriggerType: rule.TriggerType,
		TriggerVal:  rule.TriggerVal,
		ActionType:  rule.ActionType,
		ActionVal:   rule.ActionVal,
		IsActive:    rule.IsActive,
		CreatedAt:   rule.CreatedAt.Format(time.RFC3339),
	}
}

func (req AutomationRuleRequest) applyTo(rule *model.AutomationRule) {
	rule.TriggerType = req.TriggerType
	rule.TriggerVal = req.TriggerVal
	rule.ActionType = req.ActionType
	rule.ActionVal = req.ActionVal
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
}

// foreignTarget explains why the rule's action value points outside its
// board, or returns "" when it does not. An empty value is left for the
// engine to report when the rule runs.
func (h *AutomationHandler) foreignTarget(ctx context.Context, rule *model.AutomationRule) (string, error) {
	if strings.TrimSpace(rule.ActionVal) == "" {
		return "", nil
	}
	action, err := automation.ParseAction(rule.ActionType, rule.ActionVal)
	if err != nil {
		return err.Error(), nil
	}

	switch a := action.(type) {
	case automation.MoveCard:
		list, err := h.lists.GetByID(ctx, a.TargetListID)
		if err != nil {
			return "", err
		}
		if list == nil || list.BoardID != rule.BoardID {
			return fmt.Sprintf("%s: list %s is not on this board", rule.ActionType, a.TargetListID), nil
		}
	case automation.AddLabel:
		return h.foreignLabel(ctx, rule, a.LabelID)
	case automation.RemoveLabel:
		return h.foreignLabel(ctx, rule, a.LabelID)
	case automation.AssignMember:
		decision := h.guard.resolver.ResolvePermission(ctx, a.UserID, rule.BoardID, model.PermissionRead)
		if !decision.Allowed {
			return fmt.Sprintf("%s: user %s has no access to this board", rule.ActionType, a.UserID), nil
		}
	}
	return "", nil
}

func (h *AutomationHandler) foreignLabel(ctx context.Context, rule *model.AutomationRule, labelID uuid.UUID) (string, error) {
	label, err := h.labels.GetByID(ctx, labelID)
	if err != nil && !errors.Is(err, repository.ErrLabelNotFound) {
		return "", err
	}
	if label == nil || label.BoardID != rule.BoardID {
		return fmt.Sprintf("%s: label %s is not on this board", rule.ActionType, labelID), nil
	}
	return "", nil
}

// checkTarget writes 400 or 500 and returns false when the rule may not be stored.
func (h *AutomationHandler) checkTarget(c *gin.Context, rule *model.AutomationRule) bool {
	reason, err := h.foreignTarget(c.Request.Context(), rule)
	if err != nil {
		h.logger.WithFields(logrus.Fields{"board_id": rule.BoardID, "error": err}).Error("failed to check automation target")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check automation target"})
		return false
	}
	if reason != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return false
	}
	return true
}

func (h *AutomationHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id", "board")
	if !ok {
		return
	}

	if h.guard.authorize(c, userID, boardID, model.PermissionRead) == nil {
		return
	}

	rules, err := h.rules.ListRules(c.Request.Context(), boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve automations"})
		return
	}

	response := make([]AutomationRuleResponse, len(rules))
	for i := range rules {
		response[i] = toRuleResponse(&rules[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *AutomationHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id", "board")
	if !ok {
		return
	}

	var req AutomationRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	rule := &model.AutomationRule{BoardID: boardID, IsActive: true}
	req.applyTo(rule)
	if err := automation.Validate(rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.guard.authorize(c, userID, boardID, model.PermissionEdit) == nil {
		return
	}
	if !h.checkTarget(c, rule) {
		return
	}

	if err := h.rules.CreateRule(c.Request.Context(), rule); err != nil {
		h.logger.WithFields(logrus.Fields{"board_id": boardID, "error": err}).Error("failed to create automation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create automation"})
		return
	}

	c.JSON(http.StatusCreated, toRuleResponse(rule))
}

// loadRule writes 404 or 500 and returns nil when the rule cannot be loaded.
func (h *AutomationHandler) loadRule(c *gin.Context) *model.AutomationRule {
	ruleID, ok := uuidParam(c, "id", "automation")
	if !ok {
		return nil
	}

	rule, err := h.rules.GetRule(c.Request.Context(), ruleID)
	if err != nil {
		if errors.Is(err, repository.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Automation not found"})
			return nil
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve automation"})
		return nil
	}
	return rule
}

func (h *AutomationHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	rule := h.loadRule(c)
	if rule == nil {
		return
	}

	var req AutomationRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if h.guard.authorize(c, userID, rule.BoardID, model.PermissionEdit) == nil {
		return
	}

	req.applyTo(rule)
	if err := automation.Validate(rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.checkTarget(c, rule) {
		return
	}

	if err := h.rules.UpdateRule(c.Request.Context(), rule); err != nil {
		if errors.Is(err, repository.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Automation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update automation"})
		return
	}

	c.JSON(http.StatusOK, toRuleResponse(rule))
}

func (h *AutomationHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	rule := h.loadRule(c)
	if rule == nil {
		return
	}

	if h.guard.authorize(c, userID, rule.BoardID, model.PermissionDelete) == nil {
		return
	}

	if err := h.rules.DeleteRule(c.Request.Context(), rule.ID); err != nil {
		if errors.Is(err, repository.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Automation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete automation"})
		return
	}

	c.Status(http.StatusNoContent)
}

// Logs returns the board's most recent automation log entries, newest first.
func (h *AutomationHandler) Logs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := uuidParam(c, "id", "board")
	if !ok {
		return
	}

	if h.guard.authorize(c, userID, boardID, model.PermissionRead) == nil {
		return
	}

	logs, err := h.rules.ListLogs(c.Request.Context(), boardID, logPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve automation logs"})
		return
	}

	response := make([]AutomationLogResponse, len(logs))
	for i, l := range logs {
		response[i] = AutomationLogResponse{
			ID:        l.ID.String(),
			RuleID:    l.RuleID.String(),
			Status:    l.Status,
			Message:   l.Message,
			CreatedAt: l.CreatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, response)
}
