// Package automation runs board rules in response to card events.
package automation

import (
	"context"
	"fmt"
	"time"

	"boardflow/internal/lock"
	"boardflow/internal/model"
	"boardflow/internal/report"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Gateway is the persistence the engine needs. Transaction runs fn against a
// Gateway bound to one database transaction.
type Gateway interface {
	CardMutator
	ActiveRules(ctx context.Context, boardID uuid.UUID, trigger model.TriggerType) ([]model.AutomationRule, error)
	AppendLog(ctx context.Context, entry *model.AutomationLog) error
	Transaction(ctx context.Context, fn func(tx Gateway) error) error
}

// TriggerContext identifies the card the event happened to.
type TriggerContext struct {
	CardID uuid.UUID
}

type Engine struct {
	gateway  Gateway
	locker   lock.Locker
	reporter report.Reporter
	logger   logrus.FieldLogger
	now      func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLocker(l lock.Locker) Option {
	return func(e *Engine) { e.locker = l }
}

func WithReporter(r report.Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(gateway Gateway, opts ...Option) *Engine {
	e := &Engine{
		gateway:  gateway,
		locker:   lock.NewKeyed(),
		reporter: report.Nop{},
		logger:   logrus.StandardLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessTrigger runs every active rule on boardID whose trigger matches.
// It never fails: rule problems become FAILURE log rows and anything else is
// logged and reported. Runs for the same card are serialized.
func (e *Engine) ProcessTrigger(ctx context.Context, boardID uuid.UUID, trigger model.TriggerType, triggerVal string, tc TriggerContext) {
	log := e.logger.WithFields(logrus.Fields{
		"board_id":    boardID,
		"trigger":     trigger,
		"trigger_val": triggerVal,
		"card_id":     tc.CardID,
	})

	defer func() {
		if r := recover(); r != nil {
			e.fail(log, "automation_panic", fmt.Errorf("panic: %v", r))
		}
	}()

	unlock, err := e.locker.Lock(ctx, "card:"+tc.CardID.String())
	if err != nil {
		e.fail(log, "automation_lock", err)
		return
	}
	defer unlock()

	rules, err := e.gateway.ActiveRules(ctx, boardID, trigger)
	if err != nil {
		e.fail(log, "automation_fetch_rules", err)
		return
	}

	for i := range rules {
		rule := &rules[i]
		if rule.TriggerVal != triggerVal {
			continue
		}
		e.runRule(ctx, log.WithField("rule_id", rule.ID), rule, tc.CardID)
	}
}

// runRule applies one rule. A panic inside it becomes that rule's FAILURE
// row so the remaining rules still run.
func (e *Engine) runRule(ctx context.Context, log logrus.FieldLogger, rule *model.AutomationRule, cardID uuid.UUID) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			e.reporter.CaptureError("automation_panic", err, map[string]interface{}{"rule_id": rule.ID.String()})
			e.recordFailure(ctx, log, rule, err)
		}
	}()

	action, err := ParseAction(rule.ActionType, rule.ActionVal)
	if err != nil {
		e.recordFailure(ctx, log, rule, err)
		return
	}

	now := e.now()
	err = e.gateway.Transaction(ctx, func(tx Gateway) error {
		msg, err := action.Apply(ctx, tx, cardID, now)
		if err != nil {
			return err
		}
		return tx.AppendLog(ctx, &model.AutomationLog{
			RuleID:  rule.ID,
			Status:  model.LogSuccess,
			Message: msg,
		})
	})
	if err != nil {
		e.recordFailure(ctx, log, rule, err)
		return
	}
	log.WithField("action", rule.ActionType).Debug("automation rule applied")
}

func (e *Engine) recordFailure(ctx context.Context, log logrus.FieldLogger, rule *model.AutomationRule, cause error) {
	log.WithFields(logrus.Fields{
		"action": rule.ActionType,
		"error":  cause,
	}).Warn("automation rule failed")

	err := e.gateway.AppendLog(ctx, &model.AutomationLog{
		RuleID:  rule.ID,
		Status:  model.LogFailure,
		Message: cause.Error(),
	})
	if err != nil {
		e.fail(log, "automation_write_log", err)
	}
}

func (e *Engine) fail(log logrus.FieldLogger, errorType string, err error) {
	log.WithFields(logrus.Fields{
		"error_type": errorType,
		"error":      err,
	}).Error("automation run aborted")
	e.reporter.CaptureError(errorType, err, nil)
}
