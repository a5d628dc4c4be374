package automation_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"boardflow/internal/automation"
	"boardflow/internal/model"

	"github.com/google/uuid"
)

var (
	errCardNotFound = errors.New("card not found")
	errForeignList  = errors.New("target list is not on the card's board")
)

type pair [2]uuid.UUID

// fakeStore is an in-memory database. Attachments are keyed like the real
// join tables so inserts are insert-if-absent under one mutex.
type fakeStore struct {
	mu       sync.Mutex
	rules    []model.AutomationRule
	rulesErr error
	cards    map[uuid.UUID]*model.Card
	labels   map[pair]bool
	members  map[pair]bool
	logs     []model.AutomationLog

	// foreignLists are lists on some other board.
	foreignLists map[uuid.UUID]bool

	failMutation   error
	failSuccessLog error
	panicOnFetch   bool
	panicOnAttach  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cards:   make(map[uuid.UUID]*model.Card),
		labels:  make(map[pair]bool),
		members: make(map[pair]bool),

		foreignLists: make(map[uuid.UUID]bool),
	}
}

func (s *fakeStore) addCard(listID uuid.UUID) *model.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &model.Card{ID: uuid.New(), ListID: listID}
	s.cards[c.ID] = c
	return c
}

func (s *fakeStore) addRule(r model.AutomationRule) model.AutomationRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	s.rules = append(s.rules, r)
	return r
}

func (s *fakeStore) card(id uuid.UUID) model.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.cards[id]
}

func (s *fakeStore) snapshotLogs() []model.AutomationLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.AutomationLog(nil), s.logs...)
}

func (s *fakeStore) labelCount(cardID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.labels {
		if k[0] == cardID {
			n++
		}
	}
	return n
}

// fakeGateway records undo steps while inside Transaction.
type fakeGateway struct {
	s    *fakeStore
	undo *[]func()
}

var _ automation.Gateway = (*fakeGateway)(nil)

func (g *fakeGateway) record(fn func()) {
	if g.undo != nil {
		*g.undo = append(*g.undo, fn)
	}
}

func (g *fakeGateway) Transaction(ctx context.Context, fn func(tx automation.Gateway) error) error {
	undo := []func(){}
	tx := &fakeGateway{s: g.s, undo: &undo}
	rollback := func() {
		g.s.mu.Lock()
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		g.s.mu.Unlock()
	}
	defer func() {
		if r := recover(); r != nil {
			rollback()
			panic(r)
		}
	}()
	if err := fn(tx); err != nil {
		rollback()
		return err
	}
	return nil
}

func (g *fakeGateway) ActiveRules(ctx context.Context, boardID uuid.UUID, trigger model.TriggerType) ([]model.AutomationRule, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	if g.s.panicOnFetch {
		panic("driver exploded")
	}
	if g.s.rulesErr != nil {
		return nil, g.s.rulesErr
	}
	var out []model.AutomationRule
	for _, r := range g.s.rules {
		if r.BoardID == boardID && r.TriggerType == trigger && r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (g *fakeGateway) AppendLog(ctx context.Context, entry *model.AutomationLog) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	if entry.Status == model.LogSuccess && g.s.failSuccessLog != nil {
		return g.s.failSuccessLog
	}
	e := *entry
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	g.s.logs = append(g.s.logs, e)
	g.record(func() {
		for i := range g.s.logs {
			if g.s.logs[i].ID == e.ID {
				g.s.logs = append(g.s.logs[:i], g.s.logs[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (g *fakeGateway) updateCard(cardID uuid.UUID, fn func(c *model.Card)) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	if g.s.failMutation != nil {
		return g.s.failMutation
	}
	c, ok := g.s.cards[cardID]
	if !ok {
		return errCardNotFound
	}
	before := *c
	fn(c)
	g.record(func() { *c = before })
	return nil
}

func (g *fakeGateway) ArchiveCard(ctx context.Context, cardID uuid.UUID) error {
	return g.updateCard(cardID, func(c *model.Card) { c.Archived = true })
}

func (g *fakeGateway) MarkCardDone(ctx context.Context, cardID uuid.UUID) error {
	return g.updateCard(cardID, func(c *model.Card) { c.Done = true })
}

func (g *fakeGateway) MoveCardToList(ctx context.Context, cardID, listID uuid.UUID) error {
	g.s.mu.Lock()
	foreign := g.s.foreignLists[listID]
	g.s.mu.Unlock()
	if foreign {
		return errForeignList
	}
	return g.updateCard(cardID, func(c *model.Card) { c.ListID = listID })
}

func (g *fakeGateway) SetCardDueDate(ctx context.Context, cardID uuid.UUID, due time.Time) error {
	return g.updateCard(cardID, func(c *model.Card) { c.DueDate = &due })
}

func (g *fakeGateway) attach(set map[pair]bool, key pair) (bool, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	if g.s.failMutation != nil {
		return false, g.s.failMutation
	}
	if _, ok := g.s.cards[key[0]]; !ok {
		return false, errCardNotFound
	}
	if set[key] {
		return false, nil
	}
	set[key] = true
	g.record(func() { delete(set, key) })
	return true, nil
}

func (g *fakeGateway) AttachLabel(ctx context.Context, cardID, labelID uuid.UUID) (bool, error) {
	if g.s.panicOnAttach {
		panic("nil label row")
	}
	return g.attach(g.s.labels, pair{cardID, labelID})
}

func (g *fakeGateway) AttachMember(ctx context.Context, cardID, userID uuid.UUID) (bool, error) {
	return g.attach(g.s.members, pair{cardID, userID})
}

func (g *fakeGateway) DetachLabel(ctx context.Context, cardID, labelID uuid.UUID) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	if g.s.failMutation != nil {
		return g.s.failMutation
	}
	key := pair{cardID, labelID}
	if g.s.labels[key] {
		delete(g.s.labels, key)
		g.record(func() { g.s.labels[key] = true })
	}
	return nil
}
