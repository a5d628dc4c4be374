package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"boardflow/internal/automation"
	"boardflow/internal/middleware"
	"boardflow/internal/model"
	"boardflow/internal/permission"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) ResolvePermission(ctx context.Context, userID, boardID uuid.UUID, required model.Permission) permission.Decision {
	args := m.Called(ctx, userID, boardID, required)
	return args.Get(0).(permission.Decision)
}

type MockTriggerProcessor struct {
	mock.Mock
}

func (m *MockTriggerProcessor) ProcessTrigger(ctx context.Context, boardID uuid.UUID, trigger model.TriggerType, triggerVal string, tc automation.TriggerContext) {
	m.Called(ctx, boardID, trigger, triggerVal, tc)
}

type MockBoardStore struct {
	mock.Mock
}

func (m *MockBoardStore) Create(ctx context.Context, board *model.Board) error {
	return m.Called(ctx, board).Error(0)
}

func (m *MockBoardStore) GetOwned(ctx context.Context, ownerID uuid.UUID) ([]model.Board, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.Board), args.Error(1)
}

func (m *MockBoardStore) WorkspaceBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Board), args.Error(1)
}

func (m *MockBoardStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	args := m.Called(ctx, id)
	board := args.Get(0)
	if board == nil {
		return nil, args.Error(1)
	}
	return board.(*model.Board), args.Error(1)
}

func (m *MockBoardStore) Update(ctx context.Context, board *model.Board) error {
	return m.Called(ctx, board).Error(0)
}

func (m *MockBoardStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockMemberStore struct {
	mock.Mock
}

func (m *MockMemberStore) AddMember(ctx context.Context, boardID, userID uuid.UUID, role model.Role) error {
	return m.Called(ctx, boardID, userID, role).Error(0)
}

func (m *MockMemberStore) RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error {
	return m.Called(ctx, boardID, userID).Error(0)
}

func (m *MockMemberStore) ListMembers(ctx context.Context, boardID uuid.UUID) ([]model.BoardMember, error) {
	args := m.Called(ctx, boardID)
	return args.Get(0).([]model.BoardMember), args.Error(1)
}

func (m *MockMemberStore) SharedBoards(ctx context.Context, userID uuid.UUID) ([]model.Board, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Board), args.Error(1)
}

type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

func (m *MockUserFinder) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user := args.Get(0)
	if user == nil {
		return nil, args.Error(1)
	}
	return user.(*model.User), args.Error(1)
}

type MockListStore struct {
	mock.Mock
}

func (m *MockListStore) Create(ctx context.Context, list *model.List) error {
	return m.Called(ctx, list).Error(0)
}

func (m *MockListStore) GetByID(ctx context.Context, id uuid.UUID) (*model.List, error) {
	args := m.Called(ctx, id)
	list := args.Get(0)
	if list == nil {
		return nil, args.Error(1)
	}
	return list.(*model.List), args.Error(1)
}

func (m *MockListStore) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.List, error) {
	args := m.Called(ctx, boardID)
	return args.Get(0).([]model.List), args.Error(1)
}

func (m *MockListStore) NextPosition(ctx context.Context, boardID uuid.UUID) (int, error) {
	args := m.Called(ctx, boardID)
	return args.Int(0), args.Error(1)
}

func (m *MockListStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockCardStore struct {
	mock.Mock
}

func (m *MockCardStore) Create(ctx context.Context, card *model.Card) error {
	args := m.Called(ctx, card)
	if args.Error(0) == nil && card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockCardStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Card, error) {
	args := m.Called(ctx, id)
	card := args.Get(0)
	if card == nil {
		return nil, args.Error(1)
	}
	return card.(*model.Card), args.Error(1)
}

func (m *MockCardStore) GetByListID(ctx context.Context, listID uuid.UUID) ([]model.Card, error) {
	args := m.Called(ctx, listID)
	return args.Get(0).([]model.Card), args.Error(1)
}

func (m *MockCardStore) Move(ctx context.Context, cardID, listID uuid.UUID, newPosition int) error {
	return m.Called(ctx, cardID, listID, newPosition).Error(0)
}

func (m *MockCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockLabelStore struct {
	mock.Mock
}

func (m *MockLabelStore) Create(ctx context.Context, label *model.Label) error {
	return m.Called(ctx, label).Error(0)
}

func (m *MockLabelStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Label, error) {
	args := m.Called(ctx, id)
	label := args.Get(0)
	if label == nil {
		return nil, args.Error(1)
	}
	return label.(*model.Label), args.Error(1)
}

func (m *MockLabelStore) GetByBoardID(ctx context.Context, boardID uuid.UUID) ([]model.Label, error) {
	args := m.Called(ctx, boardID)
	return args.Get(0).([]model.Label), args.Error(1)
}

func (m *MockLabelStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockRuleStore struct {
	mock.Mock
}

func (m *MockRuleStore) CreateRule(ctx context.Context, rule *model.AutomationRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *MockRuleStore) GetRule(ctx context.Context, id uuid.UUID) (*model.AutomationRule, error) {
	args := m.Called(ctx, id)
	rule := args.Get(0)
	if rule == nil {
		return nil, args.Error(1)
	}
	return rule.(*model.AutomationRule), args.Error(1)
}

func (m *MockRuleStore) ListRules(ctx context.Context, boardID uuid.UUID) ([]model.AutomationRule, error) {
	args := m.Called(ctx, boardID)
	return args.Get(0).([]model.AutomationRule), args.Error(1)
}

func (m *MockRuleStore) UpdateRule(ctx context.Context, rule *model.AutomationRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *MockRuleStore) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRuleStore) ListLogs(ctx context.Context, boardID uuid.UUID, limit int) ([]model.AutomationLog, error) {
	args := m.Called(ctx, boardID, limit)
	return args.Get(0).([]model.AutomationLog), args.Error(1)
}

// newRouter returns a gin engine that authenticates every request as userID.
func newRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}
