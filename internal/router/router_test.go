package router

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cryptosignals/conf"
	"cryptosignals/internal/consts"
	"cryptosignals/internal/dao"
	adminHandler "cryptosignals/internal/handler/admin"
	planHandler "cryptosignals/internal/handler/plan"
	signalHandler "cryptosignals/internal/handler/signal"
	supportHandler "cryptosignals/internal/handler/support"
	userHandler "cryptosignals/internal/handler/user"
	"cryptosignals/internal/middleware"
	"cryptosignals/internal/model"
	"cryptosignals/internal/model/entity"
	"cryptosignals/internal/seed"
	"cryptosignals/internal/service"
	"cryptosignals/internal/session"
	"cryptosignals/internal/signal"
	"cryptosignals/pkg/errors/ecode"
	"cryptosignals/pkg/validator"
	"cryptosignals/utils/security"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserDao struct {
	mu    sync.Mutex
	users map[string]entity.User
}

var _ dao.UserDao = (*memUserDao)(nil)

func (m *memUserDao) UserGetByEmail(_ context.Context, email string) (entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return entity.User{}, dao.ErrUserNotFound
	}
	return u, nil
}

func (m *memUserDao) UserGetById(_ context.Context, userId int64) (entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Id == userId {
			return u, nil
		}
	}
	return entity.User{}, dao.ErrUserNotFound
}

func (m *memUserDao) UserCreate(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return dao.ErrUserExist
	}
	m.users[user.Email] = *user
	return nil
}

func (m *memUserDao) UserUpdateRoleAndPlan(_ context.Context, email, role, plan string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return dao.ErrUserNotFound
	}
	u.Role, u.Plan = role, plan
	m.users[email] = u
	return nil
}

func (m *memUserDao) UserList(_ context.Context) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserDao) UserDelete(_ context.Context, userId int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, u := range m.users {
		if u.Id == userId {
			delete(m.users, k)
			return nil
		}
	}
	return dao.ErrUserNotFound
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	ip     atomic.Int32
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.LazyInitGinValidator("en")
	conf.AppConfig.Jwt = conf.JwtConfig{Secret: "router-secret", JwtTtl: 3600}

	hashed, err := security.PasswordHash("admin-pass")
	require.NoError(t, err)
	ud := &memUserDao{users: map[string]entity.User{
		"admin@example.com": {Id: 1, Name: "Admin", Email: "admin@example.com", Password: hashed, Role: consts.RoleAdmin},
	}}

	d, err := seed.Load("")
	require.NoError(t, err)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := signal.NewPolicy(d.Assignments())
	manager := signal.NewManager(signal.NewStore(d.Signals(now)...), policy)

	sessions := session.NewMemoryStore()
	users := service.NewUserService(ud, sessions)
	plans := service.NewPlanService(d, policy)
	signals := service.NewSignalService(manager, plans)
	support := service.NewSupportService(d.FAQ, nil, "")

	g := gin.New()
	middleware.NewMiddleware().Load(g)
	NewApiRouter(sessions,
		userHandler.NewUserHandler(users),
		signalHandler.NewSignalHandler(signals),
		planHandler.NewPlanHandler(plans),
		supportHandler.NewSupportHandler(support),
		adminHandler.NewAdminHandler(users, plans),
	).Load(g)
	return &apiClient{t: t, engine: g}
}

// 每个请求使用不同的来源地址，避免触发防重复提交
func (c *apiClient) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = fmt.Sprintf("10.0.0.%d:4000", c.ip.Add(1))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var res envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return res
}

func (c *apiClient) login(email, password string) string {
	c.t.Helper()
	w := c.do(http.MethodPost, "/api/v1/auth/login", "", model.UserLoginReq{Email: email, Password: password})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	return decode[model.UserLoginRes](c.t, w).Data.Token
}

func TestPublicRoutes(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/ping", "", nil).Code)

	w := api.do(http.MethodGet, "/api/v1/plan/list", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	plans := decode[[]model.Plan](t, w).Data
	require.Len(t, plans, 3)
	assert.Equal(t, signal.TierBasic, plans[0].ID)

	w = api.do(http.MethodGet, "/api/v1/plan/statistics", "", nil)
	assert.Len(t, decode[[]model.PlanStatisticsRes](t, w).Data, 3)

	w = api.do(http.MethodGet, "/api/v1/support/faq", "", nil)
	assert.NotEmpty(t, decode[[]model.FaqItem](t, w).Data)

	w = api.do(http.MethodPost, "/api/v1/support/contact", "", model.ContactReq{
		Name: "Dan", Email: "dan@example.com", Subject: "refund", Message: "hi",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ecode.ValidateErr, decode[any](t, w).Code)

	w = api.do(http.MethodPost, "/api/v1/support/contact", "", model.ContactReq{
		Name: "Dan", Email: "dan@example.com", Subject: "billing", Message: "hi",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[model.ContactRes](t, w).Data.Sent)
}

func TestSubscriberFlow(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/v1/auth/register", "", model.UserRegisterReq{
		Name: "Erin", Email: "erin@example.com", Password: "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reg := decode[model.UserLoginRes](t, w).Data
	assert.Equal(t, signal.TierNone, reg.User.Plan)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/signal/list", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/v1/signal/list", reg.Token, nil).Code)

	w = api.do(http.MethodGet, "/api/v1/signal/dashboard", reg.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[model.DashboardRes](t, w).Data.TotalSignals)

	adminToken := api.login("admin@example.com", "admin-pass")
	w = api.do(http.MethodPost, "/api/v1/admin/user/role", adminToken, model.UserRoleReq{
		Email: "erin@example.com", Role: consts.RoleUser, Plan: "pro",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 在线会话立即刷新，无需重新登录
	w = api.do(http.MethodGet, "/api/v1/signal/list", reg.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, signal.TierPro, decode[model.SignalListRes](t, w).Data.Tier)
	token := api.login("erin@example.com", "secret1")

	w = api.do(http.MethodGet, "/api/v1/signal/list", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[model.SignalListRes](t, w).Data
	assert.Equal(t, signal.TierPro, list.Tier)
	assert.Len(t, list.Signals, 6)

	w = api.do(http.MethodGet, "/api/v1/signal/list?status=open&search=avax", token, nil)
	for _, s := range decode[model.SignalListRes](t, w).Data.Signals {
		assert.Equal(t, "AVAX/USDT", s.Coin)
		assert.Equal(t, signal.StatusOpen, s.Status)
	}

	w = api.do(http.MethodGet, "/api/v1/signal/list?status=pending", token, nil)
	assert.Equal(t, ecode.ValidateErr, decode[any](t, w).Code)

	w = api.do(http.MethodGet, "/api/v1/user/info", token, nil)
	assert.Equal(t, signal.TierPro, decode[model.UserInfo](t, w).Data.Plan)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/v1/admin/signal/list", token, nil).Code)

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/user/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/user/info", token, nil).Code)

	w = api.do(http.MethodPost, "/api/v1/auth/login", "", model.UserLoginReq{Email: "erin@example.com", Password: "nope"})
	assert.Equal(t, ecode.UserLoginErr, decode[any](t, w).Code)
}

func TestAdminSignalLifecycle(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("admin@example.com", "admin-pass")

	w := api.do(http.MethodPost, "/api/v1/admin/signal/create", token, model.SignalCreateReq{
		Coin: "BTC/USDT", Type: "buy", EntryPrice: 65000, TargetPrice: 70000, StopLoss: 62000,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[signal.Signal](t, w).Data
	assert.Equal(t, signal.TierBasic, created.SubscriptionLevel)
	assert.Equal(t, signal.StatusOpen, created.Status)

	w = api.do(http.MethodPost, "/api/v1/admin/signal/create", token, map[string]any{
		"coin": "BTC/USDT", "type": "hold", "entry_price": 1, "target_price": 1, "stop_loss": 1,
	})
	assert.Equal(t, ecode.ValidateErr, decode[any](t, w).Code)

	w = api.do(http.MethodPost, "/api/v1/admin/signal/close", token, map[string]any{
		"id": created.ID, "exit_price": "68000",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	closed := decode[signal.Signal](t, w).Data
	require.NotNil(t, closed.Profit)
	assert.InDelta(t, 4.615, *closed.Profit, 0.001)

	w = api.do(http.MethodPost, "/api/v1/admin/signal/close", token, map[string]any{
		"id": created.ID, "exit_price": 69000,
	})
	assert.Equal(t, ecode.NotFoundErr, decode[any](t, w).Code)

	w = api.do(http.MethodPost, "/api/v1/admin/signal/close", token, map[string]any{
		"id": "no-such-signal", "exit_price": "abc",
	})
	assert.Equal(t, ecode.NotFoundErr, decode[any](t, w).Code)

	entry := 3400.0
	w = api.do(http.MethodPost, "/api/v1/admin/signal/edit", token, model.SignalEditReq{ID: "3", EntryPrice: &entry})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	edited := decode[signal.Signal](t, w).Data
	assert.NotEqual(t, "3", edited.ID)
	assert.Equal(t, entry, edited.EntryPrice)

	w = api.do(http.MethodPost, "/api/v1/admin/signal/delete", token, model.SignalDeleteReq{ID: edited.ID})
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodPost, "/api/v1/admin/signal/delete", token, model.SignalDeleteReq{ID: edited.ID})
	assert.Equal(t, ecode.NotFoundErr, decode[any](t, w).Code)

	w = api.do(http.MethodGet, "/api/v1/admin/signal/list", token, nil)
	assert.Len(t, decode[model.SignalListRes](t, w).Data.Signals, 10)
}

func TestAdminCloseRejectsNonNumericExitPrice(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("admin@example.com", "admin-pass")

	for _, price := range []any{true, false, nil, "abc", map[string]any{"v": 1}} {
		w := api.do(http.MethodPost, "/api/v1/admin/signal/close", token, map[string]any{
			"id": "1", "exit_price": price,
		})
		assert.Equal(t, ecode.ValidateErr, decode[any](t, w).Code, "exit_price %v", price)
	}

	w := api.do(http.MethodGet, "/api/v1/admin/signal/list", token, nil)
	var stillOpen bool
	for _, s := range decode[model.SignalListRes](t, w).Data.Signals {
		if s.ID == "1" {
			stillOpen = s.Status == signal.StatusOpen
		}
	}
	assert.True(t, stillOpen)
}

func TestAdminDemotionAppliesToLiveSession(t *testing.T) {
	api := newTestAPI(t)
	adminToken := api.login("admin@example.com", "admin-pass")

	w := api.do(http.MethodPost, "/api/v1/auth/register", "", model.UserRegisterReq{
		Name: "Finn", Email: "finn@example.com", Password: "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[model.UserLoginRes](t, w).Data.Token

	w = api.do(http.MethodPost, "/api/v1/admin/user/role", adminToken, model.UserRoleReq{
		Email: "finn@example.com", Role: consts.RoleAdmin, Plan: "premium",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/admin/signal/list", token, nil).Code)

	w = api.do(http.MethodPost, "/api/v1/admin/user/role", adminToken, model.UserRoleReq{
		Email: "finn@example.com", Role: consts.RoleUser,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/v1/admin/signal/list", token, nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/v1/signal/list", token, nil).Code)
}

func TestAdminUserDelete(t *testing.T) {
	api := newTestAPI(t)
	adminToken := api.login("admin@example.com", "admin-pass")

	w := api.do(http.MethodPost, "/api/v1/auth/register", "", model.UserRegisterReq{
		Name: "Gus", Email: "gus@example.com", Password: "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[model.UserLoginRes](t, w).Data.Token
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/v1/user/info", token, nil).Code)

	w = api.do(http.MethodPost, "/api/v1/admin/user/delete", adminToken, model.UserDeleteReq{Email: "Gus@Example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/v1/user/info", token, nil).Code)

	w = api.do(http.MethodPost, "/api/v1/admin/user/delete", adminToken, model.UserDeleteReq{Email: "gus@example.com"})
	assert.Equal(t, ecode.NotFoundErr, decode[any](t, w).Code)

	w = api.do(http.MethodPost, "/api/v1/admin/user/delete", adminToken, model.UserDeleteReq{Email: "admin@example.com"})
	assert.Equal(t, ecode.ValidateErr, decode[any](t, w).Code)

	w = api.do(http.MethodGet, "/api/v1/admin/user/list", adminToken, nil)
	assert.Len(t, decode[model.UserListRes](t, w).Data.Users, 1)
}

func TestAdminPlanAndUsers(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("admin@example.com", "admin-pass")

	w := api.do(http.MethodPost, "/api/v1/admin/plan/coins", token, model.PlanCoinsReq{
		PlanID: "basic", Coins: []string{"BTC/USDT", "DOGE/USDT"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plans := decode[[]model.Plan](t, w).Data
	assert.Equal(t, []string{"BTC/USDT", "DOGE/USDT"}, plans[0].Coins)

	w = api.do(http.MethodPost, "/api/v1/admin/signal/create", token, model.SignalCreateReq{
		Coin: "DOGE/USDT", Type: "sell", EntryPrice: 0.2, TargetPrice: 0.15, StopLoss: 0.25,
	})
	assert.Equal(t, signal.TierBasic, decode[signal.Signal](t, w).Data.SubscriptionLevel)

	w = api.do(http.MethodPost, "/api/v1/admin/plan/coins", token, map[string]any{"plan_id": "gold", "coins": []string{"BTC/USDT"}})
	assert.Equal(t, ecode.ValidateErr, decode[any](t, w).Code)

	w = api.do(http.MethodPost, "/api/v1/admin/user/role", token, model.UserRoleReq{Email: "ghost@example.com", Role: "user"})
	assert.Equal(t, ecode.NotFoundErr, decode[any](t, w).Code)

	w = api.do(http.MethodGet, "/api/v1/admin/user/list", token, nil)
	users := decode[model.UserListRes](t, w).Data.Users
	require.Len(t, users, 1)
	assert.True(t, users[0].IsAdministrator)
}
