package router

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	"github.com/fastygo/taskboard/internal/metrics"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/repository/memory"
	"github.com/fastygo/taskboard/usecase"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	boardUC "github.com/fastygo/taskboard/usecase/board"
	commentUC "github.com/fastygo/taskboard/usecase/comment"
	profileUC "github.com/fastygo/taskboard/usecase/profile"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type api struct {
	t       *testing.T
	handler fasthttp.RequestHandler
}

func newAPI(t *testing.T) *api {
	t.Helper()
	log := zaptest.NewLogger(t)
	store := memory.New()
	adapter := httpcontext.NewAdapter(time.Second)
	policy := domain.TaskPolicy{}
	resolver := usecase.NewResolver(store.Users(), store.Comments())

	authUseCase := authUC.New(store.Users(), store.Tokens(), bcrypt.MinCost, log)
	mon := monitor.New(time.Second, log)

	handlers := Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, adapter, log),
		Profile: apiHandler.NewProfileHandler(profileUC.New(store.Users(), log), adapter, log),
		Board:   apiHandler.NewBoardHandler(boardUC.New(store.Boards(), store.Tasks(), resolver, log), adapter, log),
		Task: apiHandler.NewTaskHandler(
			taskUC.New(store.Tasks(), store.Boards(), store.Users(), resolver, policy, log), adapter, log),
		Comment: apiHandler.NewCommentHandler(
			commentUC.New(store.Comments(), store.Tasks(), store.Boards(), resolver, policy, log), adapter, log),
		Health: apiHandler.NewHealthHandler(mon, adapter, log),
	}

	m := metrics.New("test")
	r := New(handlers, middleware.NewTokenAuth(authUseCase, adapter, m, log), Options{Metrics: m})
	return &api{t: t, handler: Handler(r, m)}
}

type response struct {
	status int
	body   []byte
}

func (r response) decode(t *testing.T, dst interface{}) {
	t.Helper()
	require.NoError(t, sonic.Unmarshal(r.body, dst), string(r.body))
}

func (a *api) do(method, path, token string, body interface{}) response {
	a.t.Helper()
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if token != "" {
		ctx.Request.Header.Set(fasthttp.HeaderAuthorization, "Token "+token)
	}
	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(a.t, err)
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBody(raw)
	}
	a.handler(&ctx)
	return response{status: ctx.Response.StatusCode(), body: append([]byte(nil), ctx.Response.Body()...)}
}

type authResult struct {
	Token    string `json:"token"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	UserID   int64  `json:"user_id"`
}

func (a *api) register(email, fullname string) authResult {
	a.t.Helper()
	res := a.do(http.MethodPost, "/registration/", "", map[string]string{
		"fullname":          fullname,
		"email":             email,
		"password":          "pass1234",
		"repeated_password": "pass1234",
	})
	require.Equal(a.t, http.StatusCreated, res.status, string(res.body))
	var out authResult
	res.decode(a.t, &out)
	return out
}

type errorBody struct {
	Status string `json:"status"`
	Code   string `json:"code"`
	Error  string `json:"error"`
	Meta   struct {
		Fields map[string]string `json:"fields"`
	} `json:"meta"`
}

func TestRegistrationAndLogin(t *testing.T) {
	a := newAPI(t)

	reg := a.register("Ada@Example.com", "Ada Lovelace")
	assert.Len(t, reg.Token, 40)
	assert.Equal(t, "ada@example.com", reg.Email)
	assert.Equal(t, "Ada Lovelace", reg.Fullname)

	res := a.do(http.MethodPost, "/login/", "", map[string]string{"email": "ada@example.com", "password": "pass1234"})
	require.Equal(t, http.StatusOK, res.status)
	var login authResult
	res.decode(t, &login)
	assert.Equal(t, reg.Token, login.Token)

	res = a.do(http.MethodPost, "/login/", "", map[string]string{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = a.do(http.MethodPost, "/registration/", "", map[string]string{
		"fullname": "Ada Two", "email": "ada@example.com", "password": "a", "repeated_password": "a",
	})
	require.Equal(t, http.StatusBadRequest, res.status)
	var conflict errorBody
	res.decode(t, &conflict)
	assert.Equal(t, "CONFLICT", conflict.Code)
	assert.Contains(t, conflict.Meta.Fields, "email")

	res = a.do(http.MethodPost, "/registration/", "", map[string]string{
		"fullname": "Bob", "email": "bob@example.com", "password": "a", "repeated_password": "b",
	})
	require.Equal(t, http.StatusBadRequest, res.status)
	var mismatch errorBody
	res.decode(t, &mismatch)
	assert.Contains(t, mismatch.Meta.Fields, "repeated_password")
}

func TestProfileEmailCheckAndLogout(t *testing.T) {
	a := newAPI(t)
	reg := a.register("grace@example.com", "Grace Hopper")

	res := a.do(http.MethodGet, "/users/me/", reg.Token, nil)
	require.Equal(t, http.StatusOK, res.status)
	var me map[string]interface{}
	res.decode(t, &me)
	assert.Equal(t, "grace@example.com", me["email"])
	assert.Equal(t, "Grace Hopper", me["fullname"])
	assert.Equal(t, "gracehopper", me["username"])

	res = a.do(http.MethodPost, "/email-check/", "", map[string]string{"email": "GRACE@example.com"})
	assert.Equal(t, http.StatusOK, res.status)
	res = a.do(http.MethodPost, "/email-check/", "", map[string]string{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, res.status)

	res = a.do(http.MethodPost, "/logout/", reg.Token, nil)
	assert.Equal(t, http.StatusNoContent, res.status)
	res = a.do(http.MethodGet, "/users/me/", reg.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

func TestBoardLifecycle(t *testing.T) {
	a := newAPI(t)
	owner := a.register("owner@example.com", "Owner One")
	member := a.register("member@example.com", "Member Two")
	outsider := a.register("out@example.com", "Out Sider")

	res := a.do(http.MethodPost, "/boards/", owner.Token, map[string]interface{}{
		"title":   "Launch",
		"members": []int64{member.UserID},
	})
	require.Equal(t, http.StatusCreated, res.status, string(res.body))
	var summary map[string]interface{}
	res.decode(t, &summary)
	assert.Equal(t, float64(1), summary["member_count"])
	assert.Equal(t, float64(0), summary["ticket_count"])
	boardID := int64(summary["id"].(float64))
	boardPath := fmt.Sprintf("/boards/%d/", boardID)

	res = a.do(http.MethodGet, "/boards/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)

	res = a.do(http.MethodGet, boardPath, outsider.Token, nil)
	assert.Equal(t, http.StatusForbidden, res.status)
	res = a.do(http.MethodGet, "/boards/999/", outsider.Token, nil)
	assert.Equal(t, http.StatusNotFound, res.status)

	res = a.do(http.MethodGet, boardPath, member.Token, nil)
	require.Equal(t, http.StatusOK, res.status)
	var detail map[string]interface{}
	res.decode(t, &detail)
	assert.Len(t, detail["members"], 1)
	assert.Empty(t, detail["tasks"])
	assert.Equal(t, float64(1), detail["member_count"])
	assert.Equal(t, float64(0), detail["ticket_count"])
	assert.Equal(t, float64(0), detail["tasks_to_do_count"])
	assert.Equal(t, float64(0), detail["tasks_high_prio_count"])

	res = a.do(http.MethodPatch, boardPath, member.Token, map[string]interface{}{
		"title":   "Launch v2",
		"members": []int64{member.UserID, outsider.UserID},
	})
	require.Equal(t, http.StatusOK, res.status, string(res.body))
	var patched map[string]interface{}
	res.decode(t, &patched)
	assert.Equal(t, "Launch v2", patched["title"])
	assert.Len(t, patched["members_data"], 2)
	assert.NotNil(t, patched["owner_data"])
	assert.NotContains(t, patched, "tasks")

	res = a.do(http.MethodGet, "/boards/", outsider.Token, nil)
	require.Equal(t, http.StatusOK, res.status)
	var list []map[string]interface{}
	res.decode(t, &list)
	assert.Len(t, list, 1)

	res = a.do(http.MethodDelete, boardPath, member.Token, nil)
	assert.Equal(t, http.StatusForbidden, res.status)
	res = a.do(http.MethodDelete, boardPath, owner.Token, nil)
	assert.Equal(t, http.StatusNoContent, res.status)
	res = a.do(http.MethodGet, boardPath, owner.Token, nil)
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestTaskAndCommentFlow(t *testing.T) {
	a := newAPI(t)
	owner := a.register("owner@example.com", "Owner One")
	member := a.register("member@example.com", "Member Two")
	outsider := a.register("out@example.com", "Out Sider")

	res := a.do(http.MethodPost, "/boards/", owner.Token, map[string]interface{}{
		"title": "Ops", "members": []int64{member.UserID},
	})
	require.Equal(t, http.StatusCreated, res.status)
	var board map[string]interface{}
	res.decode(t, &board)
	boardID := int64(board["id"].(float64))

	taskBody := map[string]interface{}{
		"board":       boardID,
		"title":       "Rotate keys",
		"description": "quarterly",
		"priority":    "high",
		"assignee_id": member.UserID,
		"due_date":    "2026-12-01",
	}
	res = a.do(http.MethodPost, "/tasks/", owner.Token, taskBody)
	assert.Equal(t, http.StatusForbidden, res.status, "owner is not a member")

	res = a.do(http.MethodPost, "/tasks/", member.Token, taskBody)
	require.Equal(t, http.StatusCreated, res.status, string(res.body))
	var task map[string]interface{}
	res.decode(t, &task)
	assert.Equal(t, "to-do", task["status"])
	assert.Equal(t, "2026-12-01", task["due_date"])
	assert.Equal(t, float64(boardID), task["board"])
	taskID := int64(task["id"].(float64))
	taskPath := fmt.Sprintf("/tasks/%d/", taskID)

	// reads are public, a bad token is not
	res = a.do(http.MethodGet, taskPath, "", nil)
	assert.Equal(t, http.StatusOK, res.status)
	res = a.do(http.MethodGet, "/tasks/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)

	res = a.do(http.MethodGet, "/tasks/assigned-to-me/", member.Token, nil)
	require.Equal(t, http.StatusOK, res.status)
	var assigned []map[string]interface{}
	res.decode(t, &assigned)
	assert.Len(t, assigned, 1)

	res = a.do(http.MethodPatch, taskPath, member.Token, map[string]interface{}{"status": "reviewing", "due_date": nil})
	require.Equal(t, http.StatusOK, res.status, string(res.body))
	var patched map[string]interface{}
	res.decode(t, &patched)
	assert.Equal(t, "reviewing", patched["status"])
	assert.Nil(t, patched["due_date"])
	assert.NotContains(t, patched, "board")
	assert.NotContains(t, patched, "comments_count")

	res = a.do(http.MethodPatch, taskPath, member.Token, map[string]interface{}{"board": boardID + 1})
	assert.Equal(t, http.StatusBadRequest, res.status)

	reviewerPath := fmt.Sprintf("/tasks/%d/reviewer/", taskID)
	res = a.do(http.MethodPatch, reviewerPath, outsider.Token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, res.status)
	res = a.do(http.MethodPatch, reviewerPath, outsider.Token, map[string]interface{}{"reviewer_id": 999})
	require.Equal(t, http.StatusNotFound, res.status)
	var notFound errorBody
	res.decode(t, &notFound)
	assert.Equal(t, "Reviewer not found.", notFound.Error)
	res = a.do(http.MethodPatch, reviewerPath, outsider.Token, map[string]interface{}{"reviewer_id": owner.UserID})
	assert.Equal(t, http.StatusOK, res.status)

	res = a.do(http.MethodGet, "/tasks/reviewing/", owner.Token, nil)
	require.Equal(t, http.StatusOK, res.status)
	var reviewing []map[string]interface{}
	res.decode(t, &reviewing)
	assert.Len(t, reviewing, 1)

	commentsPath := fmt.Sprintf("/tasks/%d/comments/", taskID)
	res = a.do(http.MethodPost, commentsPath, outsider.Token, map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusForbidden, res.status)
	res = a.do(http.MethodPost, commentsPath, member.Token, map[string]string{"content": "on it"})
	require.Equal(t, http.StatusCreated, res.status, string(res.body))
	var comment map[string]interface{}
	res.decode(t, &comment)
	assert.Equal(t, "Member Two", comment["author"])
	assert.Equal(t, "on it", comment["content"])

	res = a.do(http.MethodGet, commentsPath, "", nil)
	require.Equal(t, http.StatusOK, res.status)
	var comments []map[string]interface{}
	res.decode(t, &comments)
	assert.Len(t, comments, 1)

	res = a.do(http.MethodGet, fmt.Sprintf("/boards/%d/", boardID), member.Token, nil)
	require.Equal(t, http.StatusOK, res.status)
	var detail struct {
		MemberCount        int                      `json:"member_count"`
		TicketCount        int                      `json:"ticket_count"`
		TasksToDoCount     int                      `json:"tasks_to_do_count"`
		TasksHighPrioCount int                      `json:"tasks_high_prio_count"`
		Tasks              []map[string]interface{} `json:"tasks"`
	}
	res.decode(t, &detail)
	assert.Equal(t, 1, detail.MemberCount)
	assert.Equal(t, 1, detail.TicketCount)
	assert.Equal(t, 0, detail.TasksToDoCount)
	assert.Equal(t, 1, detail.TasksHighPrioCount)
	require.Len(t, detail.Tasks, 1)
	assert.Equal(t, float64(1), detail.Tasks[0]["comments_count"])

	res = a.do(http.MethodDelete, taskPath, outsider.Token, nil)
	assert.Equal(t, http.StatusForbidden, res.status)
	res = a.do(http.MethodDelete, taskPath, owner.Token, nil)
	assert.Equal(t, http.StatusNoContent, res.status)
	res = a.do(http.MethodGet, commentsPath, "", nil)
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestHealthAndMetrics(t *testing.T) {
	a := newAPI(t)

	res := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.status)

	res = a.do(http.MethodGet, "/tasks/abc/", "", nil)
	assert.Equal(t, http.StatusNotFound, res.status)

	res = a.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, string(res.body), `route="/health"`)
}

func TestTaskListRejectsMalformedFilters(t *testing.T) {
	a := newAPI(t)
	member := a.register("member@example.com", "Member Two")
	res := a.do(http.MethodPost, "/boards/", member.Token, map[string]interface{}{
		"title": "Ops", "members": []int64{member.UserID},
	})
	require.Equal(t, http.StatusCreated, res.status)
	var board map[string]interface{}
	res.decode(t, &board)
	boardID := int64(board["id"].(float64))

	res = a.do(http.MethodPost, "/tasks/", member.Token, map[string]interface{}{"board": boardID, "title": "one"})
	require.Equal(t, http.StatusCreated, res.status, string(res.body))

	for query, field := range map[string]string{
		"board=abc":  "board",
		"board=0":    "board",
		"limit=-1":   "limit",
		"offset=two": "offset",
	} {
		res = a.do(http.MethodGet, "/tasks/?"+query, "", nil)
		require.Equal(t, http.StatusBadRequest, res.status, query)
		var body errorBody
		res.decode(t, &body)
		assert.Contains(t, body.Meta.Fields, field, query)
	}

	res = a.do(http.MethodGet, fmt.Sprintf("/tasks/?board=%d&limit=5", boardID), "", nil)
	require.Equal(t, http.StatusOK, res.status)
	var tasks []map[string]interface{}
	res.decode(t, &tasks)
	assert.Len(t, tasks, 1)

	res = a.do(http.MethodGet, fmt.Sprintf("/tasks/?board=%d", boardID+1), "", nil)
	require.Equal(t, http.StatusOK, res.status)
	var none []map[string]interface{}
	res.decode(t, &none)
	assert.Empty(t, none)
}
