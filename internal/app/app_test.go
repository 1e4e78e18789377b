package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskmanager/internal/cache"
	"taskmanager/internal/config"
	"taskmanager/internal/dto"
	"taskmanager/internal/logging"
	"taskmanager/internal/repo"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	mr     *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	t.Setenv("APP_ENV", "test")
	t.Setenv("PG_DSN", "postgres://unused")
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("BCRYPT_COST", "4")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	log := logging.Discard()
	svc := NewServices(
		repo.NewMemTaskRepo(nil),
		repo.NewMemUserRepo(nil),
		cache.NewRedisCache(rdb, sessionPrefix),
		cfg.Auth,
		log,
	)
	return &testServer{t: t, router: NewRouter(cfg, svc, log), mr: mr}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func (s *testServer) login(email string) string {
	s.t.Helper()
	creds := gin.H{"email": email, "password": "secret1"}
	if w := s.do(http.MethodPost, "/api/v1/auth/register", "", creds); w.Code != http.StatusCreated {
		s.t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", creds)
	if w.Code != http.StatusOK {
		s.t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	return decode[dto.LoginResponse](s.t, w).Token
}

func TestAPI_AuthLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login("ada@example.com")

	if w := s.do(http.MethodGet, "/api/v1/tasks", token, nil); w.Code != http.StatusOK {
		t.Fatalf("list with token: %d", w.Code)
	}
	if w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": "ada@example.com", "password": "secret1"}); w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", w.Code)
	}
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ada@example.com", "password": "wrong!"})
	if w.Code != http.StatusUnauthorized || decode[dto.ErrorResponse](t, w).Kind != "unauthorized" {
		t.Fatalf("bad password: %d %s", w.Code, w.Body.String())
	}

	if w := s.do(http.MethodPost, "/api/v1/auth/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("logout: %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/v1/tasks", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("list after logout: %d", w.Code)
	}
	if w := s.do(http.MethodPost, "/api/v1/auth/logout", "", nil); w.Code != http.StatusOK {
		t.Fatalf("logout without token: %d", w.Code)
	}
}

func TestAPI_TaskFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login("ada@example.com")

	for _, p := range []string{"low", "high", "medium"} {
		w := s.do(http.MethodPost, "/api/v1/tasks", token, gin.H{"title": "task " + p, "priority": p, "tags": []string{"x"}})
		if w.Code != http.StatusCreated {
			t.Fatalf("create: %d %s", w.Code, w.Body.String())
		}
	}
	if w := s.do(http.MethodPost, "/api/v1/tasks", token, gin.H{"title": "bad", "priority": "urgent"}); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid priority: %d", w.Code)
	}

	w := s.do(http.MethodGet, "/api/v1/tasks?sortBy=priority&sortOrder=desc&limit=2", token, nil)
	page := decode[dto.TaskPageResponse](t, w)
	if len(page.Tasks) != 2 || page.Tasks[0].Priority != "high" || page.Tasks[1].Priority != "medium" {
		t.Fatalf("sorted page: %+v", page.Tasks)
	}
	if page.Pagination.Total != 3 || !page.Pagination.HasNext || page.Stats.CategoryStats["other"] != 3 {
		t.Fatalf("page meta: %+v %+v", page.Pagination, page.Stats)
	}

	id := page.Tasks[0].ID
	w = s.do(http.MethodPatch, "/api/v1/tasks/"+itoa(id)+"/archive", token, nil)
	if w.Code != http.StatusOK || !decode[dto.TaskResponse](t, w).IsArchived {
		t.Fatalf("archive: %d %s", w.Code, w.Body.String())
	}
	page = decode[dto.TaskPageResponse](t, s.do(http.MethodGet, "/api/v1/tasks", token, nil))
	if page.Pagination.Total != 2 {
		t.Fatalf("default listing must hide archived tasks, total=%d", page.Pagination.Total)
	}
	page = decode[dto.TaskPageResponse](t, s.do(http.MethodGet, "/api/v1/tasks/archived", token, nil))
	if page.Pagination.Total != 1 || page.Tasks[0].ID != id {
		t.Fatalf("archived view: %+v", page)
	}

	w = s.do(http.MethodPut, "/api/v1/tasks/"+itoa(id), token, gin.H{"completed": true})
	if got := decode[dto.TaskResponse](t, w); !got.Completed || got.CompletedAt == nil {
		t.Fatalf("complete: %+v", got)
	}
	stats := decode[dto.StatsResponse](t, s.do(http.MethodGet, "/api/v1/tasks/stats", token, nil))
	if stats.Completed != 1 || stats.CompletionRate != 33 || len(stats.PriorityStats) != 3 {
		t.Fatalf("stats: %+v", stats)
	}

	a := decode[dto.AnalyticsResponse](t, s.do(http.MethodGet, "/api/v1/tasks/analytics?timeframe=7", token, nil))
	if a.CompletedTasksInPeriod != 1 || a.TotalTasksInPeriod != 3 {
		t.Fatalf("analytics: %+v", a)
	}
	if w := s.do(http.MethodGet, "/api/v1/tasks/analytics?timeframe=0", token, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad timeframe: %d", w.Code)
	}
	in := decode[dto.InsightsResponse](t, s.do(http.MethodGet, "/api/v1/tasks/insights", token, nil))
	if in.StreakDays != 1 || in.MostProductiveCategory != "other" {
		t.Fatalf("insights: %+v", in)
	}

	if w := s.do(http.MethodDelete, "/api/v1/tasks/"+itoa(id), token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := s.do(http.MethodDelete, "/api/v1/tasks/"+itoa(id), token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", w.Code)
	}
}

func TestAPI_OwnershipAndBulk(t *testing.T) {
	s := newTestServer(t)
	ada := s.login("ada@example.com")
	bob := s.login("bob@example.com")

	mine := decode[dto.TaskResponse](t, s.do(http.MethodPost, "/api/v1/tasks", ada, gin.H{"title": "mine"}))
	theirs := decode[dto.TaskResponse](t, s.do(http.MethodPost, "/api/v1/tasks", bob, gin.H{"title": "theirs"}))

	if w := s.do(http.MethodGet, "/api/v1/tasks/"+itoa(theirs.ID), ada, nil); w.Code != http.StatusNotFound {
		t.Fatalf("foreign get: %d", w.Code)
	}
	w := s.do(http.MethodPut, "/api/v1/tasks", ada, gin.H{
		"taskIds": []int64{mine.ID, theirs.ID},
		"updates": gin.H{"category": "work"},
	})
	list := decode[dto.ListTasksResponse](t, w)
	if len(list.Items) != 1 || list.Items[0].ID != mine.ID || list.Items[0].Category != "work" {
		t.Fatalf("bulk: %d %+v", w.Code, list)
	}
	if w := s.do(http.MethodPut, "/api/v1/tasks", ada, gin.H{"taskIds": []int64{}, "updates": gin.H{}}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty bulk: %d", w.Code)
	}
	page := decode[dto.TaskPageResponse](t, s.do(http.MethodGet, "/api/v1/tasks/category/work", ada, nil))
	if page.Pagination.Total != 1 {
		t.Fatalf("category view: %+v", page.Pagination)
	}
	if w := s.do(http.MethodGet, "/api/v1/tasks/category/hobby", ada, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown category: %d", w.Code)
	}
}

func TestAPI_OperationalEndpoints(t *testing.T) {
	s := newTestServer(t)
	if w := s.do(http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	w := s.do(http.MethodGet, "/api/v1/tasks/reminders/check", "", nil)
	if w.Code != http.StatusUnauthorized || w.Header().Get(logging.RequestIDHeader) == "" {
		t.Fatalf("reminders without token: %d", w.Code)
	}
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
