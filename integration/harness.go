package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	apirest "github.com/unbirthdayhatter/socialmorpho/api/rest"
	"github.com/unbirthdayhatter/socialmorpho/audit"
	"github.com/unbirthdayhatter/socialmorpho/broadcast"
	"github.com/unbirthdayhatter/socialmorpho/cache"
	"github.com/unbirthdayhatter/socialmorpho/config"
	"github.com/unbirthdayhatter/socialmorpho/game/quest"
	mw "github.com/unbirthdayhatter/socialmorpho/middleware"
	"github.com/unbirthdayhatter/socialmorpho/store"
	"github.com/unbirthdayhatter/socialmorpho/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPairKey = "integration-pair-key"

// TestServer is a fully wired server over an in-memory database.
type TestServer struct {
	*httptest.Server
	DB     *gorm.DB
	Engine *quest.Engine
	Store  *store.Store
	Audit  *audit.Service
}

// NewTestServer assembles the complete stack the way main does, minus
// the scheduler and remote sync.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	db := testutil.SetupTestDB(t)
	st := store.New(db, logger)
	auditSvc := audit.New(db, logger)
	t.Cleanup(func() {
		auditSvc.Stop()
		st.Stop()
	})

	c, err := cache.NewCache(cache.CacheConfig{})
	require.NoError(t, err)
	ps, err := cache.NewPubSub(cache.CacheConfig{})
	require.NoError(t, err)
	hub := broadcast.New(c, ps, 50, logger)

	quests, err := st.LoadQuests()
	require.NoError(t, err)
	stats, err := st.LoadStats()
	require.NoError(t, err)
	rot, err := st.LoadRotation()
	require.NoError(t, err)

	engine := quest.NewEngine(quest.Options{
		Quests:    quests,
		Stats:     stats,
		Rotation:  rot,
		Store:     st,
		Audit:     auditSvc,
		Broadcast: hub,
		Logger:    logger,
	})

	hash, err := bcrypt.GenerateFromPassword([]byte(testPairKey), bcrypt.MinCost)
	require.NoError(t, err)
	sec := config.SecurityConfig{
		PairKeyHash: string(hash),
		JWTSecret:   "integration-secret",
		JWTTTLH:     time.Hour,
	}

	authH := apirest.NewAuthHandler(c, sec)
	questH := apirest.NewQuestHandler(engine, logger)
	progH := apirest.NewProgressHandler(engine, hub, logger)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/pair", authH.Pair)

	authed := api.Group("")
	authed.Use(mw.Auth(sec, c))
	authed.GET("/quests", questH.List)
	authed.GET("/quests/active", questH.Active)
	authed.POST("/quests", questH.Create)
	authed.DELETE("/quests/:id", questH.Delete)
	authed.POST("/daily/reroll", questH.Reroll)
	authed.POST("/lines", progH.IngestLines)
	authed.POST("/events", progH.IngestEvent)
	authed.GET("/stats", progH.Stats)
	authed.GET("/stats/title", progH.TitleProgress)
	authed.GET("/feed", progH.Feed)

	return &TestServer{
		Server: httptest.NewServer(r),
		DB:     db,
		Engine: engine,
		Store:  st,
		Audit:  auditSvc,
	}
}

// Pair obtains a session token.
func (ts *TestServer) Pair(t *testing.T) string {
	resp := ts.PostJSON(t, "/api/auth/pair", map[string]string{"pair_key": testPairKey}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	ReadJSON(t, resp, &body)
	require.NotEmpty(t, body["token"])
	return body["token"]
}

// PostJSON posts a JSON body with an optional bearer token.
func (ts *TestServer) PostJSON(t *testing.T, path string, body interface{}, token string) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

// Get performs an authenticated GET.
func (ts *TestServer) Get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

// ReadJSON decodes and closes a response body.
func ReadJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}
