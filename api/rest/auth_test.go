package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unbirthdayhatter/socialmorpho/api/rest"
	"github.com/unbirthdayhatter/socialmorpho/config"
	mw "github.com/unbirthdayhatter/socialmorpho/middleware"
	"github.com/unbirthdayhatter/socialmorpho/testutil"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPairKey = "plugin-pair-key"

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	c := testutil.SetupTestCache(t)
	hash, err := bcrypt.GenerateFromPassword([]byte(testPairKey), bcrypt.MinCost)
	require.NoError(t, err)
	sec := config.SecurityConfig{
		PairKeyHash: string(hash),
		JWTSecret:   "test-secret",
		JWTTTLH:     72 * time.Hour,
	}
	h := rest.NewAuthHandler(c, sec)
	r := gin.New()
	r.POST("/api/auth/pair", h.Pair)
	r.POST("/api/auth/unpair", mw.Auth(sec, c), h.Unpair)
	return r
}

func postJSON(r *gin.Engine, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPair_ValidKey(t *testing.T) {
	r := newAuthRouter(t)

	w := postJSON(r, "/api/auth/pair", map[string]string{"pair_key": testPairKey})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
	assert.NotEmpty(t, resp["session_id"])
}

func TestPair_WrongKey(t *testing.T) {
	r := newAuthRouter(t)
	w := postJSON(r, "/api/auth/pair", map[string]string{"pair_key": "nope-wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPair_MissingKey(t *testing.T) {
	r := newAuthRouter(t)
	w := postJSON(r, "/api/auth/pair", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPair_DisabledWithoutHash(t *testing.T) {
	c := testutil.SetupTestCache(t)
	h := rest.NewAuthHandler(c, config.SecurityConfig{JWTSecret: "s"})
	r := gin.New()
	r.POST("/api/auth/pair", h.Pair)

	w := postJSON(r, "/api/auth/pair", map[string]string{"pair_key": testPairKey})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUnpair_RevokesSession(t *testing.T) {
	r := newAuthRouter(t)

	w := postJSON(r, "/api/auth/pair", map[string]string{"pair_key": testPairKey})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token := resp["token"]

	w = postJSON(r, "/api/auth/unpair", nil, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)

	// The session is gone; the same token no longer passes auth.
	w = postJSON(r, "/api/auth/unpair", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
