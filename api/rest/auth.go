package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/unbirthdayhatter/socialmorpho/cache"
	"github.com/unbirthdayhatter/socialmorpho/config"
	mw "github.com/unbirthdayhatter/socialmorpho/middleware"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles plugin pairing. The client plugin presents the
// shared pairing key once and gets a session JWT for everything else.
type AuthHandler struct {
	cache cache.Cache
	sec   config.SecurityConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(c cache.Cache, sec config.SecurityConfig) *AuthHandler {
	return &AuthHandler{cache: c, sec: sec}
}

type pairRequest struct {
	PairKey string `json:"pair_key" binding:"required,min=4,max=128"`
}

// Pair handles POST /api/auth/pair.
func (h *AuthHandler) Pair(c *gin.Context) {
	if h.sec.PairKeyHash == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "pairing disabled"})
		return
	}

	var req pairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.sec.PairKeyHash), []byte(req.PairKey)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid pairing key"})
		return
	}

	sessionID := uuid.New().String()
	token, err := mw.GenerateToken(sessionID, h.sec.JWTSecret, h.sec.JWTTTLH)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	_ = h.cache.Set(ctx, "session:"+sessionID, time.Now().Format(time.RFC3339), h.sec.JWTTTLH)

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"session_id": sessionID,
	})
}

// Unpair handles POST /api/auth/unpair. Revokes the caller's session.
func (h *AuthHandler) Unpair(c *gin.Context) {
	sessionID := mw.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no session"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	_ = h.cache.Del(ctx, "session:"+sessionID)
	c.JSON(http.StatusOK, gin.H{"revoked": true})
}
