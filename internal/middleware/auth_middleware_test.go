package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MauroRinelli/Solship/internal/app/model"
	"github.com/MauroRinelli/Solship/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func setupAuthTestRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := NewAuthMiddleware(testSecret)
	r.GET("/identify", auth.Identify(), handler)
	r.GET("/strict", auth.Authenticate(), handler)
	return r
}

func echoUserID(c *gin.Context) {
	userID, _ := GetUserID(c)
	c.String(http.StatusOK, userID)
}

func TestIdentify_NoTokenFallsBackToDemoUser(t *testing.T) {
	r := setupAuthTestRouter(echoUserID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/identify", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.DemoUserID, w.Body.String())
}

func TestIdentify_InvalidTokenFallsBackToDemoUser(t *testing.T) {
	r := setupAuthTestRouter(echoUserID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/identify", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.DemoUserID, w.Body.String())
}

func TestIdentify_ValidTokenSetsClaimsIdentity(t *testing.T) {
	r := setupAuthTestRouter(echoUserID)

	token, err := util.GenerateToken("user-42", "anna@example.com", testSecret, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/identify", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", w.Body.String())
}

func TestAuthenticate_RejectsMissingToken(t *testing.T) {
	r := setupAuthTestRouter(echoUserID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/strict", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestAuthenticate_RejectsExpiredToken(t *testing.T) {
	r := setupAuthTestRouter(echoUserID)

	token, err := util.GenerateToken("user-42", "anna@example.com", testSecret, -time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/strict", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_EXPIRED")
}

func TestAuthenticate_AcceptsQueryTokenForWebsocket(t *testing.T) {
	r := setupAuthTestRouter(echoUserID)

	token, err := util.GenerateToken("user-42", "anna@example.com", testSecret, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/strict?token="+token, nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", w.Body.String())
}
