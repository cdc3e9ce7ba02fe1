package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"govhub/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateEngine(tokens *auth.TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoadSession(tokens))
	r.GET("/user", AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": CurrentClaims(c).UserID})
	})
	r.GET("/admin", AdminRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": CurrentClaims(c).UserID})
	})
	return r
}

func doGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	tokens := auth.NewTokenIssuer([]byte("secret"), time.Hour)
	r := newGateEngine(tokens)

	token, err := tokens.Issue("u1", "0xabc", false)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/user", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/user", "garbage").Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/user", token).Code)
}

func TestAuthRequiredExpiredToken(t *testing.T) {
	tokens := auth.NewTokenIssuer([]byte("secret"), -time.Minute)
	r := newGateEngine(tokens)

	token, err := tokens.Issue("u1", "0xabc", false)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/user", token).Code)
}

func TestAdminRequired(t *testing.T) {
	tokens := auth.NewTokenIssuer([]byte("secret"), time.Hour)
	r := newGateEngine(tokens)

	userToken, err := tokens.Issue("u1", "0xabc", false)
	require.NoError(t, err)
	adminToken, err := tokens.Issue("u2", "0xdef", true)
	require.NoError(t, err)

	// No/invalid session is 401, authenticated non-admin is 403.
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "/admin", "").Code)
	assert.Equal(t, http.StatusForbidden, doGet(r, "/admin", userToken).Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/admin", adminToken).Code)
}

func TestCurrentClaimsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, CurrentClaims(c))
}
