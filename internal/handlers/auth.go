package handlers

import (
	"net/http"

	"govhub/internal/apperr"
	"govhub/internal/auth"
	"govhub/internal/config"
	"govhub/internal/middleware"
	"govhub/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	cfg      *config.Config
	nonces   *auth.NonceStore
	verifier *auth.Verifier
	tokens   *auth.TokenIssuer
	users    *services.UserService
}

func NewAuthHandler(cfg *config.Config, nonces *auth.NonceStore, verifier *auth.Verifier, tokens *auth.TokenIssuer, users *services.UserService) *AuthHandler {
	return &AuthHandler{
		cfg:      cfg,
		nonces:   nonces,
		verifier: verifier,
		tokens:   tokens,
		users:    users,
	}
}

// Nonce hands out a fresh single-use login nonce.
// GET /api/auth/nonce
func (h *AuthHandler) Nonce(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"nonce": h.nonces.Issue()})
}

type verifyRequest struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// Verify checks a signed SIWE message, finds or creates the identity, and
// sets the session cookie.
// POST /api/auth/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" || req.Signature == "" {
		Fail(c, apperr.InvalidInput("Missing message or signature"))
		return
	}

	walletAddress, err := h.verifier.Verify(req.Message, req.Signature)
	if err != nil {
		// One uniform answer for every verification failure.
		Fail(c, apperr.ErrInvalidSignature)
		return
	}

	user, err := h.users.FindOrCreateByWallet(c.Request.Context(), walletAddress)
	if err != nil {
		Fail(c, apperr.Internal("failed to resolve user", err))
		return
	}

	token, err := h.tokens.Issue(user.ID, user.WalletAddress, user.IsAdmin)
	if err != nil {
		Fail(c, apperr.Internal("failed to issue session", err))
		return
	}

	h.setSessionCookie(c, token, int(h.cfg.SessionTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user.Public(),
	})
}

// Me returns the identity carried by the session token.
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		Fail(c, apperr.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":            claims.UserID,
			"walletAddress": claims.WalletAddress,
			"isAdmin":       claims.IsAdmin,
		},
	})
}

// Logout clears the session cookie. The token itself stays valid until
// expiry; logout is client-side credential deletion only.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.cfg.IsProduction(), true)
}
