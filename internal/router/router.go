package router

import (
	"govhub/internal/auth"
	"govhub/internal/config"
	"govhub/internal/handlers"
	"govhub/internal/middleware"
	"govhub/internal/services"
	"govhub/internal/store"

	"github.com/gin-gonic/gin"
)

// Register wires every handler onto the engine. Kept in one place so the
// auth gates applied to each group are visible at a glance.
func Register(r *gin.Engine, cfg *config.Config, st store.Store) {
	nonces := auth.NewNonceStore(cfg.NonceTTL)
	verifier := auth.NewVerifier(cfg.SiweDomain, cfg.ChainID, nonces)
	tokens := auth.NewTokenIssuer(cfg.SessionSecret, cfg.SessionTTL)

	userService := services.NewUserService(st, cfg)
	voteService := services.NewVoteService(st)

	authHandler := handlers.NewAuthHandler(cfg, nonces, verifier, tokens, userService)
	voteHandler := handlers.NewVoteHandler(voteService)
	postHandler := handlers.NewPostHandler(st, voteService)
	commentHandler := handlers.NewCommentHandler(st, voteService)

	r.Use(middleware.LoadSession(tokens))

	api := r.Group("/api")

	// Public routes
	api.GET("/auth/nonce", authHandler.Nonce)
	api.POST("/auth/verify", authHandler.Verify)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/posts", postHandler.List)
	api.GET("/posts/slug/:slug", postHandler.GetBySlug)
	api.GET("/posts/:id", postHandler.Get)
	api.GET("/comments", commentHandler.List)
	api.GET("/votes/user", voteHandler.ListUserVotes) // empty list when anonymous

	// Session required
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/auth/me", authHandler.Me)
		authorized.POST("/votes", voteHandler.Cast)
		authorized.DELETE("/votes", voteHandler.Remove)
		authorized.POST("/comments", commentHandler.Create)
		authorized.DELETE("/comments/:id", commentHandler.Delete)
	}

	// Admin required
	admin := api.Group("/")
	admin.Use(middleware.AdminRequired())
	{
		admin.POST("/posts", postHandler.Create)
		admin.PUT("/posts/:id", postHandler.Update)
		admin.DELETE("/posts/:id", postHandler.Delete)
	}
}
