package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options tunes the mock's behavior for tests.
type Options struct {
	// JWTSecret signs issued tokens. Defaults to a fixed development secret.
	JWTSecret string
	// EchoCreatedID controls whether create responses include the new post
	// ID. Off reproduces the backend revisions that omit it, which is the
	// case the client's ID-recovery fallback exists for.
	EchoCreatedID bool
	// RateLimitPerMinute caps requests per client IP. Zero means a generous
	// default.
	RateLimitPerMinute int
}

// NewRouter wires the full API surface over the given store.
func NewRouter(store *Store, opts Options) *gin.Engine {
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dimfdesk-mock-secret"
	}
	gin.SetMode(gin.ReleaseMode)

	s := &server{store: store, opts: opts}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(rateLimitMiddleware(opts.RateLimitPerMinute))

	corsCfg := cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))

	api := r.Group("/api")
	{
		api.POST("/auth/login/", s.login)
		api.POST("/auth/register", s.register)

		api.GET("/posts/", s.listPosts)
		api.GET("/posts/:id/platforms/", s.getPostPlatforms)
		api.GET("/posts/:id/images/", s.getPostImages)

		api.GET("/platforms/", s.listPlatforms)

		api.GET("/google/search", s.contentSearch)
		api.GET("/google/images/", s.imageSearch)
		api.POST("/ai/", s.generate)

		authed := api.Group("")
		authed.Use(s.authRequired())
		{
			authed.POST("/posts/", s.createPost)
			authed.PUT("/posts/:id/", s.updatePost)
			// ":id" doubles as the literal "images" segment for the
			// link/unlink endpoints; gin cannot mix a static child with a
			// wildcard at the same level.
			authed.POST("/posts/:id/", s.linkImage)
			authed.DELETE("/posts/:id", s.deletePostOrUnlink)
			authed.DELETE("/posts/:id/", s.deletePostOrUnlink)
			authed.PUT("/posts/:id/platforms/", s.setPostPlatforms)
			authed.POST("/images/", s.addImage)
			authed.GET("/export/excel", s.exportExcel)
		}
	}

	return r
}

type server struct {
	store *Store
	opts  Options
}

// authRequired ensures the request carries a valid bearer token.
func (s *server) authRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "authorization header missing"})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := parseToken(s.opts.JWTSecret, token)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
			return
		}
		ctx.Set("user_id", claims.UserID)
		ctx.Set("username", claims.Username)
		ctx.Next()
	}
}
