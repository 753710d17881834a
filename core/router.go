package core

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

// NewRouter constructs the Gin engine with routes wired. prom and stats are optional.
func NewRouter(cfg Config, store sessions.Store, gw *Gateway, prom *PromObserver, stats *RedisStats) *gin.Engine {
	startedAt := time.Now()
	r := gin.New()
	r.Use(gin.Recovery())

	// Without trusted proxies ClientIP is the socket peer and X-Forwarded-For is ignored.
	var proxies []string
	if len(cfg.TrustedProxies) > 0 {
		proxies = cfg.TrustedProxies
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		log.Warn().Err(err).Strs("trusted_proxies", proxies).Msg("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}

	// Global middleware: request id -> origin/CORS -> session -> CSRF
	r.Use(RequestIDMiddleware())
	r.Use(OriginRefererMiddleware(cfg))
	r.Use(SessionMiddleware(cfg, store))
	r.Use(CSRFMiddleware(cfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if prom != nil {
		r.GET("/metrics", gin.WrapH(prom.Handler()))
	}
	r.GET("/internal/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, CollectSystemStatus(c.Request.Context(), gw.Origin(), stats, startedAt))
	})

	authClient := NewAuthClient(gw)
	auth := r.Group("/auth", RateLimitMiddleware(cfg.AuthRatePerMin))
	{
		auth.POST("/exists", func(c *gin.Context) {
			req, ok := bindBody[struct {
				ValueType LoginKind `json:"value_type" binding:"required"`
				Value     string    `json:"value" binding:"required"`
			}](c)
			if !ok {
				return
			}
			if !req.ValueType.Valid() {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "value_type must be email or phone_number")
				return
			}
			exists := authClient.CheckUserExists(c.Request.Context(), req.ValueType, req.Value)
			c.JSON(http.StatusOK, gin.H{"exists": exists})
		})

		auth.POST("/login", func(c *gin.Context) {
			req, ok := bindBody[struct {
				LoginType LoginKind `json:"login_type"`
				Login     string    `json:"login" binding:"required"`
				Password  string    `json:"password" binding:"required"`
			}](c)
			if !ok {
				return
			}
			if req.LoginType == "" {
				req.LoginType = LoginByEmail
			}
			if !req.LoginType.Valid() {
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "login_type must be email or phone_number")
				return
			}

			res, err := authClient.Login(c.Request.Context(), req.LoginType, req.Login, req.Password)
			if err != nil {
				respondAuthError(c, err)
				return
			}
			setTokenCookie(c, cfg, res.Credential())
			c.JSON(http.StatusOK, gin.H{"token_type": firstNonEmpty(res.TokenType, "bearer")})
		})

		auth.POST("/register", func(c *gin.Context) {
			req, ok := bindBody[struct {
				RegisterRequest
				Name string `json:"name"`
			}](c)
			if !ok {
				return
			}
			reg := req.RegisterRequest
			if req.Name != "" {
				reg.SplitName(req.Name)
			}
			body, err := authClient.Register(c.Request.Context(), reg)
			if err != nil {
				respondAuthError(c, err)
				return
			}
			c.Data(http.StatusCreated, "application/json", body)
		})
	}

	logout := func(c *gin.Context) {
		clearTokenCookie(c, cfg)
		c.Redirect(http.StatusSeeOther, "/login")
	}
	r.GET("/logout", logout)
	r.POST("/logout", logout)

	r.GET("/me", RequireIdentity(gw), func(c *gin.Context) {
		id, _ := currentIdentity(c)
		c.JSON(http.StatusOK, id)
	})

	registerAPIRoutes(r.Group("/api"), gw)
	return r
}

// setTokenCookie stores the bearer credential where browser code and the server dispatcher
// both find it.
func setTokenCookie(c *gin.Context, cfg Config, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		Secure:   cfg.CookieSecure,
		SameSite: sameSiteFromString(cfg.CookieSameSite),
	})
}

func clearTokenCookie(c *gin.Context, cfg Config) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   cfg.CookieSecure,
		SameSite: sameSiteFromString(cfg.CookieSameSite),
	})
}

func respondAuthError(c *gin.Context, err error) {
	var be *BackendError
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid login or password")
	case errors.As(err, &be):
		status := be.Status
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		respondError(c, status, "BACKEND_REJECTED", be.Detail)
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("auth request failed")
		respondError(c, http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE", "backend unavailable")
	}
}
