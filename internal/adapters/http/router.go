package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dkeye/Huddle/internal/adapters/rtc"
	"github.com/dkeye/Huddle/internal/adapters/signal"
	"github.com/dkeye/Huddle/internal/app/orch"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	sessionName          = "HuddleSession"
	credentialSessionKey = "token"
)

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Orch       *orch.Orchestrator
	Signal     *signal.SignalWSController
	ICEServers []webrtc.ICEServer
	Store      Pinger
}

func SetupRouter(ctx context.Context, cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Debug() {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	r.GET("/health", healthHandler(d))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")
	api.GET("/rtc/config", func(c *gin.Context) {
		c.JSON(http.StatusOK, rtc.ClientConfig{ICEServers: d.ICEServers})
	})
	api.POST("/session", createSession(d.Orch))
	api.DELETE("/session", deleteSession)

	api.GET("/ws", Authenticate(d.Orch, false), func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("remote", c.ClientIP()).Msg("ws endpoint hit")
		d.Signal.HandleSignal(ctx, c)
	})
	api.GET("/rooms/:id/presence", Authenticate(d.Orch, true), presenceHandler(d.Orch))

	return r
}

// Credential picks the bearer token of a request. Sources in order: the
// Authorization header, the token query parameter, the cookie session.
func Credential(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if t := c.Query("token"); t != "" {
		return t
	}
	if t, ok := sessions.Default(c).Get(credentialSessionKey).(string); ok {
		return t
	}
	return ""
}

// Authenticate verifies the request credential and stores the identity under
// signal.IdentityKey. A presented but invalid credential is always a 401; a
// missing one is a 401 only when required.
func Authenticate(o *orch.Orchestrator, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := Credential(c)
		if token == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Next()
			return
		}
		id, err := o.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.Info().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("credential rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(signal.IdentityKey, id)
		c.Next()
	}
}

func identity(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(signal.IdentityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}

type sessionRequest struct {
	Token string `json:"token" binding:"required"`
}

func createSession(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
			return
		}
		id, err := o.Authenticate(c.Request.Context(), req.Token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		s := sessions.Default(c)
		s.Set(credentialSessionKey, req.Token)
		if err := s.Save(); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": id})
	}
}

func deleteSession(c *gin.Context) {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session clear")
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func presenceHandler(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || roomID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
			return
		}
		members, err := o.RoomPresence(c.Request.Context(), id, domain.RoomID(roomID))
		switch {
		case errors.Is(err, domain.ErrNotAMember):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a member"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		default:
			c.JSON(http.StatusOK, gin.H{"roomId": roomID, "members": members})
		}
	}
}

func healthHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.Store != nil {
			if err := d.Store.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "database unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":          true,
			"connections": d.Orch.Registry.Len(),
			"rooms":       d.Orch.Rooms.RoomCount(),
		})
	}
}
