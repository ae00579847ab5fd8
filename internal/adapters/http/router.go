package http

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/adapters/ws"
	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/storage"
)

type Deps struct {
	Coordinator   *app.Coordinator
	Auth          *storage.AuthService
	Conferences   *storage.ConferenceService
	Participants  *storage.ParticipantService
	Notifications *storage.NotificationService
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("meet_session", store))

	tickets := NewTicketIssuer(cfg.Secret, cfg.TicketTTL)
	r.Use(Identity(deps.Auth, tickets))

	r.Static("/static", cfg.StaticPath)

	log.Info().Str("module", "adapters.http").Str("frontend", cfg.FrontendURL).Msg("router setup")

	authH := &AuthHandler{Auth: deps.Auth, Tickets: tickets}
	confH := &ConferenceHandler{Conferences: deps.Conferences}
	partH := &ParticipantHandler{Participants: deps.Participants}
	notifH := &NotificationHandler{Notifications: deps.Notifications}

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.GET("/me", RequireAuth(), authH.Me)
	auth.POST("/logout", authH.Logout)
	auth.POST("/forgot-password", authH.ForgotPassword)
	auth.GET("/ws-ticket", RequireAuth(), authH.WSTicket)

	conference := api.Group("/conference")
	conference.POST("/create", confH.Create)
	conference.GET("/all", confH.All)
	conference.GET("/:id", confH.Get)
	conference.PUT("/:id", confH.Update)
	conference.DELETE("/:id", confH.Delete)

	participants := api.Group("/participants")
	participants.GET("/my", RequireAuth(), partH.Joined)
	participants.GET("/:conferenceId", partH.ListByConference)
	participants.POST("", partH.Add)
	participants.DELETE("/:id", partH.Remove)
	participants.PUT("/:id/status", partH.UpdateStatus)
	participants.PUT("/:id", partH.UpdateName)

	notifications := api.Group("/notifications")
	notifications.GET("/unseen-upcoming", RequireAuth(), notifH.UnseenUpcoming)
	notifications.POST("/mark-seen", RequireAuth(), notifH.MarkSeen)

	wsCtl := ws.NewController(deps.Coordinator, cfg.ReadLimit, cfg.PingPeriod)
	r.GET("/ws", func(c *gin.Context) {
		wsCtl.HandleSignal(ctx, c)
	})

	return r
}
