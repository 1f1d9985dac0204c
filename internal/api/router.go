package api

import (
	"github.com/Conceptual-Machines/riffcard-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/riffcard-api/internal/api/middleware"
	"github.com/Conceptual-Machines/riffcard-api/internal/config"
	"github.com/Conceptual-Machines/riffcard-api/internal/editor"
	"github.com/Conceptual-Machines/riffcard-api/internal/logger"
	"github.com/Conceptual-Machines/riffcard-api/internal/metrics"
	"github.com/Conceptual-Machines/riffcard-api/internal/middleware"
	"github.com/Conceptual-Machines/riffcard-api/internal/services"
	"github.com/gin-gonic/gin"
)

// Deps are the long-lived services the routes share
type Deps struct {
	Config   *config.Config
	Songs    services.SongStore
	Sessions *editor.SessionStore
	Metrics  *metrics.Client
	Storage  string
	Version  string
}

// authMiddleware picks the auth layer for AUTH_MODE
func authMiddleware(cfg *config.Config) gin.HandlerFunc {
	switch {
	case cfg.IsGatewayMode():
		logger.Info("Auth mode: gateway (trusting X-User-* headers)", nil)
		return apimiddleware.GatewayAuth()
	case cfg.IsJWTMode():
		logger.Info("Auth mode: jwt", nil)
		return middleware.JWTAuth(cfg)
	default:
		logger.Info("Auth mode: none (self-hosted, no authentication)", nil)
		return apimiddleware.NoAuth()
	}
}

func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.Metrics))

	// CORS middleware
	router.Use(apimiddleware.CORS(cfg.CORSOrigins))

	router.Use(apimiddleware.LimitBody(cfg.MaxRequestBytes))

	// Health check
	router.GET("/health", handlers.HealthCheck(deps.Storage))

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(deps.Version, deps.Sessions)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware(cfg))
	{
		// Notation engine
		notationHandler := handlers.NewNotationHandler(cfg.StrictGrammar)
		v1.POST("/notation/parse", notationHandler.Parse)
		v1.POST("/notation/resolve", notationHandler.Resolve)
		v1.GET("/notation/durations", notationHandler.Durations)
		v1.GET("/notation/chords", notationHandler.Chords)
		v1.GET("/notation/instruments", notationHandler.Instruments)
		v1.POST("/notation/grokify", notationHandler.Grokify)

		// Timeline assembly and MIDI export of posted songs
		timelineHandler := handlers.NewTimelineHandler(cfg.StrictGrammar, deps.Metrics)
		v1.POST("/timeline", timelineHandler.Timeline)
		v1.POST("/export/midi", timelineHandler.ExportMIDI)

		// Stored songs
		songsHandler := handlers.NewSongsHandler(deps.Songs, cfg.StrictGrammar)
		v1.POST("/songs", songsHandler.CreateSong)
		v1.GET("/songs", songsHandler.ListSongs)
		v1.GET("/songs/:id", songsHandler.GetSong)
		v1.PUT("/songs/:id", songsHandler.UpdateSong)
		v1.DELETE("/songs/:id", songsHandler.DeleteSong)

		// Editing sessions
		sessionsHandler := handlers.NewSessionsHandler(deps.Sessions, deps.Songs, cfg.StrictGrammar, deps.Metrics)
		sessions := v1.Group("/sessions")
		sessions.POST("", sessionsHandler.CreateSession)
		sessions.GET("/:id", sessionsHandler.GetSession)
		sessions.DELETE("/:id", sessionsHandler.DeleteSession)
		sessions.POST("/:id/new", sessionsHandler.NewSong)
		sessions.POST("/:id/open", sessionsHandler.OpenSong)
		sessions.PUT("/:id/bpm", sessionsHandler.SetBPM)
		sessions.POST("/:id/save", sessionsHandler.Save)
		sessions.GET("/:id/timeline", sessionsHandler.Timeline)
		sessions.GET("/:id/export.mid", sessionsHandler.ExportMIDI)

		sessions.POST("/:id/tracks", sessionsHandler.AddTrack)
		sessions.PUT("/:id/tracks/:track/instrument", sessionsHandler.SetInstrument)
		sessions.PUT("/:id/tracks/:track/scale", sessionsHandler.SetScale)

		riffs := sessions.Group("/:id/tracks/:track/riffs/:slot")
		riffs.GET("", sessionsHandler.GetRiff)
		riffs.PUT("", sessionsHandler.SetRiff)
		riffs.POST("/grokify", sessionsHandler.GrokifyRiff)
		riffs.POST("/place", sessionsHandler.Place)
		riffs.POST("/undo", sessionsHandler.Undo)
		riffs.POST("/redo", sessionsHandler.Redo)
	}

	return router
}
