package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"globalstay/internal/infra/config"
	"globalstay/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	Cancel(c *gin.Context)
}

type ListingHTTP interface {
	Catalog(c *gin.Context)
	Detail(c *gin.Context)
}

type HostListingHTTP interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetStatus(c *gin.Context)
	Bookings(c *gin.Context)
}

type ReviewsHTTP interface {
	ListByListing(c *gin.Context)
	Add(c *gin.Context)
	Delete(c *gin.Context)
}

type Handlers struct {
	Booking        BookingHTTP
	Listing        ListingHTTP
	HostListing    HostListingHTTP
	Reviews        ReviewsHTTP
	Auth           AuthHTTP
	Me             MeHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Catalog)
		api.GET("/listings/:id", h.Listing.Detail)
	}
	if h.Reviews != nil {
		api.GET("/listings/:id/reviews", h.Reviews.ListByListing)
		api.POST("/listings/:id/reviews", h.Reviews.Add)
		api.DELETE("/reviews/:id", h.Reviews.Delete)
	}
	if h.Booking != nil {
		api.POST("/listings/:id/bookings", h.Booking.Create)
		api.PUT("/bookings/:id", h.Booking.Update)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
	}
	if h.HostListing != nil {
		hostGroup := api.Group("/host/listings")
		hostGroup.GET("", h.HostListing.List)
		hostGroup.POST("", h.HostListing.Create)
		hostGroup.PUT("/:id", h.HostListing.Update)
		hostGroup.DELETE("/:id", h.HostListing.Delete)
		hostGroup.POST("/:id/status", h.HostListing.SetStatus)
		hostGroup.GET("/:id/bookings", h.HostListing.Bookings)
	}
	if h.Me != nil {
		meGroup := api.Group("/me")
		meGroup.GET("/profile", h.Me.Profile)
		meGroup.GET("/bookings", h.Me.ListBookings)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
