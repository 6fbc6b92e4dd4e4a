package server

import (
	"context"
	"net/http"

	"staylock/internal/auth"
	"staylock/internal/availability"
	"staylock/internal/booking"
	"staylock/internal/config"
	"staylock/internal/hotel"
	"staylock/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	hotelService := hotel.NewService(hotel.NewRepository(db))
	lockStore := availability.NewRedisStore(rdb)
	lockManager := availability.NewManager(lockStore, hotelService, cfg.LockTTL())
	pricingClient := pricing.NewClient(cfg.PricingURL)
	bookingService := booking.NewService(booking.NewRepository(db), lockManager, pricingClient, hotelService)

	availabilityHandler := availability.NewHandler(lockManager, hotelService)
	bookingHandler := booking.NewHandler(bookingService)

	public := router.Group("/")
	public.Use(RateLimitMiddleware(20, 40))
	{
		public.GET("/availability", availabilityHandler.Search)
		public.POST("/availability/lock", availabilityHandler.CreateLock)
		public.POST("/availability/release", availabilityHandler.ReleaseLock)
		public.GET("/availability/lock/:lockID", availabilityHandler.GetLockStatus)
		public.POST("/availability/lock/:lockID/extend", availabilityHandler.ExtendLock)
	}

	protected := router.Group("/bookings")
	protected.Use(auth.Middleware(cfg.JWTSecret))
	{
		protected.POST("", bookingHandler.CreateBooking)
		protected.GET("/:reference", bookingHandler.GetBooking)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		http: &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: router,
		},
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
