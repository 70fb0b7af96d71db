package router

import (
	"time"

	"sysmanager/internal/config"
	"sysmanager/internal/handler"
	"sysmanager/internal/middleware"
	"sysmanager/internal/repository"
	"sysmanager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Deps are the wired services the HTTP layer depends on.
// DB and Redis are only used by the health check and may be nil.
type Deps struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Sesiuni *service.SessionRegistry
	Produse repository.ProdusRepository
	Lookup  handler.ProdusFinder
	Bonuri  service.BonuriAsteptareService
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// order matters
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute).Handler())

	bonH := handler.NewBonHandler(d.Sesiuni, d.Lookup, d.Bonuri)
	asteptareH := handler.NewBonuriAsteptareHandler(d.Bonuri, d.Sesiuni)
	produseH := handler.NewProduseHandler(d.Produse, d.Lookup)

	cache, _ := d.Lookup.(handler.CacheStater)
	r.GET("/health", handler.Health(d.DB, d.Redis, cache))

	v1 := r.Group("/v1")
	{
		v1.GET("/produse", produseH.Cauta)
		v1.GET("/produse/:id", produseH.DupaID)

		b := v1.Group("/terminale/:terminal/bon")
		{
			b.GET("", bonH.Get)
			b.DELETE("", bonH.Goleste)
			b.POST("/produse", bonH.AdaugaProdus)
			b.PUT("/linii/:index", bonH.SeteazaCantitate)
			b.DELETE("/linii/:index", bonH.StergeLinie)
			b.POST("/linii/:index/incrementeaza", bonH.Incrementeaza)
			b.POST("/linii/:index/decrementeaza", bonH.Decrementeaza)
			b.POST("/asteptare", bonH.PuneInAsteptare)
		}

		a := v1.Group("/bonuri-asteptare")
		{
			a.GET("", asteptareH.Lista)
			a.GET("/:id", asteptareH.DupaID)
			a.DELETE("/:id", asteptareH.Sterge)
			a.POST("/:id/reluare", asteptareH.Reluare)
			a.POST("/:id/inchide", asteptareH.Inchide)
		}
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
