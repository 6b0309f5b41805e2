package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/conduit-identity/internal/interface/middleware"
	"github.com/oksasatya/conduit-identity/pkg/validation"
)

type EngineOptions struct {
	CORSOrigins    []string
	HTTPLogEnabled bool
}

// NewEngine builds the gin engine with the global middleware chain. The
// error translator is installed first so it wraps everything else.
func NewEngine(logger *logrus.Logger, opts EngineOptions) *gin.Engine {
	validation.Init()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.ErrorTranslator(logger))
	r.Use(middleware.RequestIDMiddleware())
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if opts.HTTPLogEnabled {
		r.Use(gin.LoggerWithWriter(logger.Writer()))
	}
	r.NoRoute(middleware.NoRoute)
	r.NoMethod(middleware.NoMethod)
	return r
}
