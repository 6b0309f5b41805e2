package router

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/conduit-identity/internal/container"
	handlers "github.com/oksasatya/conduit-identity/internal/interface/http"
	"github.com/oksasatya/conduit-identity/internal/router/modules"
)

// InitModules registers every application module with the registry.
// Call once during startup.
func InitModules(r *Registry, c *container.Container) {
	r.Add(modules.NewUserModule(handlers.NewUserHandler(c.UserService), c.Tokens))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}

// New builds a fully wired engine from the container.
func New(c *container.Container) *gin.Engine {
	engine := NewEngine(c.Logger, EngineOptions{
		CORSOrigins:    c.Config.CORSOrigins(),
		HTTPLogEnabled: c.Config.HTTPLogEnabled,
	})
	reg := NewRegistry(engine)
	InitModules(reg, c)
	reg.RegisterAll()
	return engine
}
