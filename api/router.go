package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/fuzzyfind/api/handlers"
	"github.com/meghashyamc/fuzzyfind/logger"
	"github.com/meghashyamc/fuzzyfind/services/search"
	"github.com/meghashyamc/fuzzyfind/validation"
)

func setupRoutes(router *gin.Engine, logger logger.Logger, service *search.Service, validator *validation.Validator, defaults handlers.Defaults) {
	router.GET("/health", health())

	handlers.SetupSearch(router, logger, service, validator, defaults)
	handlers.SetupVariants(router, logger, service, validator, defaults)
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.Default()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
