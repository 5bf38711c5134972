package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/fuzzyfind/logger"
	"github.com/meghashyamc/fuzzyfind/services/search"
	"github.com/meghashyamc/fuzzyfind/validation"
)

type VariantsRequest struct {
	Keyword   string   `form:"keyword" json:"keyword" validate:"required,valid_keyword,max=1000"`
	Threshold *float64 `form:"threshold" json:"threshold" validate:"omitempty,min=0,max=1"`
}

type VariantsResponse struct {
	Keyword   string   `json:"keyword"`
	Threshold float64  `json:"threshold"`
	Variants  []string `json:"variants"`
}

func SetupVariants(router *gin.Engine, logger logger.Logger, service *search.Service, validator *validation.Validator, defaults Defaults) {
	router.GET("/variants", handleVariants(service, logger, validator, defaults))
}

func handleVariants(service *search.Service, logger logger.Logger, validator *validation.Validator, defaults Defaults) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := VariantsRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from variants request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate variants request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		threshold := defaults.Threshold
		if request.Threshold != nil {
			threshold = *request.Threshold
		}

		expansion, err := service.Expand(c.Request.Context(), request.Keyword, threshold)
		if err != nil {
			logger.Error("variant expansion failed", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		variants := expansion.Variants
		if variants == nil {
			variants = []string{}
		}

		writeResponse(c, VariantsResponse{Keyword: expansion.Keyword, Threshold: expansion.Threshold, Variants: variants}, http.StatusOK, nil)
	}
}
