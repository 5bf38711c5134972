package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/fuzzyfind/logger"
	"github.com/meghashyamc/fuzzyfind/services/search"
	"github.com/meghashyamc/fuzzyfind/validation"
)

const defaultResultsPerPage = 100

// Defaults fill in request fields the client leaves out.
type Defaults struct {
	SearchContents bool
	Threshold      float64
	MaxResults     int
	SortEntries    bool
}

type SearchRequest struct {
	Path           string   `json:"path" validate:"valid_root"`
	Keyword        string   `json:"keyword" validate:"required,valid_keyword,max=1000"`
	SearchContents *bool    `json:"search_contents"`
	Threshold      *float64 `json:"threshold" validate:"omitempty,min=0,max=1"`
	MaxResults     int      `json:"max_results" validate:"min=0,max=1000000"`
	SortEntries    *bool    `json:"sort_entries"`
}

func (r *SearchRequest) toServiceRequest(defaults Defaults) search.Request {
	request := search.Request{
		Root:           r.Path,
		Keyword:        r.Keyword,
		SearchContents: defaults.SearchContents,
		Threshold:      defaults.Threshold,
		MaxResults:     r.MaxResults,
		SortEntries:    defaults.SortEntries,
	}
	if r.SearchContents != nil {
		request.SearchContents = *r.SearchContents
	}
	if r.Threshold != nil {
		request.Threshold = *r.Threshold
	}
	if r.SortEntries != nil {
		request.SortEntries = *r.SortEntries
	}
	if request.MaxResults == 0 {
		request.MaxResults = defaults.MaxResults
	}

	return request
}

type SubmitResponse struct {
	ID string `json:"id"`
}

type StatusRequest struct {
	PerPage int `form:"per_page" json:"per_page" validate:"min=0,max=1000"`
	Page    int `form:"page" json:"page" validate:"min=0"`
}

func (r *StatusRequest) setDefaults() {
	if r.PerPage == 0 {
		r.PerPage = defaultResultsPerPage
	}

	if r.Page == 0 {
		r.Page = 1
	}
}

type StatusResponse struct {
	ID             string               `json:"id"`
	Status         string               `json:"status"`
	Error          string               `json:"error,omitempty"`
	Keyword        string               `json:"keyword,omitempty"`
	Variants       []string             `json:"variants,omitempty"`
	Capped         bool                 `json:"capped"`
	Cancelled      bool                 `json:"cancelled"`
	Elapsed        string               `json:"elapsed,omitempty"`
	EntriesVisited int                  `json:"entries_visited"`
	Matches        []search.MatchRecord `json:"matches,omitempty"`
	PageDetails    *Pagination          `json:"page_details,omitempty"`
}

func SetupSearch(router *gin.Engine, logger logger.Logger, service *search.Service, validator *validation.Validator, defaults Defaults) {
	router.POST("/searches", handleSubmitSearch(service, logger, validator, defaults))
	router.GET("/searches/:id", handleSearchStatus(service, logger, validator))
}

func handleSubmitSearch(service *search.Service, logger logger.Logger, validator *validation.Validator, defaults Defaults) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		id, err := service.Submit(request.toServiceRequest(defaults))
		if err != nil {
			statusCode := http.StatusInternalServerError
			switch {
			case errors.Is(err, search.ErrSearchInProgress):
				statusCode = http.StatusConflict
			case errors.Is(err, search.ErrServiceStopped):
				statusCode = http.StatusServiceUnavailable
			}
			logger.Warn("could not start search", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, statusCode, []string{err.Error()})
			return
		}

		writeResponse(c, SubmitResponse{ID: id}, http.StatusAccepted, nil)
	}
}

func handleSearchStatus(service *search.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := StatusRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from status request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request parameters"})
			return
		}
		request.setDefaults()

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate status request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		status, err := service.Status(c.Param("id"))
		if err != nil {
			statusCode := http.StatusInternalServerError
			if errors.Is(err, search.ErrRequestNotFound) {
				statusCode = http.StatusNotFound
			}
			logger.Warn("could not get search status", "id", c.Param("id"), "err", err.Error())
			c.Abort()
			writeResponse(c, nil, statusCode, []string{err.Error()})
			return
		}

		writeResponse(c, toStatusResponse(status, request.PerPage, (request.Page-1)*request.PerPage), http.StatusOK, nil)
	}
}

func toStatusResponse(status *search.RequestStatus, limit, offset int) StatusResponse {
	statusResponse := StatusResponse{
		ID:     status.ID,
		Status: status.Status,
		Error:  status.Error,
	}
	if status.Result == nil {
		return statusResponse
	}

	session := status.Result.Session
	statusResponse.Keyword = status.Result.Keyword
	statusResponse.Variants = status.Result.Variants
	statusResponse.Capped = session.Capped
	statusResponse.Cancelled = session.Cancelled
	statusResponse.Elapsed = session.Elapsed.Round(time.Millisecond).String()
	statusResponse.EntriesVisited = session.EntriesVisited
	statusResponse.Matches = page(session.Records, limit, offset)
	pagination := calculatePagination(session.Count(), limit, offset)
	statusResponse.PageDetails = &pagination

	return statusResponse
}
