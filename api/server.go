package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/fuzzyfind/api/handlers"
	"github.com/meghashyamc/fuzzyfind/config"
	"github.com/meghashyamc/fuzzyfind/db/kvdb"
	"github.com/meghashyamc/fuzzyfind/logger"
	"github.com/meghashyamc/fuzzyfind/services/search"
	"github.com/meghashyamc/fuzzyfind/services/variants"
	"github.com/meghashyamc/fuzzyfind/validation"
)

type server struct {
	cfg        *config.Config
	router     *gin.Engine
	httpServer *http.Server
	kvdb       kvdb.DB
	service    *search.Service
	validator  *validation.Validator
	logger     logger.Logger
}

// Run serves the HTTP API until ctx is done or the process is interrupted.
func Run(ctx context.Context, cfg *config.Config, logger logger.Logger, vocabulary *variants.Vocabulary) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger,
	}
	if err := s.setupDependencies(ctx, vocabulary); err != nil {
		return err
	}
	s.setupRouter()

	return s.serve(ctx)
}

func (s *server) setupDependencies(ctx context.Context, vocabulary *variants.Vocabulary) error {
	var err error
	s.kvdb, err = kvdb.New(s.logger, s.cfg.GetKVDBPath(), search.RequestsBucket, search.ResultsBucket)
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return err
	}
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		return err
	}
	s.service = search.New(ctx, s.logger, vocabulary, s.cfg.GetExpandWorkers(), s.kvdb)

	return nil

}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(loggingMiddleware(s.logger))

	setupRoutes(router, s.logger, s.service, s.validator, handlers.Defaults{
		SearchContents: s.cfg.GetSearchContents(),
		Threshold:      s.cfg.GetThreshold(),
		MaxResults:     s.cfg.GetMaxResults(),
		SortEntries:    s.cfg.GetSortEntries(),
	})

	s.router = router
}

func (s *server) serve(ctx context.Context) error {

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler: s.router.Handler(),
	}

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()

	select {
	case err := <-errC:
		s.kvdb.Close()
		if err != nil {
			s.logger.Error("http server failed", "err", err.Error())
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	defer s.kvdb.Close()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err)
		return err
	}
	s.logger.Info("shut down http server successfully")

	return nil
}
