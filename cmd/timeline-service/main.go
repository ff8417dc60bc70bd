package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpHandlers "github.com/recovera/timeline-service/internal/api/http"
	"github.com/recovera/timeline-service/internal/config"
	"github.com/recovera/timeline-service/internal/flush"
	"github.com/recovera/timeline-service/internal/platform/factory"
	"github.com/recovera/timeline-service/internal/platform/logger"
	"github.com/recovera/timeline-service/internal/services"
	"github.com/recovera/timeline-service/internal/store"
)

func main() {
	// Optional driver flag override (postgres | sqlite | diskv | memory)
	storeDriver := flag.String("store-driver", "", "Override TIMELINE_STORE_DRIVER")
	flag.Parse()

	log := logger.New("timeline-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *storeDriver != "" {
		cfg.StoreDriver = *storeDriver
		if err := cfg.ResolveDefaults(); err != nil {
			log.Fatal().Err(err).Msg("Invalid store-driver override")
		}
	}

	log.Info().
		Str("store_driver", cfg.StoreDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Timeline service starting")

	ctx := context.Background()
	st, closeStore, err := factory.NewStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Storage backend unavailable")
	}
	defer closeStore()

	serializer := flush.New(log)
	timelines := services.NewTimelineService(st, cfg.DayRangeFrom, cfg.DayRangeTo).WithSerializer(serializer)

	var pinger store.Pinger
	if p, ok := st.(store.Pinger); ok {
		pinger = p
	}

	router := httpHandlers.NewRouter(httpHandlers.Handlers{
		Timelines: httpHandlers.NewTimelineHandler(timelines),
		Library:   httpHandlers.NewLibraryHandler(services.NewLibraryService(st)),
		Customers: httpHandlers.NewCustomerHandler(services.NewCustomerService(st)),
		Segments:  httpHandlers.NewSegmentHandler(services.NewSegmentService(st)),
		Health:    httpHandlers.NewHealthHandler(pinger),
	})

	server := &http.Server{
		Addr:         cfg.GetHTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	// drain pending aggregate writes before releasing the store
	serializer.Wait()
	log.Info().Msg("Server exited")
}
