package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/hashroad-backend/internal/metrics"
	"github.com/goodnatureofminers/hashroad-backend/internal/transport"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/archive"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/outcome"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/service/syncer"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/trongrid"
	grpcMiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpcRecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpcCtxTags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	grpcPrometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const healthService = "hashroad.RoadService"

type config struct {
	TronGridURL string        `long:"trongrid-url" env:"ROAD_SERVER_TRONGRID_URL" description:"TronGrid base URL" default:"https://api.trongrid.io"`
	APIKey      string        `long:"api-key" env:"ROAD_SERVER_API_KEY" description:"TronGrid API key" required:"true"`
	RPS         int           `long:"rps" env:"ROAD_SERVER_RPS" description:"TronGrid requests per second, 0 for unlimited" default:"10"`
	HTTPTimeout time.Duration `long:"http-timeout" env:"ROAD_SERVER_HTTP_TIMEOUT" description:"HTTP timeout for TronGrid requests" default:"10s"`
	Network     model.Network `long:"network" env:"ROAD_SERVER_NETWORK" description:"network name" default:"mainnet"`
	Timezone    string        `long:"timezone" env:"ROAD_SERVER_TIMEZONE" description:"timezone of displayed block times" default:"UTC"`

	PollPeriod    time.Duration `long:"poll-period" env:"ROAD_SERVER_POLL_PERIOD" description:"head poll period" default:"3s"`
	Samples       int           `long:"samples" env:"ROAD_SERVER_SAMPLES" description:"blocks fetched by a full refresh" default:"60"`
	BatchSize     int           `long:"batch-size" env:"ROAD_SERVER_BATCH_SIZE" description:"concurrent requests per refresh batch" default:"5"`
	BatchPause    time.Duration `long:"batch-pause" env:"ROAD_SERVER_BATCH_PAUSE" description:"pause between refresh batches" default:"200ms"`
	BackfillPause time.Duration `long:"backfill-pause" env:"ROAD_SERVER_BACKFILL_PAUSE" description:"pause between backfill requests" default:"100ms"`
	Capacity      int           `long:"capacity" env:"ROAD_SERVER_CAPACITY" description:"window capacity" default:"150"`
	Interval      uint64        `long:"interval" env:"ROAD_SERVER_INTERVAL" description:"initial sampling interval (1, 20, 60 or 100)" default:"1"`

	GRPCAddr    string `long:"grpc-addr" env:"ROAD_SERVER_GRPC_ADDR" description:"gRPC health listen address" default:":8000"`
	RestAddr    string `long:"rest-addr" env:"ROAD_SERVER_REST_ADDR" description:"REST listen address" default:":8001"`
	MetricsAddr string `long:"metrics-addr" env:"ROAD_SERVER_METRICS_ADDR" description:"address for metrics server" default:":2112"`

	ArchiveBackend       string        `long:"archive-backend" env:"ROAD_SERVER_ARCHIVE_BACKEND" description:"block archive backend" choice:"none" choice:"redis" choice:"clickhouse" default:"none"`
	RedisAddr            string        `long:"redis-addr" env:"ROAD_SERVER_REDIS_ADDR" description:"Redis address" default:"localhost:6379"`
	RedisPassword        string        `long:"redis-password" env:"ROAD_SERVER_REDIS_PASSWORD" description:"Redis password"`
	RedisDB              int           `long:"redis-db" env:"ROAD_SERVER_REDIS_DB" description:"Redis database"`
	RedisMaxBlocks       int           `long:"redis-max-blocks" env:"ROAD_SERVER_REDIS_MAX_BLOCKS" description:"blocks retained in Redis" default:"100000"`
	ClickhouseDSN        string        `long:"clickhouse-dsn" env:"ROAD_SERVER_CLICKHOUSE_DSN" description:"ClickHouse DSN"`
	ArchiveFlushSize     int           `long:"archive-flush-size" env:"ROAD_SERVER_ARCHIVE_FLUSH_SIZE" description:"blocks per archive write" default:"200"`
	ArchiveFlushInterval time.Duration `long:"archive-flush-interval" env:"ROAD_SERVER_ARCHIVE_FLUSH_INTERVAL" description:"max delay of an archive write" default:"5s"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	grpcZap.ReplaceGrpcLoggerV2(logger)

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("road server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	interval, err := model.ParseInterval(cfg.Interval)
	if err != nil {
		return err
	}

	client, err := trongrid.NewClient(cfg.TronGridURL, cfg.APIKey, cfg.HTTPTimeout, cfg.RPS)
	if err != nil {
		return fmt.Errorf("init trongrid client: %w", err)
	}
	source, err := trongrid.NewObservedSource(client, metrics.NewTronGridClient(cfg.Network))
	if err != nil {
		return fmt.Errorf("init observed source: %w", err)
	}

	repo, closeRepo, err := newArchiveRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	var (
		sink     syncer.Sink
		archiver *archive.Archiver
	)
	if repo != nil {
		archiver, err = archive.NewArchiver(repo, metrics.NewArchive(), logger.Named("archive"), archive.Config{
			FlushSize:     cfg.ArchiveFlushSize,
			FlushInterval: cfg.ArchiveFlushInterval,
		})
		if err != nil {
			return fmt.Errorf("init archiver: %w", err)
		}
		sink = archiver
	}

	engine, err := syncer.NewEngine(
		source,
		outcome.NewClassifier(location),
		sink,
		metrics.NewSyncer(cfg.Network),
		logger.Named("syncer"),
		syncer.Config{
			PollPeriod:    cfg.PollPeriod,
			Samples:       cfg.Samples,
			BatchSize:     cfg.BatchSize,
			BatchPause:    cfg.BatchPause,
			BackfillPause: cfg.BackfillPause,
			Capacity:      cfg.Capacity,
			Interval:      interval,
		},
	)
	if err != nil {
		return fmt.Errorf("init syncer: %w", err)
	}

	health := transport.NewHealthReporter(healthService)
	engine.OnStatusChange(health.Observe)

	var archiveAPI transport.Archive
	if repo != nil {
		archiveAPI = repo
	}
	handler, err := transport.NewHTTPHandler(engine, archiveAPI, metrics.NewHTTP(), logger.Named("http"))
	if err != nil {
		return fmt.Errorf("init http handler: %w", err)
	}

	grpcServer := newGRPCServer(logger)
	healthpb.RegisterHealthServer(grpcServer, health.Server())
	grpcPrometheus.Register(grpcServer)

	restServer := &http.Server{
		Addr:              cfg.RestAddr,
		Handler:           cors.Default().Handler(handler.Router()),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	metricsServer := newMetricsServer(cfg.MetricsAddr)

	socket, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if archiver != nil {
		archiver.Start(gctx)
		defer archiver.Stop()
	}

	g.Go(func() error {
		err := engine.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		logger.Info("starting gRPC server", zap.String("addr", cfg.GRPCAddr))
		return grpcServer.Serve(socket)
	})
	g.Go(func() error {
		return listenAndServe(restServer, "REST", logger)
	})
	g.Go(func() error {
		return listenAndServe(metricsServer, "metrics", logger)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")
		health.Shutdown()
		grpcServer.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := restServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown REST server", zap.Error(err))
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}

func newGRPCServer(logger *zap.Logger) *grpc.Server {
	chain := []grpc.UnaryServerInterceptor{
		grpcRecovery.UnaryServerInterceptor(),
		grpcCtxTags.UnaryServerInterceptor(),
		grpcPrometheus.UnaryServerInterceptor,
		grpcZap.UnaryServerInterceptor(logger),
	}
	grpcPrometheus.EnableHandlingTimeHistogram()
	return grpc.NewServer(
		grpc.UnaryInterceptor(grpcMiddleware.ChainUnaryServer(chain...)),
	)
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func listenAndServe(srv *http.Server, name string, logger *zap.Logger) error {
	logger.Info("starting "+name+" server", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
