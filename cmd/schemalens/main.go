package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/schemalens/schemalens/configs"
	"github.com/schemalens/schemalens/internal/adapter/inbound/resthttp"
	"github.com/schemalens/schemalens/internal/adapter/outbound/endpoint"
	"github.com/schemalens/schemalens/internal/adapter/outbound/jsonsample"
	"github.com/schemalens/schemalens/internal/adapter/outbound/namecleaner"
	"github.com/schemalens/schemalens/internal/adapter/outbound/openapi"
	"github.com/schemalens/schemalens/internal/adapter/outbound/soap"
	"github.com/schemalens/schemalens/internal/domain"
	"github.com/schemalens/schemalens/internal/fetch"
	"github.com/schemalens/schemalens/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Configuration ===
	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// === Logging ===
	logLevel := cfg.ParsedLogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	logger.Info("Logger initialized.", slog.String("level", logLevel.String()))

	// === OpenTelemetry Initialization ===
	shutdownOtel, err := initOtelProvider(cfg)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry.", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			logger.Error("Failed to shutdown OpenTelemetry TracerProvider.", slog.Any("error", err))
		}
	}()

	// === Dependency Injection ===
	logger.Info("Initializing dependencies...")

	// The timeout lives on the guard's per-request contexts, not here, so
	// one client serves every analyzer.
	httpClient := &http.Client{}
	guard := fetch.NewGuard(httpClient, cfg.RequestTimeout, cfg.MaxPayloadBytes(), logger)
	logger.Debug("Request guard configured.",
		slog.Duration("timeout", cfg.RequestTimeout), slog.Int64("max_bytes", cfg.MaxPayloadBytes()))

	openapiAnalyzer := openapi.New(guard, logger)
	endpointAnalyzer := endpoint.New(guard, logger)
	sampleAnalyzer := jsonsample.New(logger)
	soapAnalyzer := soap.New(guard, logger)
	analyzers := map[domain.Mode]usecase.Analyzer{
		domain.ModeOpenAPI:       openapiAnalyzer,
		domain.ModeOpenAPIURL:    openapiAnalyzer,
		domain.ModeEndpoint:      endpointAnalyzer,
		domain.ModeJSONSample:    sampleAnalyzer,
		domain.ModeWSDL:          soapAnalyzer,
		domain.ModeWSDLURL:       soapAnalyzer,
		domain.ModeSOAPEndpoint:  soapAnalyzer,
		domain.ModeSOAPXMLSample: soapAnalyzer,
	}
	logger.Debug("Mode analyzers initialized.", slog.Int("mode_count", len(analyzers)))

	analyzeUC := usecase.NewAnalyzeUseCase(analyzers, logger)

	cleaner := namecleaner.New(namecleaner.Config{
		APIURL:    cfg.NamesAPIURL,
		APIKey:    cfg.NamesAPIKey,
		Model:     cfg.NamesModel,
		BatchSize: cfg.NamesBatchSize,
		Timeout:   cfg.RequestTimeout,
	}, httpClient, logger)
	if cleaner.Enabled() {
		logger.Info("Display name cleaner enabled.", slog.String("model", cfg.NamesModel))
	}

	// === HTTP Server Setup ===
	mux := http.NewServeMux()
	handlers := resthttp.NewHandlers(analyzeUC, cleaner, cfg.MaxPayloadBytes(), logger)
	handlers.RegisterRoutes(mux)
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	go func() {
		logger.Info("HTTP server starting.", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed to start.", slog.Any("error", err))
			stop()
		}
	}()

	// Wait for interrupt signal.
	<-ctx.Done()

	// === Server Shutdown ===
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed.", slog.Any("error", err))
	}
	logger.Info("Server shut down gracefully.")
}

// initOtelProvider initializes the OpenTelemetry SDK and sets up the OTLP
// trace exporter. It returns a shutdown function to be called on exit.
func initOtelProvider(cfg *configs.Config) (func(context.Context) error, error) {
	ctx := context.Background()

	if cfg.OtelExporterOtlpEndpoint == "" {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, OpenTelemetry tracing disabled.")
		return func(context.Context) error { return nil }, nil
	}

	slog.Info("Initializing OTLP exporter.", slog.String("endpoint", cfg.OtelExporterOtlpEndpoint))

	grpcOpts := []grpc.DialOption{}
	if cfg.OtelExporterOtlpInsecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		slog.Warn("Using insecure connection for OTLP exporter.")
	}

	conn, err := grpc.NewClient(cfg.OtelExporterOtlpEndpoint, grpcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to OTLP endpoint: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("schemalens"),
		),
	)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(r),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) error {
		providerErr := tp.Shutdown(ctx)
		connErr := conn.Close()
		return errors.Join(providerErr, connErr)
	}, nil
}
