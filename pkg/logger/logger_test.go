package logger_test

import (
	"context"
	"emailcount/pkg/logger"
	"testing"

	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		level       string
		wantDebug   bool
	}{
		{
			name:        "Development Environment",
			environment: logger.DevelopmentEnvironment,
			wantDebug:   true,
		},
		{
			name:        "Production Environment",
			environment: logger.ProductionEnvironment,
			wantDebug:   false,
		},
		{
			name:        "Production Environment with debug override",
			environment: logger.ProductionEnvironment,
			level:       "DEBUG",
			wantDebug:   true,
		},
		{
			name:        "Development Environment with unknown level",
			environment: logger.DevelopmentEnvironment,
			level:       "verbose",
			wantDebug:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				logger.Setup(tt.environment, tt.level)
			})

			ctx := context.Background()
			require.NotNil(t, logger.Get(ctx))
			require.Equal(t, tt.wantDebug, logger.IsDebug(ctx))
		})
	}
}

func TestGet(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment, "")

	ctx := context.Background()
	l := logger.Get(ctx)
	require.NotNil(t, l, "Should return default logger when context has no logger")

	customLogger, _ := zap.NewDevelopment()
	ctxWithLogger := logger.WithLogger(ctx, customLogger)
	l = logger.Get(ctxWithLogger)
	require.Equal(t, customLogger, l, "Should return logger from context")
}

func TestWithRunIDAndDomain(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	ctx = logger.WithRunID(ctx, "run-1")
	ctx = logger.WithDomain(ctx, "example.com")
	logger.Info(ctx, "getting email count")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "run-1", fields["runID"])
	require.Equal(t, "example.com", fields["domain"])
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	ctx = logger.WithFields(ctx, zap.String("key1", "value1"), zap.Int("key2", 42))
	logger.Warn(ctx, "with fields")

	require.Equal(t, 1, logs.FilterField(zap.String("key1", "value1")).Len())
	require.Equal(t, 1, logs.FilterField(zap.Int("key2", 42)).Len())
}

func TestIsDebug(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment, "")
	ctx := context.Background()

	require.True(t, logger.IsDebug(ctx), "Development logger should be at debug level")

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	infoLogger, _ := cfg.Build()

	ctxWithInfoLogger := logger.WithLogger(ctx, infoLogger)
	require.False(t, logger.IsDebug(ctxWithInfoLogger), "Info level logger should not be at debug level")
}

func TestLoggingFunctions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	logger.Debug(ctx, "debug message", zap.String("key", "value"))
	logger.Info(ctx, "info message", zap.String("key", "value"))
	logger.Warn(ctx, "warn message", zap.String("key", "value"))
	logger.Error(ctx, "error message", zap.String("key", "value"))

	levels := make([]zapcore.Level, 0, logs.Len())
	for _, e := range logs.All() {
		levels = append(levels, e.Level)
	}
	require.Equal(t, []zapcore.Level{
		zapcore.DebugLevel,
		zapcore.InfoLevel,
		zapcore.WarnLevel,
		zapcore.ErrorLevel,
	}, levels)
}
