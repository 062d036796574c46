// Package main содержит точку входа утилиты logcheck.
// Утилита проверяет декларативную конфигурацию логирования: загружает
// файл, собирает иерархию логгеров и по запросу прогоняет через неё
// пробные записи.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Asahi-UX/FlexibleETL/internal/config"
	"github.com/Asahi-UX/FlexibleETL/internal/di"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/auditlog"
	"github.com/Asahi-UX/FlexibleETL/internal/pkg/tracing"
)

// Коды завершения logcheck.
const (
	exitOK         = 0 // конфигурация валидна
	exitInvalid    = 1 // конфигурация загружена, но не прошла сборку
	exitLoadFailed = 2 // файл не загружен, использован базовый fallback
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("logcheck", flag.ContinueOnError)
	probe := fs.Bool("probe", false, "прогнать пробные записи через иерархию логгеров")
	loggerName := fs.String("logger", "", "имя логгера для пробных записей (по умолчанию root)")
	dump := fs.Bool("dump", false, "вывести эффективную конфигурацию (файл + env) в stdout")
	if err := fs.Parse(args); err != nil {
		return exitInvalid
	}

	path := config.ConfigPath(fs.Arg(0))

	code := exitOK
	cfg, loadErr := config.LoadOrBasic(path)
	if loadErr != nil {
		fmt.Fprintf(os.Stderr, "logcheck: %v\n", loadErr)
		fmt.Fprintln(os.Stderr, "logcheck: используется базовая конфигурация (stderr, INFO)")
		code = exitLoadFailed
	}

	if *dump {
		rendered, err := cfg.Dump()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logcheck: %v\n", err)
			return exitInvalid
		}
		fmt.Print(rendered)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logcheck: конфигурация не прошла сборку: %v\n", err)
		return exitInvalid
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer func() {
		if err := app.Close(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "logcheck: ошибка завершения: %v\n", err)
		}
	}()

	app.Diag.Info("конфигурация собрана",
		"config", path,
		"loggers", len(app.Registry.Names()),
		"trace_id", app.TraceID,
	)

	if *probe {
		emitProbe(ctx, app, *loggerName)
		if err := app.MetricsCollector.Push(ctx); err != nil {
			app.Diag.Warn("не удалось отправить метрики", "error", err)
		}
	}

	return code
}

// emitProbe прогоняет по одной записи каждого уровня через выбранный
// логгер. Записи ниже эффективного уровня будут отброшены — это
// ожидаемое поведение, проверяющий видит реальную картину фильтрации.
func emitProbe(ctx context.Context, app *di.App, name string) {
	tracer := otel.Tracer("logcheck")
	ctx, span := tracer.Start(tracing.ContextWithTraceID(ctx, app.TraceID), "probe")
	span.SetAttributes(attribute.String("logger", name))
	defer span.End()

	logger := app.Registry.Root()
	if name != "" {
		logger = app.Registry.GetOrCreate(name)
	}

	for _, lvl := range []auditlog.Level{
		auditlog.LevelDebug,
		auditlog.LevelInfo,
		auditlog.LevelWarning,
		auditlog.LevelError,
		auditlog.LevelCritical,
	} {
		logger.LogCtx(ctx, lvl, "пробная запись logcheck", "level", lvl.String())
	}
}
