// Package tracer provides distributed tracing for sqlbridge using OpenTelemetry.
//
// It wraps the OpenTelemetry TracerProvider behind a small API for creating
// spans, recording errors and propagating trace context. The statement
// executor accepts a trace.Tracer, so database spans nest under whatever span
// is active on the caller's context.
//
// Basic Usage:
//
//	log := logger.NewLoggerClient(logger.Config{Level: "info"})
//
//	tracerClient := tracer.NewClient(tracer.Config{
//		ServiceName:  "orders",
//		AppEnv:       "development",
//		EnableExport: true,
//	}, log)
//
//	ctx, span := tracerClient.StartSpan(ctx, "create-order")
//	defer span.End()
//
// When EnableExport is true, spans are shipped over OTLP HTTP to the endpoint
// configured through the standard OTEL_EXPORTER_OTLP_* environment variables.
package tracer
