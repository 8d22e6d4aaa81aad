package service

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("github.com/iliyamo/stadium-tickets/internal/service")
