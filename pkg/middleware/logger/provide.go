package logger

import "go.uber.org/zap"

// Middleware writes one access log entry per HTTP request.
type Middleware struct{}

func ProvideLoggerMiddleware() *Middleware { return &Middleware{} }
func ProvideLogger() *zap.Logger           { return NewLog("system.log") }
