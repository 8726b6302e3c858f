// bundlefx/bundlefx.go
package bundlefx

import (
	"github.com/joeydtaylor/steeze-print/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-print/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-print/pkg/middleware/metrics"
	"go.uber.org/fx"
)

// Module provides the auth, access-log and metrics middleware plus the
// system logger and the dispatch observer.
var Module = fx.Options(
	auth.Module,
	logger.Module,
	metrics.Module,
)
