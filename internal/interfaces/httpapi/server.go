package httpapi

import (
	"net/http"

	"github.com/sharplineio/cardengine/internal/platform/logging"
)

// NewRouter builds the Read API's handler chain. Unlike the teacher's
// router, there is no auth/CORS/internal-job-token layer: every route here
// is a public, read-only query and the spec carries no auth surface for it.
func NewRouter(handler *Handler, swaggerEnabled bool, logger *logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerRoutes(mux, handler, swaggerEnabled)

	stack := RequestLogging(logger, recoverPanic(logger, mux))
	return RequestTracing(stack)
}
