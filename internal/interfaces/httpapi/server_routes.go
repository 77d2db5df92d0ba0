package httpapi

import "net/http"

func registerRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /api/health", handler.Health)
	mux.HandleFunc("GET /api/games", handler.ListGames)
	mux.HandleFunc("GET /api/cards", handler.ListCards)
	mux.HandleFunc("GET /api/results", handler.ListResults)
	mux.HandleFunc("GET /api/analyze/{id}/stream", handler.AnalyzeStream)

	if swaggerEnabled {
		mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
		mux.HandleFunc("GET /docs", handler.SwaggerUI)
	}
}
