package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicEventRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/events", handler.ListEventsByGameweek)
	mux.HandleFunc("GET /v1/events/{eventID}", handler.GetEvent)
	mux.HandleFunc("GET /v1/events/{eventID}/leaderboard", handler.GetLeaderboard)
}

func registerAuthorizedLineupRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/events/{eventID}/lineup", RequireAuth(verifier, http.HandlerFunc(handler.GetMyLineup)))
	mux.Handle("PUT /v1/events/{eventID}/lineup", RequireAuth(verifier, http.HandlerFunc(handler.SubmitLineup)))
	mux.Handle("DELETE /v1/events/{eventID}/lineup", RequireAuth(verifier, http.HandlerFunc(handler.WithdrawLineup)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/events", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.CreateEvent)))
	mux.Handle("POST /v1/internal/events/{eventID}/status", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ChangeEventStatus)))
	mux.Handle("POST /v1/internal/events/{eventID}/clone", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.CloneEvent)))
	mux.Handle("POST /v1/internal/jobs/score/{eventID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunScoreEventJob)))
	mux.Handle("POST /v1/internal/jobs/reset/{eventID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunResetEventJob)))
	mux.Handle("POST /v1/internal/jobs/run-gameweek", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunGameweekJob)))
}
