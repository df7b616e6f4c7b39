package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerGroupRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/groups", handler.CreateGroup)
	mux.HandleFunc("GET /v1/groups", handler.ListGroups)
	mux.HandleFunc("GET /v1/groups/{groupID}", handler.GetGroup)
	mux.HandleFunc("PUT /v1/groups/{groupID}", handler.UpdateGroup)
	mux.HandleFunc("DELETE /v1/groups/{groupID}", handler.DeleteGroup)
	mux.HandleFunc("POST /v1/groups/{groupID}/join-requests", handler.RequestToJoin)
	mux.HandleFunc("GET /v1/groups/{groupID}/join-requests", handler.ListJoinRequests)
	mux.HandleFunc("POST /v1/groups/{groupID}/participants/{memberID}", handler.ApproveJoinRequest)
	mux.HandleFunc("GET /v1/groups/{groupID}/participants", handler.ListParticipants)
	mux.HandleFunc("GET /v1/groups/{groupID}/plan", handler.GetPlan)
	mux.HandleFunc("GET /v1/groups/{groupID}/months/{month}/summary", handler.GetMonthlySummary)
	mux.HandleFunc("GET /v1/groups/{groupID}/activities", handler.ListActivities)
	mux.HandleFunc("POST /v1/calculator/distribution", handler.CalculateDistribution)
}

func registerSettlementRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/groups/{groupID}/bids", handler.PlaceBid)
	mux.HandleFunc("POST /v1/groups/{groupID}/draws", handler.RunDraw)
	mux.HandleFunc("POST /v1/groups/{groupID}/contributions", handler.RecordContribution)
	mux.HandleFunc("POST /v1/groups/{groupID}/missed-payments", handler.PenalizeMissedPayment)
	mux.HandleFunc("GET /v1/groups/{groupID}/warnings", handler.ListWarnings)
	mux.HandleFunc("DELETE /v1/groups/{groupID}/members/{memberID}", handler.RemoveMember)
	mux.HandleFunc("GET /v1/groups/{groupID}/status", handler.GetStatus)
	mux.HandleFunc("GET /v1/groups/{groupID}/history", handler.GetHistory)
}

func registerLateralRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/groups/{groupID}/lateral/requests", handler.RequestLateralJoin)
	mux.HandleFunc("POST /v1/groups/{groupID}/lateral/approvals", handler.ApproveLateralJoin)
	mux.HandleFunc("POST /v1/groups/{groupID}/lateral/payments", handler.RecordLateralPayment)
}

func registerOrganizerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/groups/{groupID}/organizer/compensations", handler.CompensateOrganizer)
	mux.HandleFunc("POST /v1/groups/{groupID}/organizer/bid-adjustments", handler.AdjustBid)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/reconcile", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunReconcileJob)))
}
