package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/chit-fund/internal/usecase"
)

// RunReconcileJob triggers one reconciliation pass. An optional "at" overrides the evaluation time.
func (h *Handler) RunReconcileJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "RunReconcileJob")
	defer span.End()

	if h.reconciler == nil {
		writeError(ctx, w, fmt.Errorf("%w: reconciliation is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req reconcileRequest
	if err := h.decodeAndValidate(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	at := h.now()
	if req.At != "" {
		parsed, err := time.Parse(time.RFC3339, req.At)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: at must be RFC 3339", usecase.ErrInvalidInput))
			return
		}
		at = parsed
	}

	result, err := h.reconciler.Run(ctx, at)
	if err != nil {
		h.logger.WarnContext(ctx, "run reconcile job failed", "at", at.Format(time.RFC3339), "error", err)
		writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "reconcile job completed",
		"groups_scanned", result.GroupsScanned,
		"groups_failed", result.GroupsFailed,
		"penalties_applied", result.PenaltiesApplied,
	)

	writeSuccess(ctx, w, http.StatusOK, result)
}
