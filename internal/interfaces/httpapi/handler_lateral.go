package httpapi

import (
	"net/http"

	"github.com/riskibarqy/chit-fund/internal/usecase"
)

func (h *Handler) RequestLateralJoin(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "RequestLateralJoin")
	defer span.End()

	var req memberRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("groupID")
	err := h.lateralService.RequestLateralJoin(ctx, usecase.LateralInput{
		GroupID:  groupID,
		MemberID: req.MemberID,
		ActorID:  actorFromContext(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "request lateral join failed", "group_id", groupID, "member_id", req.MemberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{"group_id": groupID, "member_id": req.MemberID})
}

func (h *Handler) ApproveLateralJoin(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "ApproveLateralJoin")
	defer span.End()

	var req memberRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("groupID")
	due, err := h.lateralService.ApproveLateralJoin(ctx, usecase.LateralInput{
		GroupID:  groupID,
		MemberID: req.MemberID,
		ActorID:  actorFromContext(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "approve lateral join failed", "group_id", groupID, "member_id", req.MemberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lateralApprovalDTO{MemberID: req.MemberID, BackdatedDue: due})
}

func (h *Handler) RecordLateralPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "RecordLateralPayment")
	defer span.End()

	var req lateralPaymentRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("groupID")
	contribution, err := h.lateralService.RecordLateralPayment(ctx, usecase.LateralPaymentInput{
		GroupID:  groupID,
		MemberID: req.MemberID,
		Amount:   req.Amount,
		ActorID:  actorFromContext(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record lateral payment failed", "group_id", groupID, "member_id", req.MemberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, contributionToDTO(contribution))
}

func (h *Handler) CompensateOrganizer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "CompensateOrganizer")
	defer span.End()

	var req compensateRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("groupID")
	record, err := h.organizerService.CompensateOrganizer(ctx, usecase.CompensateInput{
		GroupID: groupID,
		Month:   req.Month,
		Amount:  req.Amount,
		ActorID: actorFromContext(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "compensate organizer failed", "group_id", groupID, "month", req.Month, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, compensationDTO{
		Month:      record.Month,
		Amount:     record.Amount,
		RecordedAt: record.RecordedAt,
	})
}

func (h *Handler) AdjustBid(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "AdjustBid")
	defer span.End()

	var req adjustBidRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("groupID")
	result, err := h.organizerService.AdjustBid(ctx, usecase.AdjustBidInput{
		GroupID:   groupID,
		Month:     req.Month,
		MemberID:  req.MemberID,
		NewAmount: req.NewAmount,
		ActorID:   actorFromContext(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "adjust bid failed", "group_id", groupID, "member_id", req.MemberID, "month", req.Month, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, adjustmentDTO{
		Month:      result.Adjustment.Month,
		MemberID:   result.Adjustment.MemberID,
		OldAmount:  result.Adjustment.OldAmount,
		NewAmount:  result.Adjustment.NewAmount,
		AdjustedAt: result.Adjustment.AdjustedAt,
		Applied:    result.Applied,
	})
}
