package httpapi

import (
	"net/http"

	"github.com/riskibarqy/chit-fund/internal/usecase"
)

func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "PlaceBid")
	defer span.End()

	var req placeBidRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("groupID")
	bid, err := h.biddingService.PlaceBid(ctx, usecase.PlaceBidInput{
		GroupID:  groupID,
		MemberID: req.MemberID,
		Amount:   req.Amount,
		Month:    req.Month,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "place bid failed", "group_id", groupID, "member_id", req.MemberID, "month", req.Month, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, bidToDTO(bid))
}

func (h *Handler) RunDraw(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "RunDraw")
	defer span.End()

	var req runDrawRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("groupID")
	result, err := h.biddingService.RunDraw(ctx, usecase.RunDrawInput{
		GroupID: groupID,
		Month:   req.Month,
		ActorID: actorFromContext(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run draw failed", "group_id", groupID, "month", req.Month, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, drawResultToDTO(result))
}

func (h *Handler) RecordContribution(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "RecordContribution")
	defer span.End()

	var req contributionRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("groupID")
	contribution, err := h.contributionService.RecordContribution(ctx, usecase.RecordContributionInput{
		GroupID:  groupID,
		MemberID: req.MemberID,
		Month:    req.Month,
		Year:     req.Year,
		Amount:   req.Amount,
		ActorID:  actorFromContext(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record contribution failed", "group_id", groupID, "member_id", req.MemberID, "month", req.Month, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, contributionToDTO(contribution))
}

func (h *Handler) PenalizeMissedPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "PenalizeMissedPayment")
	defer span.End()

	var req missedPaymentRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("groupID")
	result, err := h.contributionService.DetectAndPenalizeMissedPayment(ctx, usecase.PenalizeInput{
		GroupID:      groupID,
		MemberID:     req.MemberID,
		MissedAmount: req.MissedAmount,
		Month:        req.Month,
		Year:         req.Year,
		Reason:       req.Reason,
		ActorID:      actorFromContext(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "penalize missed payment failed", "group_id", groupID, "member_id", req.MemberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, penaltyResultDTO{
		Penalty: penaltyToDTO(result.Penalty),
		Warning: warningToDTO(result.Warning),
	})
}

func (h *Handler) ListWarnings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "ListWarnings")
	defer span.End()

	groupID := r.PathValue("groupID")
	warnings, err := h.contributionService.GetWarnings(ctx, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "list warnings failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, warningsToDTO(warnings))
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "RemoveMember")
	defer span.End()

	groupID := r.PathValue("groupID")
	memberID := r.PathValue("memberID")
	err := h.contributionService.RemoveMember(ctx, usecase.RemoveMemberInput{
		GroupID:  groupID,
		MemberID: memberID,
		ActorID:  actorFromContext(ctx),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "remove member failed", "group_id", groupID, "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"group_id": groupID, "member_id": memberID, "status": "removed"})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "GetStatus")
	defer span.End()

	groupID := r.PathValue("groupID")
	status, err := h.contributionService.GetStatus(ctx, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "get status failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statusToDTO(ctx, status))
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "GetHistory")
	defer span.End()

	groupID := r.PathValue("groupID")
	history, err := h.contributionService.GetHistory(ctx, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "get history failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, historyToDTO(ctx, history))
}
