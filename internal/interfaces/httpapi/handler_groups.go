package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/chit-fund/internal/usecase"
)

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "CreateGroup")
	defer span.End()

	var req createGroupRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	startDate, err := parseDate("start_date", req.StartDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	endDate, err := parseDate("end_date", req.EndDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.groupService.Create(ctx, usecase.CreateGroupInput{
		Name:               req.Name,
		OrganizerID:        req.OrganizerID,
		Capacity:           req.Capacity,
		DurationMonths:     req.DurationMonths,
		TotalAmount:        req.TotalAmount,
		TicketValue:        req.TicketValue,
		CommissionRate:     req.CommissionRate,
		ContributionAmount: req.ContributionAmount,
		PaymentDay:         req.PaymentDay,
		StartDate:          startDate,
		EndDate:            endDate,
		Description:        req.Description,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create group failed", "name", req.Name, "organizer_id", req.OrganizerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, groupToDTO(ctx, view))
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "ListGroups")
	defer span.End()

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	views, err := h.groupService.List(ctx, usecase.ListGroupsInput{
		OrganizerID: strings.TrimSpace(r.URL.Query().Get("organizer_id")),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list groups failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]groupDTO, 0, len(views))
	for _, v := range views {
		items = append(items, groupToDTO(ctx, v))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "GetGroup")
	defer span.End()

	groupID := r.PathValue("groupID")
	view, err := h.groupService.Get(ctx, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "get group failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, groupToDTO(ctx, view))
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "UpdateGroup")
	defer span.End()

	var req updateGroupRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.UpdateGroupInput{
		GroupID:     r.PathValue("groupID"),
		ActorID:     actorFromContext(ctx),
		Name:        req.Name,
		Description: req.Description,
		PaymentDay:  req.PaymentDay,
	}
	for _, field := range []struct {
		name string
		raw  *string
		dst  **time.Time
	}{
		{name: "start_date", raw: req.StartDate, dst: &input.StartDate},
		{name: "end_date", raw: req.EndDate, dst: &input.EndDate},
	} {
		if field.raw == nil {
			continue
		}
		parsed, err := parseDate(field.name, *field.raw)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		*field.dst = &parsed
	}

	view, err := h.groupService.UpdateMetadata(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "update group failed", "group_id", input.GroupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, groupToDTO(ctx, view))
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "DeleteGroup")
	defer span.End()

	groupID := r.PathValue("groupID")
	if err := h.groupService.Delete(ctx, groupID, actorFromContext(ctx)); err != nil {
		h.logger.WarnContext(ctx, "delete group failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"id": groupID, "status": "deleted"})
}

func (h *Handler) RequestToJoin(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "RequestToJoin")
	defer span.End()

	var req memberRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("groupID")
	if err := h.groupService.RequestToJoin(ctx, groupID, req.MemberID); err != nil {
		h.logger.WarnContext(ctx, "request to join failed", "group_id", groupID, "member_id", req.MemberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{"group_id": groupID, "member_id": req.MemberID})
}

func (h *Handler) ListJoinRequests(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "ListJoinRequests")
	defer span.End()

	groupID := r.PathValue("groupID")
	requests, err := h.groupService.ListJoinRequests(ctx, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "list join requests failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, nonNilStrings(requests))
}

func (h *Handler) ApproveJoinRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "ApproveJoinRequest")
	defer span.End()

	groupID := r.PathValue("groupID")
	memberID := r.PathValue("memberID")
	if err := h.groupService.ApproveJoinRequest(ctx, groupID, memberID, actorFromContext(ctx)); err != nil {
		h.logger.WarnContext(ctx, "approve join request failed", "group_id", groupID, "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"group_id": groupID, "member_id": memberID})
}

func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "ListParticipants")
	defer span.End()

	groupID := r.PathValue("groupID")
	profiles, err := h.groupService.ListParticipants(ctx, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "list participants failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]participantDTO, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, participantToDTO(p))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "GetPlan")
	defer span.End()

	groupID := r.PathValue("groupID")
	plan, err := h.groupService.Plan(ctx, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "get plan failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, planToDTO(plan))
}

func (h *Handler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "GetMonthlySummary")
	defer span.End()

	groupID := r.PathValue("groupID")
	month, err := pathInt(r, "month")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.groupService.MonthlySummary(ctx, groupID, month)
	if err != nil {
		h.logger.WarnContext(ctx, "get monthly summary failed", "group_id", groupID, "month", month, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]participantMonthDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, participantMonthToDTO(row))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "ListActivities")
	defer span.End()

	groupID := r.PathValue("groupID")
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.groupService.ListActivities(ctx, groupID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list activities failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]activityDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, activityToDTO(e))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CalculateDistribution(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "CalculateDistribution")
	defer span.End()

	var req distributionRequest
	if err := h.decodeAndValidate(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	out, err := h.groupService.CalculateDistribution(ctx, usecase.DistributionInput{
		FundValue:         req.FundValue,
		BidAmount:         req.BidAmount,
		CommissionPercent: req.CommissionPercent,
		Members:           req.Members,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, distributionToDTO(out))
}
