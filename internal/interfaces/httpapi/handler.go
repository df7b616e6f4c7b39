package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/chit-fund/internal/platform/logging"
	"github.com/riskibarqy/chit-fund/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	groupService        *usecase.GroupService
	biddingService      *usecase.BiddingService
	contributionService *usecase.ContributionService
	lateralService      *usecase.LateralService
	organizerService    *usecase.OrganizerService
	reconciler          *usecase.ReconciliationService
	logger              *logging.Logger
	validator           *validator.Validate
	now                 func() time.Time
}

func NewHandler(
	groupService *usecase.GroupService,
	biddingService *usecase.BiddingService,
	contributionService *usecase.ContributionService,
	lateralService *usecase.LateralService,
	organizerService *usecase.OrganizerService,
	reconciler *usecase.ReconciliationService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		groupService:        groupService,
		biddingService:      biddingService,
		contributionService: contributionService,
		lateralService:      lateralService,
		organizerService:    organizerService,
		reconciler:          reconciler,
		logger:              logger.Named("httpapi"),
		validator:           validator.New(),
		now:                 time.Now,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startRequestSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeAndValidate reads a JSON body into dst. Unknown fields are rejected. An empty body is
// accepted only when allowEmpty is set.
func (h *Handler) decodeAndValidate(r *http.Request, dst any, allowEmpty bool) error {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.decodeAndValidate")
	defer span.End()

	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
		}
		if !allowEmpty {
			return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
		}
	}

	return h.validateRequest(ctx, dst)
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
