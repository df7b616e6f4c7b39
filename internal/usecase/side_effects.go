package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/chit-fund/internal/domain/activity"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
	"github.com/riskibarqy/chit-fund/internal/domain/member"
	"github.com/riskibarqy/chit-fund/internal/domain/notification"
	"github.com/riskibarqy/chit-fund/internal/platform/id"
	"github.com/riskibarqy/chit-fund/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

const defaultSideEffectTimeout = 10 * time.Second

const unknownMemberName = "Unknown"

// effect is a best-effort action run after a mutation has been persisted.
type effect func(ctx context.Context)

// SideEffects records activity and sends notifications once a mutation is stored.
// Failures are logged and never reach the caller. Nil collaborators are skipped.
type SideEffects struct {
	activities activity.Repository
	directory  member.Directory
	notifier   notification.Notifier
	ids        id.Generator
	timeout    time.Duration
	logger     *logging.Logger
	now        func() time.Time
}

func NewSideEffects(
	activities activity.Repository,
	directory member.Directory,
	notifier notification.Notifier,
	ids id.Generator,
	timeout time.Duration,
	logger *logging.Logger,
) *SideEffects {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if timeout <= 0 {
		timeout = defaultSideEffectTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SideEffects{
		activities: activities,
		directory:  directory,
		notifier:   notifier,
		ids:        ids,
		timeout:    timeout,
		logger:     logger,
		now:        time.Now,
	}
}

// run executes effects concurrently and waits for them. The request context's cancellation is
// dropped so a disconnecting caller does not abort work for a mutation that already happened.
func (e *SideEffects) run(ctx context.Context, effects ...effect) {
	if e == nil || len(effects) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	var wg conc.WaitGroup
	for _, fn := range effects {
		if fn == nil {
			continue
		}
		wg.Go(func() { fn(ctx) })
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		e.logger.ErrorContext(ctx, "side effect panicked", "panic", recovered.String())
	}
}

func (e *SideEffects) record(typ activity.Type, groupID, actorID, details string) effect {
	return func(ctx context.Context) {
		if e.activities == nil {
			return
		}
		entryID, err := e.ids.NewID()
		if err != nil {
			e.logger.WarnContext(ctx, "generate activity id failed", "type", string(typ), "group_id", groupID, "error", err)
			return
		}
		actorID = strings.TrimSpace(actorID)
		if actorID == "" {
			actorID = activity.SystemActor
		}
		entry := activity.Entry{
			ID:         entryID,
			Type:       typ,
			Details:    details,
			ActorID:    actorID,
			GroupID:    groupID,
			OccurredAt: e.now().UTC(),
		}
		if err := e.activities.Append(ctx, entry); err != nil {
			e.logger.WarnContext(ctx, "record activity failed", "type", string(typ), "group_id", groupID, "error", err)
		}
	}
}

// profile resolves a member for display. ok is false when the directory is missing or the lookup failed.
func (e *SideEffects) profile(ctx context.Context, memberID string) (member.Profile, bool) {
	if e == nil || e.directory == nil {
		return member.Profile{ID: memberID}, false
	}
	p, err := e.directory.GetMember(ctx, memberID)
	if err != nil {
		e.logger.WarnContext(ctx, "resolve member failed", "member_id", memberID, "error", err)
		return member.Profile{ID: memberID}, false
	}
	return p, true
}

func (e *SideEffects) send(ctx context.Context, to member.Profile, subject, body string) {
	if e.notifier == nil {
		return
	}
	if strings.TrimSpace(to.Email) == "" {
		e.logger.WarnContext(ctx, "member has no email, notification skipped", "member_id", to.ID, "subject", subject)
		return
	}
	if err := e.notifier.Notify(ctx, to.Email, subject, body); err != nil {
		e.logger.WarnContext(ctx, "send notification failed", "member_id", to.ID, "subject", subject, "error", err)
	}
}

func (e *SideEffects) notifyDrawWinner(winnerID string, winningBid float64) effect {
	return func(ctx context.Context) {
		if e.notifier == nil {
			return
		}
		winner, ok := e.profile(ctx, winnerID)
		if !ok {
			return
		}
		e.send(ctx, winner, "You won the draw!", "Congrats! You won ₹"+formatAmount(winningBid))
	}
}

// notifyPenalty tells the member and the organizer about a missed-payment penalty.
func (e *SideEffects) notifyPenalty(group chitgroup.Group, memberID string, missed, penalty float64, automatic bool) effect {
	return func(ctx context.Context) {
		if e.notifier == nil {
			return
		}
		target, ok := e.profile(ctx, memberID)
		if !ok {
			return
		}
		organizer, organizerOK := e.profile(ctx, group.OrganizerID)

		memberBody := fmt.Sprintf(
			"Hello %s,\n\nYou missed your contribution of ₹%s. A penalty of ₹%s has been applied to your account.\n\nPlease pay at the earliest to avoid further action.",
			target.Name, formatAmount(missed), formatAmount(penalty),
		)
		organizerBody := fmt.Sprintf(
			"Hello %s,\n\nMember %s (ID: %s) missed their contribution of ₹%s and was penalized ₹%s.",
			organizer.Name, target.Name, memberID, formatAmount(missed), formatAmount(penalty),
		)
		if automatic {
			memberBody = fmt.Sprintf(
				"Hello %s,\n\nYou missed your contribution of ₹%s for %s. A penalty of ₹%s has been automatically applied to your account.\n\nPlease pay at the earliest to avoid further action.",
				target.Name, formatAmount(missed), group.Name, formatAmount(penalty),
			)
			organizerBody = fmt.Sprintf(
				"Hello %s,\n\nMember %s (ID: %s) missed their contribution of ₹%s for %s and was automatically penalized ₹%s.",
				organizer.Name, target.Name, memberID, formatAmount(missed), group.Name, formatAmount(penalty),
			)
		}

		e.send(ctx, target, "Chit Fund: Missed Payment Penalty", memberBody)
		if organizerOK {
			e.send(ctx, organizer, "Chit Fund Alert: Member Missed Payment", organizerBody)
		}
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
