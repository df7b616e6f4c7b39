package activity

import "time"

type Type string

const (
	TypeCreateGroup        Type = "CREATE_GROUP"
	TypeUpdateGroup        Type = "UPDATE_GROUP"
	TypeDeleteGroup        Type = "DELETE_GROUP"
	TypeJoinRequest        Type = "JOIN_REQUEST"
	TypeApproveJoin        Type = "APPROVE_JOIN"
	TypePlaceBid           Type = "PLACE_BID"
	TypeRunDraw            Type = "RUN_DRAW"
	TypeRepay              Type = "REPAY"
	TypePenaltyApplied     Type = "PENALTY_APPLIED"
	TypePenaltyAppliedAuto Type = "PENALTY_APPLIED_AUTO"
	TypeRemoveMember       Type = "REMOVE_MEMBER"
	TypeLateralRequest     Type = "LATERAL_REQUEST"
	TypeLateralApprove     Type = "LATERAL_APPROVE"
	TypeLateralPayment     Type = "LATERAL_PAYMENT"
	TypeCompensate         Type = "COMPENSATE"
	TypeAdjustBid          Type = "ADJUST_BID"
)

// SystemActor is recorded when no caller identity is available, e.g. the reconciliation job.
const SystemActor = "system"

// Entry is an immutable record of something that happened to a group.
type Entry struct {
	ID         string
	Type       Type
	Details    string
	ActorID    string
	GroupID    string
	OccurredAt time.Time
}
