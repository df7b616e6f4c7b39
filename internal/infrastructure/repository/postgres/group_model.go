package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/chit-fund/internal/domain/chitgroup"
	qb "github.com/riskibarqy/chit-fund/internal/platform/querybuilder"
)

type groupTableModel struct {
	ID                 string       `db:"id"`
	Name               string       `db:"name"`
	OrganizerID        string       `db:"organizer_id"`
	Capacity           int          `db:"capacity"`
	DurationMonths     int          `db:"duration_months"`
	TotalAmount        float64      `db:"total_amount"`
	TicketValue        float64      `db:"ticket_value"`
	CommissionRate     float64      `db:"commission_rate"`
	ContributionAmount float64      `db:"contribution_amount"`
	PaymentDay         int          `db:"payment_day"`
	StartDate          sql.NullTime `db:"start_date"`
	EndDate            sql.NullTime `db:"end_date"`
	Description        string       `db:"description"`
	Ledger             []byte       `db:"ledger"`
	Version            int64        `db:"version"`
	CreatedAt          time.Time    `db:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at"`
	DeletedAt          *time.Time   `db:"deleted_at"`
}

type groupInsertModel struct {
	ID                 string       `db:"id"`
	Name               string       `db:"name"`
	OrganizerID        string       `db:"organizer_id"`
	Capacity           int          `db:"capacity"`
	DurationMonths     int          `db:"duration_months"`
	TotalAmount        float64      `db:"total_amount"`
	TicketValue        float64      `db:"ticket_value"`
	CommissionRate     float64      `db:"commission_rate"`
	ContributionAmount float64      `db:"contribution_amount"`
	PaymentDay         int          `db:"payment_day"`
	StartDate          sql.NullTime `db:"start_date"`
	EndDate            sql.NullTime `db:"end_date"`
	Description        string       `db:"description"`
	Ledger             string       `db:"ledger"`
	Version            int64        `db:"version"`
	CreatedAt          time.Time    `db:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at"`
}

var groupColumns = qb.Columns(groupTableModel{})

func encodeLedger(ledger chitgroup.Ledger) (string, error) {
	raw, err := sonic.Marshal(ledger)
	if err != nil {
		return "", fmt.Errorf("encode ledger: %w", err)
	}
	return string(raw), nil
}

func decodeLedger(raw []byte) (chitgroup.Ledger, error) {
	var ledger chitgroup.Ledger
	if len(raw) == 0 {
		return ledger, nil
	}
	if err := sonic.Unmarshal(raw, &ledger); err != nil {
		return chitgroup.Ledger{}, fmt.Errorf("decode ledger: %w", err)
	}
	return ledger, nil
}

func groupFromRow(row groupTableModel) (chitgroup.Group, error) {
	ledger, err := decodeLedger(row.Ledger)
	if err != nil {
		return chitgroup.Group{}, fmt.Errorf("group %s: %w", row.ID, err)
	}
	return chitgroup.Group{
		ID:                 row.ID,
		Name:               row.Name,
		OrganizerID:        row.OrganizerID,
		Capacity:           row.Capacity,
		DurationMonths:     row.DurationMonths,
		TotalAmount:        row.TotalAmount,
		TicketValue:        row.TicketValue,
		CommissionRate:     row.CommissionRate,
		ContributionAmount: row.ContributionAmount,
		PaymentDay:         row.PaymentDay,
		StartDate:          fromNullTime(row.StartDate),
		EndDate:            fromNullTime(row.EndDate),
		Description:        row.Description,
		Ledger:             ledger,
		Version:            row.Version,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
		DeletedAt:          row.DeletedAt,
	}, nil
}

func groupInsertFromDomain(g chitgroup.Group) (groupInsertModel, error) {
	ledger, err := encodeLedger(g.Ledger)
	if err != nil {
		return groupInsertModel{}, err
	}
	return groupInsertModel{
		ID:                 g.ID,
		Name:               g.Name,
		OrganizerID:        g.OrganizerID,
		Capacity:           g.Capacity,
		DurationMonths:     g.DurationMonths,
		TotalAmount:        g.TotalAmount,
		TicketValue:        g.TicketValue,
		CommissionRate:     g.CommissionRate,
		ContributionAmount: g.ContributionAmount,
		PaymentDay:         g.PaymentDay,
		StartDate:          toNullTime(g.StartDate),
		EndDate:            toNullTime(g.EndDate),
		Description:        g.Description,
		Ledger:             ledger,
		Version:            1,
		CreatedAt:          g.CreatedAt.UTC(),
		UpdatedAt:          g.UpdatedAt.UTC(),
	}, nil
}
