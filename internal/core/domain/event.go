package domain

import "time"

// LedgerEventType names a committed change to ledger state.
type LedgerEventType string

const (
	EventAccountCreated            LedgerEventType = "account.created"
	EventAccountUpdated            LedgerEventType = "account.updated"
	EventAccountDeactivated        LedgerEventType = "account.deactivated"
	EventAccountDeleted            LedgerEventType = "account.deleted"
	EventTransactionCreated        LedgerEventType = "transaction.created"
	EventTransactionUpdated        LedgerEventType = "transaction.updated"
	EventTransactionStatusChanged  LedgerEventType = "transaction.status_changed"
	EventTransactionDeleted        LedgerEventType = "transaction.deleted"
	EventObligationCreated         LedgerEventType = "obligation.created"
	EventObligationUpdated         LedgerEventType = "obligation.updated"
	EventObligationDeleted         LedgerEventType = "obligation.deleted"
	EventObligationPaymentRecorded LedgerEventType = "obligation.payment_recorded"
	EventPersonnelCreated          LedgerEventType = "personnel.created"
	EventPersonnelUpdated          LedgerEventType = "personnel.updated"
	EventSalaryCreated             LedgerEventType = "salary.created"
	EventSalaryUpdated             LedgerEventType = "salary.updated"
	EventSalaryDeleted             LedgerEventType = "salary.deleted"
)

// LedgerEvent is published after a write commits.
type LedgerEvent struct {
	EventID    string          `json:"eventID"`
	Type       LedgerEventType `json:"type"`
	EntityID   string          `json:"entityID"`
	ActorID    string          `json:"actorID"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    any             `json:"payload,omitempty"`
}
