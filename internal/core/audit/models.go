package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Actions recorded for the tier approval workflow.
const (
	ActionRequested  = "requested"
	ActionSuperseded = "superseded"
	ActionApproved   = "approved"
	ActionRejected   = "rejected"
	ActionDenied     = "denied"
)

// Event is one audit trail entry of a tier change.
type Event struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`

	// RequestID ties every event of one pending request together.
	RequestID uuid.UUID `json:"request_id" gorm:"type:uuid;index"`

	ClientID string `json:"client_id" gorm:"type:text;not null;index"` // WhatsApp number
	ActorID  string `json:"actor_id,omitempty" gorm:"type:text"`       // approver number, empty for client actions
	Action   string `json:"action" gorm:"type:text;not null;index"`

	Tier         string `json:"tier,omitempty" gorm:"type:text"`
	PreviousTier string `json:"previous_tier,omitempty" gorm:"type:text"`

	Description string         `json:"description,omitempty" gorm:"type:text"`
	Metadata    datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (Event) TableName() string {
	return "audit_logs"
}

// Filter narrows History queries.
type Filter struct {
	ClientID string
	Action   string
	Since    *time.Time
	Limit    int
}
