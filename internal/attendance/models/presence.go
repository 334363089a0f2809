package models

import (
	"time"

	id "agorax/pkg/domain"
)

// Presence is a confirmed-attendance record linking an owner to a meeting.
// Coefficient is captured at registration time and stays authoritative for
// that meeting even if the owner's live coefficient later changes.
type Presence struct {
	MeetingID    id.MeetingID `json:"meeting_id"`
	OwnerID      id.OwnerID   `json:"owner_id"`
	Coefficient  float64      `json:"coefficient"`
	RegisteredAt time.Time    `json:"registered_at"`
}
