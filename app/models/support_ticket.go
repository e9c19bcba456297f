package models

import "time"

const (
	TicketStatusOpen   = "open"
	TicketStatusClosed = "closed"
)

// SupportTicket is the minimal support record the cancellation flow appends a
// closing message to. Thread rendering lives elsewhere.
type SupportTicket struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	ServiceID *uint      `gorm:"index" json:"service_id,omitempty"`
	Subject   string     `gorm:"type:varchar(200);not null" json:"subject"`
	Status    string     `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	ClosedAt  *time.Time `gorm:"type:timestamp;default:null" json:"closed_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TicketMessage is one message in a support ticket thread.
type TicketMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TicketID  uint      `gorm:"not null;index" json:"ticket_id"`
	Author    string    `gorm:"type:varchar(150);not null;default:'system'" json:"author"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsOpen reports whether the ticket still accepts messages.
func (t *SupportTicket) IsOpen() bool {
	return t.Status == TicketStatusOpen
}
