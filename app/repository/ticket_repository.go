package repository

import (
	"time"

	"github.com/nimbushost/NimbusPanel/app/models"
	"gorm.io/gorm"
)

// ticketRepository implements the TicketRepository interface
type ticketRepository struct {
	db *gorm.DB
}

// NewTicketRepository creates a new support ticket repository instance
func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

// Create creates a new support ticket
func (r *ticketRepository) Create(ticket *models.SupportTicket) error {
	return r.db.Create(ticket).Error
}

// GetByID retrieves a ticket by its ID
func (r *ticketRepository) GetByID(id uint) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.db.First(&ticket, id).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetByIDForUser retrieves a ticket only if it belongs to the given user
func (r *ticketRepository) GetByIDForUser(id, userID uint) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// AppendMessage adds a message to a ticket thread
func (r *ticketRepository) AppendMessage(ticketID uint, author, body string) error {
	msg := &models.TicketMessage{
		TicketID: ticketID,
		Author:   author,
		Body:     body,
	}
	return r.db.Create(msg).Error
}

// Close marks a ticket closed. Closing an already closed ticket is a no-op.
func (r *ticketRepository) Close(ticketID uint) error {
	now := time.Now()
	return r.db.Model(&models.SupportTicket{}).
		Where("id = ? AND status = ?", ticketID, models.TicketStatusOpen).
		Updates(map[string]any{
			"status":    models.TicketStatusClosed,
			"closed_at": &now,
		}).Error
}

// ListMessages returns all messages of a ticket in chronological order
func (r *ticketRepository) ListMessages(ticketID uint) ([]models.TicketMessage, error) {
	var msgs []models.TicketMessage
	err := r.db.Where("ticket_id = ?", ticketID).Order("created_at ASC").Find(&msgs).Error
	return msgs, err
}
