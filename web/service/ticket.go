package service

import (
	"strings"
	"unicode/utf8"

	"github.com/opsdesk/helpdesk/database"
	"github.com/opsdesk/helpdesk/database/model"
	"github.com/opsdesk/helpdesk/logger"
	"github.com/opsdesk/helpdesk/web/entity"

	"gorm.io/gorm"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 500
)

const ticketViewColumns = "tickets.id, tickets.title, tickets.description, tickets.status, tickets.user_id, tickets.created_at, " +
	"users.first_name AS owner_first_name, users.last_name AS owner_last_name"

type TicketService struct {
	DB     *gorm.DB
	Policy Policy
}

func NewTicketService(db *gorm.DB, policy Policy) *TicketService {
	return &TicketService{DB: db, Policy: policy}
}

func (s *TicketService) views() *gorm.DB {
	return s.DB.Table("tickets").
		Select(ticketViewColumns).
		Joins("JOIN users ON users.id = tickets.user_id")
}

// ParseStatus accepts "" (no filter), "Open" or "Closed".
func ParseStatus(status string) (model.TicketStatus, error) {
	st := model.TicketStatus(strings.TrimSpace(status))
	if st == "" || st.Valid() {
		return st, nil
	}
	return "", ErrInvalidStatus
}

// List builds the dashboard: every ticket for admins, the caller's own
// tickets otherwise, optionally narrowed to one status, newest first.
func (s *TicketService) List(pr *entity.Principal, status string) ([]model.TicketView, error) {
	if err := s.Policy.Authorize(pr, OpListTickets); err != nil {
		return nil, err
	}
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	query := s.views()
	if !pr.IsAdmin() {
		query = query.Where("tickets.user_id = ?", pr.UserId)
	}
	if st != "" {
		query = query.Where("tickets.status = ?", st)
	}

	tickets := make([]model.TicketView, 0)
	if err := query.Order("tickets.id DESC").Scan(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// ListForUser returns the tickets owned by userID. Admin only.
func (s *TicketService) ListForUser(pr *entity.Principal, userID int) (*model.User, []model.TicketView, error) {
	if err := s.Policy.Authorize(pr, OpViewUserTickets); err != nil {
		return nil, nil, err
	}
	owner := &model.User{}
	if err := s.DB.First(owner, userID).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	tickets := make([]model.TicketView, 0)
	err := s.views().
		Where("tickets.user_id = ?", userID).
		Order("tickets.id DESC").
		Scan(&tickets).Error
	if err != nil {
		return nil, nil, err
	}
	return owner, tickets, nil
}

func validateTicket(title, description string) (string, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return "", "", ErrTicketFieldsRequired
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", "", ErrTitleTooLong
	}
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return "", "", ErrDescriptionTooLong
	}
	return title, description, nil
}

// Submit creates an Open ticket owned by the caller.
func (s *TicketService) Submit(pr *entity.Principal, title, description string) (*model.Ticket, error) {
	if err := s.Policy.Authorize(pr, OpSubmitTicket); err != nil {
		return nil, err
	}
	title, description, err := validateTicket(title, description)
	if err != nil {
		return nil, err
	}
	ticket := &model.Ticket{
		Title:       title,
		Description: description,
		Status:      model.StatusOpen,
		UserId:      pr.UserId,
	}
	if err := s.DB.Create(ticket).Error; err != nil {
		return nil, err
	}
	logger.Infof("user %d submitted ticket %d", pr.UserId, ticket.Id)
	return ticket, nil
}

func (s *TicketService) load(id int) (*model.Ticket, error) {
	ticket := &model.Ticket{}
	err := s.DB.First(ticket, id).Error
	if database.IsNotFound(err) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// Get returns the ticket with its owner's name.
func (s *TicketService) Get(pr *entity.Principal, id int) (*model.TicketView, error) {
	if err := s.Policy.Authorize(pr, OpViewTicket); err != nil {
		return nil, err
	}
	var views []model.TicketView
	if err := s.views().Where("tickets.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrTicketNotFound
	}
	view := &views[0]
	if err := s.Policy.AuthorizeTicket(pr, OpViewTicket, view.UserId); err != nil {
		return nil, err
	}
	return view, nil
}

// Edit replaces the title and description. The status is left alone.
func (s *TicketService) Edit(pr *entity.Principal, id int, title, description string) (*model.Ticket, error) {
	if err := s.Policy.Authorize(pr, OpEditTicket); err != nil {
		return nil, err
	}
	ticket, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := s.Policy.AuthorizeTicket(pr, OpEditTicket, ticket.UserId); err != nil {
		return nil, err
	}
	title, description, err = validateTicket(title, description)
	if err != nil {
		return nil, err
	}

	err = s.DB.Model(ticket).Updates(map[string]any{
		"title":       title,
		"description": description,
	}).Error
	if err != nil {
		return nil, err
	}
	ticket.Title, ticket.Description = title, description
	logger.Infof("user %d edited ticket %d", pr.UserId, id)
	return ticket, nil
}

// Close moves an Open ticket to Closed. Closing a closed ticket is a no-op.
func (s *TicketService) Close(pr *entity.Principal, id int) (*model.Ticket, error) {
	if err := s.Policy.Authorize(pr, OpCloseTicket); err != nil {
		return nil, err
	}
	ticket, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if ticket.Status == model.StatusClosed {
		return ticket, nil
	}
	if err := s.DB.Model(ticket).Update("status", model.StatusClosed).Error; err != nil {
		return nil, err
	}
	ticket.Status = model.StatusClosed
	logger.Infof("admin %d closed ticket %d", pr.UserId, id)
	return ticket, nil
}

// Delete removes the ticket and its comments in one transaction.
func (s *TicketService) Delete(pr *entity.Principal, id int) error {
	if err := s.Policy.Authorize(pr, OpDeleteTicket); err != nil {
		return err
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ticket_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Ticket{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTicketNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Infof("admin %d deleted ticket %d", pr.UserId, id)
	return nil
}
