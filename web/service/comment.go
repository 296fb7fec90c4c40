package service

import (
	"strings"
	"unicode/utf8"

	"github.com/opsdesk/helpdesk/database"
	"github.com/opsdesk/helpdesk/database/model"
	"github.com/opsdesk/helpdesk/web/entity"

	"gorm.io/gorm"
)

const maxCommentLength = 2000

type CommentService struct {
	DB     *gorm.DB
	Policy Policy
}

func NewCommentService(db *gorm.DB, policy Policy) *CommentService {
	return &CommentService{DB: db, Policy: policy}
}

func (s *CommentService) ticketOwner(ticketID int) (int, error) {
	ticket := &model.Ticket{}
	err := s.DB.Select("id", "user_id").First(ticket, ticketID).Error
	if database.IsNotFound(err) {
		return 0, ErrTicketNotFound
	}
	return ticket.UserId, err
}

// Add appends a comment by the caller to the ticket's thread.
func (s *CommentService) Add(pr *entity.Principal, ticketID int, content string) (*model.Comment, error) {
	if err := s.Policy.Authorize(pr, OpCommentTicket); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, ErrCommentTooLong
	}
	owner, err := s.ticketOwner(ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.Policy.AuthorizeTicket(pr, OpCommentTicket, owner); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		TicketId: ticketID,
		UserId:   pr.UserId,
		Content:  content,
	}
	if err := s.DB.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// List returns the ticket's thread, oldest first.
func (s *CommentService) List(pr *entity.Principal, ticketID int) ([]model.CommentView, error) {
	if err := s.Policy.Authorize(pr, OpViewTicket); err != nil {
		return nil, err
	}
	owner, err := s.ticketOwner(ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.Policy.AuthorizeTicket(pr, OpViewTicket, owner); err != nil {
		return nil, err
	}

	comments := make([]model.CommentView, 0)
	err = s.DB.Table("comments").
		Select("comments.id, comments.ticket_id, comments.user_id, comments.content, comments.created_at, "+
			"users.first_name AS author_first_name, users.last_name AS author_last_name").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.ticket_id = ?", ticketID).
		Order("comments.created_at ASC, comments.id ASC").
		Scan(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
