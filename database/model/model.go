// Package model contains the gorm models persisted by the helpdesk.
package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleAdmin
}

type TicketStatus string

const (
	StatusOpen   TicketStatus = "Open"
	StatusClosed TicketStatus = "Closed"
)

func (s TicketStatus) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

type User struct {
	Id           int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	FirstName    string    `json:"firstName" gorm:"size:100;not null"`
	LastName     string    `json:"lastName" gorm:"size:100;not null"`
	EmployeeId   string    `json:"employeeId" gorm:"column:employee_id;size:7;uniqueIndex;not null"`
	Role         Role      `json:"role" gorm:"size:20;not null;default:employee"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Ticket struct {
	Id          int          `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string       `json:"title" gorm:"size:200;not null"`
	Description string       `json:"description" gorm:"type:text;not null"`
	Status      TicketStatus `json:"status" gorm:"size:20;not null;default:Open;index"`
	UserId      int          `json:"userId" gorm:"not null;index"`
	User        *User        `json:"-" gorm:"foreignKey:UserId"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// BeforeCreate fills in the initial status.
func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = StatusOpen
	}
	return nil
}

type Comment struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	TicketId  int       `json:"ticketId" gorm:"not null;index"`
	Ticket    *Ticket   `json:"-" gorm:"foreignKey:TicketId;constraint:OnDelete:CASCADE"`
	UserId    int       `json:"userId" gorm:"not null;index"`
	User      *User     `json:"-" gorm:"foreignKey:UserId"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// TicketView is a ticket joined with the name of its owner.
type TicketView struct {
	Id             int          `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Status         TicketStatus `json:"status"`
	UserId         int          `json:"userId"`
	CreatedAt      time.Time    `json:"createdAt"`
	OwnerFirstName string       `json:"ownerFirstName"`
	OwnerLastName  string       `json:"ownerLastName"`
}

func (v *TicketView) OwnerName() string {
	return strings.TrimSpace(v.OwnerFirstName + " " + v.OwnerLastName)
}

// CommentView is a comment joined with the name of its author.
type CommentView struct {
	Id              int       `json:"id"`
	TicketId        int       `json:"ticketId"`
	UserId          int       `json:"userId"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"createdAt"`
	AuthorFirstName string    `json:"authorFirstName"`
	AuthorLastName  string    `json:"authorLastName"`
}

func (v *CommentView) AuthorName() string {
	return strings.TrimSpace(v.AuthorFirstName + " " + v.AuthorLastName)
}

type AuditLog struct {
	Id         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId     int       `json:"userId" gorm:"index"`
	Email      string    `json:"email"`
	Action     string    `json:"action" gorm:"size:32;index"`
	Resource   string    `json:"resource" gorm:"size:32"`
	ResourceId int       `json:"resourceId"`
	RequestId  string    `json:"requestId" gorm:"size:36"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"userAgent"`
	Details    string    `json:"details"`
	Timestamp  time.Time `json:"timestamp" gorm:"index"`
}
