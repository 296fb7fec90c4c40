// Package entity defines the request forms, the authenticated principal and
// the response envelope shared by the web layer.
package entity

import (
	"github.com/opsdesk/helpdesk/database/model"
)

// Msg is the JSON envelope returned to AJAX callers.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// Principal is the authenticated caller, stored in the session after login
// and passed explicitly to every service operation.
type Principal struct {
	UserId    int        `json:"userId"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	Role      model.Role `json:"role"`
}

func NewPrincipal(u *model.User) *Principal {
	return &Principal{
		UserId:    u.Id,
		Email:     u.Email,
		FirstName: u.FirstName,
		Role:      u.Role,
	}
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == model.RoleAdmin
}

type RegisterForm struct {
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	FirstName       string `json:"first_name" form:"first_name"`
	LastName        string `json:"last_name" form:"last_name"`
	EmployeeId      string `json:"employee_id" form:"employee_id"`
	Role            string `json:"role" form:"role"`
}

type LoginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type TicketForm struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
}

type CommentForm struct {
	Content string `json:"content" form:"content"`
}
