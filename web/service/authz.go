package service

import (
	"github.com/opsdesk/helpdesk/config"
	"github.com/opsdesk/helpdesk/web/entity"
)

// Operation names an action guarded by the authorization gate.
type Operation string

const (
	OpListTickets     Operation = "tickets.list"
	OpSubmitTicket    Operation = "tickets.submit"
	OpViewTicket      Operation = "tickets.view"
	OpEditTicket      Operation = "tickets.edit"
	OpCommentTicket   Operation = "tickets.comment"
	OpCloseTicket     Operation = "tickets.close"
	OpDeleteTicket    Operation = "tickets.delete"
	OpListUsers       Operation = "users.list"
	OpViewUserTickets Operation = "users.tickets"
	OpViewAudit       Operation = "audit.view"
	OpViewLogs        Operation = "logs.view"
)

type capability struct {
	adminOnly bool
	// owned operations are limited to the ticket owner or an admin when
	// strict ownership is on
	owned bool
}

var capabilities = map[Operation]capability{
	OpListTickets:     {},
	OpSubmitTicket:    {},
	OpViewTicket:      {owned: true},
	OpEditTicket:      {owned: true},
	OpCommentTicket:   {owned: true},
	OpCloseTicket:     {adminOnly: true},
	OpDeleteTicket:    {adminOnly: true},
	OpListUsers:       {adminOnly: true},
	OpViewUserTickets: {adminOnly: true},
	OpViewAudit:       {adminOnly: true},
	OpViewLogs:        {adminOnly: true},
}

// Policy is the single place that decides who may do what.
type Policy struct {
	StrictOwnership bool
}

// DefaultPolicy builds the policy from the active settings.
func DefaultPolicy() Policy {
	return Policy{StrictOwnership: config.Get().StrictOwnership}
}

// Authorize checks the role level rule for op. Unknown operations are denied.
func (p Policy) Authorize(pr *entity.Principal, op Operation) error {
	if pr == nil {
		return ErrUnauthenticated
	}
	capab, ok := capabilities[op]
	if !ok {
		return ErrUnauthorized
	}
	if capab.adminOnly && !pr.IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}

// AuthorizeTicket additionally applies the ownership rule for a ticket owned
// by ownerID.
func (p Policy) AuthorizeTicket(pr *entity.Principal, op Operation, ownerID int) error {
	if err := p.Authorize(pr, op); err != nil {
		return err
	}
	if p.StrictOwnership && capabilities[op].owned && !pr.IsAdmin() && pr.UserId != ownerID {
		return ErrUnauthorized
	}
	return nil
}
