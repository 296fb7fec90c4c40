package service

import (
	"testing"

	"github.com/opsdesk/helpdesk/database/model"
	"github.com/opsdesk/helpdesk/web/entity"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	employee := &entity.Principal{UserId: 1, Role: model.RoleEmployee}
	admin := &entity.Principal{UserId: 2, Role: model.RoleAdmin}
	policy := Policy{}

	adminOnly := []Operation{OpCloseTicket, OpDeleteTicket, OpListUsers, OpViewUserTickets, OpViewAudit, OpViewLogs}
	for _, op := range adminOnly {
		assert.ErrorIs(t, policy.Authorize(employee, op), ErrUnauthorized, op)
		assert.NoError(t, policy.Authorize(admin, op), op)
	}

	everyone := []Operation{OpListTickets, OpSubmitTicket, OpViewTicket, OpEditTicket, OpCommentTicket}
	for _, op := range everyone {
		assert.NoError(t, policy.Authorize(employee, op), op)
		assert.ErrorIs(t, policy.Authorize(nil, op), ErrUnauthenticated, op)
	}

	assert.ErrorIs(t, policy.Authorize(admin, Operation("tickets.reopen")), ErrUnauthorized)
}

func TestAuthorizeTicket(t *testing.T) {
	owner := &entity.Principal{UserId: 1, Role: model.RoleEmployee}
	other := &entity.Principal{UserId: 3, Role: model.RoleEmployee}
	admin := &entity.Principal{UserId: 2, Role: model.RoleAdmin}

	permissive := Policy{}
	assert.NoError(t, permissive.AuthorizeTicket(other, OpEditTicket, owner.UserId))

	strict := Policy{StrictOwnership: true}
	for _, op := range []Operation{OpViewTicket, OpEditTicket, OpCommentTicket} {
		assert.NoError(t, strict.AuthorizeTicket(owner, op, owner.UserId), op)
		assert.NoError(t, strict.AuthorizeTicket(admin, op, owner.UserId), op)
		assert.ErrorIs(t, strict.AuthorizeTicket(other, op, owner.UserId), ErrUnauthorized, op)
	}

	// role rule still applies to the owner
	assert.ErrorIs(t, strict.AuthorizeTicket(owner, OpCloseTicket, owner.UserId), ErrUnauthorized)
}

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, 400, KindOf(ErrWeakPassword).HTTPStatus())
	assert.Equal(t, 409, KindOf(ErrDuplicateEmail).HTTPStatus())
	assert.Equal(t, 401, KindOf(ErrInvalidCredentials).HTTPStatus())
	assert.Equal(t, 403, KindOf(ErrUnauthorized).HTTPStatus())
	assert.Equal(t, 404, KindOf(ErrTicketNotFound).HTTPStatus())
	assert.Equal(t, 500, KindOf(assert.AnError).HTTPStatus())
	assert.Equal(t, 500, KindOf(nil).HTTPStatus())
}
