package service

import (
	"strings"
	"testing"

	"github.com/opsdesk/helpdesk/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	db := setup(t)
	tickets := NewTicketService(db, Policy{})
	comments := NewCommentService(db, Policy{})
	alice := mustRegister(t, db, "alice@x.com", "EMP0001", model.RoleEmployee)
	bob := mustRegister(t, db, "bob@x.com", "EMP0002", model.RoleAdmin)
	ticket, err := tickets.Submit(alice, "VPN", "down")
	require.NoError(t, err)

	c, err := comments.Add(alice, ticket.Id, "  still down  ")
	require.NoError(t, err)
	assert.Equal(t, "still down", c.Content)
	assert.Equal(t, alice.UserId, c.UserId)

	_, err = comments.Add(bob, ticket.Id, "on it")
	require.NoError(t, err)
	_, err = comments.Add(alice, ticket.Id, "thanks")
	require.NoError(t, err)

	thread, err := comments.List(alice, ticket.Id)
	require.NoError(t, err)
	require.Len(t, thread, 3)
	assert.Equal(t, []string{"still down", "on it", "thanks"},
		[]string{thread[0].Content, thread[1].Content, thread[2].Content})
	assert.Equal(t, "Test User", thread[1].AuthorName())
	assert.Equal(t, bob.UserId, thread[1].UserId)
}

func TestAddCommentRejects(t *testing.T) {
	db := setup(t)
	tickets := NewTicketService(db, Policy{})
	comments := NewCommentService(db, Policy{})
	alice := mustRegister(t, db, "alice@x.com", "EMP0001", model.RoleEmployee)
	ticket, err := tickets.Submit(alice, "VPN", "down")
	require.NoError(t, err)

	_, err = comments.Add(alice, ticket.Id, " \n ")
	assert.ErrorIs(t, err, ErrEmptyComment)
	_, err = comments.Add(alice, ticket.Id, strings.Repeat("c", maxCommentLength+1))
	assert.ErrorIs(t, err, ErrCommentTooLong)
	_, err = comments.Add(alice, 404, "hello")
	assert.ErrorIs(t, err, ErrTicketNotFound)
	_, err = comments.Add(nil, ticket.Id, "hello")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	assert.Zero(t, countRows(t, db, &model.Comment{}))

	_, err = comments.List(alice, 404)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestCommentStrictOwnership(t *testing.T) {
	db := setup(t)
	strict := Policy{StrictOwnership: true}
	tickets := NewTicketService(db, strict)
	comments := NewCommentService(db, strict)
	alice := mustRegister(t, db, "alice@x.com", "EMP0001", model.RoleEmployee)
	carol := mustRegister(t, db, "carol@x.com", "EMP0003", model.RoleEmployee)
	bob := mustRegister(t, db, "bob@x.com", "EMP0002", model.RoleAdmin)
	ticket, err := tickets.Submit(alice, "VPN", "down")
	require.NoError(t, err)

	_, err = comments.Add(carol, ticket.Id, "me too")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = comments.List(carol, ticket.Id)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = comments.Add(bob, ticket.Id, "on it")
	assert.NoError(t, err)

	// permissive policy lets anyone join the thread
	_, err = NewCommentService(db, Policy{}).Add(carol, ticket.Id, "me too")
	assert.NoError(t, err)
}
