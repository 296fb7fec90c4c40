package service

import (
	"errors"
	"testing"

	"github.com/opsdesk/helpdesk/database/model"
	"github.com/opsdesk/helpdesk/web/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	db := setup(t)
	users := NewUserService(db, Policy{})

	u, err := users.Register(registerForm(" New@Example.com ", "EMP1001", ""))
	require.NoError(t, err)
	assert.NotZero(t, u.Id)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, model.RoleEmployee, u.Role)
	assert.NotEqual(t, validPassword, u.PasswordHash)
	assert.NotEmpty(t, u.PasswordHash)

	admin, err := users.Register(registerForm("admin@example.com", "EMP1002", model.RoleAdmin))
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setup(t)
	users := NewUserService(db, Policy{})
	mustRegister(t, db, "dup@example.com", "EMP1002", model.RoleEmployee)

	for _, form := range []*entity.RegisterForm{
		registerForm("dup@example.com", "EMP1003", model.RoleEmployee),
		registerForm("DUP@example.com", "EMP1004", model.RoleAdmin),
	} {
		_, err := users.Register(form)
		assert.ErrorIs(t, err, ErrDuplicateEmail)
		assert.Equal(t, KindConflict, KindOf(err))
	}
	assert.EqualValues(t, 1, countRows(t, db, &model.User{}))
}

func TestRegisterEmployeeIDFormat(t *testing.T) {
	db := setup(t)
	users := NewUserService(db, Policy{})

	for _, id := range []string{"BAD001", "EMP001", "EMP00001", "emp0001", "EMP12a4", " EMP0001", ""} {
		_, err := users.Register(registerForm("x@example.com", id, model.RoleEmployee))
		assert.ErrorIs(t, err, ErrInvalidEmployeeID, id)
	}

	_, err := users.Register(registerForm("x@example.com", "EMP0001", model.RoleEmployee))
	assert.NoError(t, err)
}

func TestRegisterDuplicateEmployeeID(t *testing.T) {
	db := setup(t)
	users := NewUserService(db, Policy{})
	mustRegister(t, db, "first@example.com", "EMP0001", model.RoleEmployee)

	_, err := users.Register(registerForm("second@example.com", "EMP0001", model.RoleEmployee))
	assert.ErrorIs(t, err, ErrDuplicateEmployeeID)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestIsStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"ValidPass1!": true,
		"Aa1@aaaa":    true,
		"weak":        false,
		"Aa1@aaa":     false,
		"validpass1!": false,
		"VALIDPASS1!": false,
		"ValidPass!!": false,
		"ValidPass12": false,
		"ValidPass1#": false,
		"ÄäÄäÄä1!":    false,
		"Aa1@ääää":    true,
	}
	for pw, want := range cases {
		assert.Equal(t, want, IsStrongPassword(pw), pw)
	}
}

func TestRegisterValidationOrder(t *testing.T) {
	db := setup(t)
	users := NewUserService(db, Policy{})
	mustRegister(t, db, "taken@example.com", "EMP0001", model.RoleEmployee)

	form := registerForm("new@example.com", "BAD001", model.RoleEmployee)
	form.Password, form.ConfirmPassword = "weak", "other"
	_, err := users.Register(form)
	assert.ErrorIs(t, err, ErrInvalidEmployeeID)

	form.EmployeeId = "EMP0001"
	_, err = users.Register(form)
	assert.ErrorIs(t, err, ErrDuplicateEmployeeID)

	form.EmployeeId = "EMP0002"
	_, err = users.Register(form)
	assert.ErrorIs(t, err, ErrWeakPassword)

	form.Password = validPassword
	_, err = users.Register(form)
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	form.ConfirmPassword = validPassword
	form.Role = "superuser"
	_, err = users.Register(form)
	assert.ErrorIs(t, err, ErrInvalidRole)

	form.Role = string(model.RoleEmployee)
	form.Email = "taken@example.com"
	_, err = users.Register(form)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterEmptyPasswordIsWeak(t *testing.T) {
	db := setup(t)
	users := NewUserService(db, Policy{})

	form := registerForm("new@example.com", "BAD001", model.RoleEmployee)
	form.Password, form.ConfirmPassword = "", ""
	_, err := users.Register(form)
	assert.ErrorIs(t, err, ErrInvalidEmployeeID)

	form.EmployeeId = "EMP0001"
	_, err = users.Register(form)
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.Zero(t, countRows(t, db, &model.User{}))
}

func TestRegisterMismatchCreatesNothing(t *testing.T) {
	db := setup(t)
	form := registerForm("a@example.com", "EMP0001", model.RoleEmployee)
	form.ConfirmPassword = "ValidPass2!"

	_, err := NewUserService(db, Policy{}).Register(form)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Zero(t, countRows(t, db, &model.User{}))
}

func TestRegisterMissingFields(t *testing.T) {
	db := setup(t)
	form := registerForm("a@example.com", "EMP0001", model.RoleEmployee)
	form.FirstName = "  "
	_, err := NewUserService(db, Policy{}).Register(form)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestDuplicateCauseAfterLostRace(t *testing.T) {
	db := setup(t)
	users := NewUserService(db, Policy{})
	mustRegister(t, db, "winner@example.com", "EMP0001", model.RoleEmployee)
	insertErr := errors.New("UNIQUE constraint failed")

	err := users.duplicateCause("loser@example.com", insertErr)
	assert.ErrorIs(t, err, ErrDuplicateEmployeeID)
	assert.ErrorIs(t, err, insertErr)

	err = users.duplicateCause("winner@example.com", insertErr)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCheckUser(t *testing.T) {
	db := setup(t)
	users := NewUserService(db, Policy{})
	p := mustRegister(t, db, "login@example.com", "EMP1004", model.RoleEmployee)

	u, err := users.CheckUser("LOGIN@example.com", validPassword)
	require.NoError(t, err)
	assert.Equal(t, p.UserId, u.Id)

	_, err = users.CheckUser("login@example.com", "WrongPass1!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, KindAuth, KindOf(err))

	_, err = users.CheckUser("nobody@example.com", validPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestListUsers(t *testing.T) {
	db := setup(t)
	users := NewUserService(db, Policy{})
	employee := mustRegister(t, db, "e@example.com", "EMP0001", model.RoleEmployee)
	admin := mustRegister(t, db, "a@example.com", "EMP0002", model.RoleAdmin)

	_, err := users.ListUsers(employee)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = users.ListUsers(nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	list, err := users.ListUsers(admin)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "e@example.com", list[0].Email)
	assert.Equal(t, "EMP0002", list[1].EmployeeId)
}

func TestGetUser(t *testing.T) {
	db := setup(t)
	users := NewUserService(db, Policy{})
	p := mustRegister(t, db, "e@example.com", "EMP0001", model.RoleEmployee)

	u, err := users.GetUser(p.UserId)
	require.NoError(t, err)
	assert.Equal(t, "Test User", u.DisplayName())

	_, err = users.GetUser(999)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}
