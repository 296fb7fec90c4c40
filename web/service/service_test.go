package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opsdesk/helpdesk/config"
	"github.com/opsdesk/helpdesk/database"
	"github.com/opsdesk/helpdesk/database/model"
	"github.com/opsdesk/helpdesk/util/crypto"
	"github.com/opsdesk/helpdesk/web/entity"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const validPassword = "ValidPass1!"

func TestMain(m *testing.M) {
	crypto.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func setup(t *testing.T) *gorm.DB {
	t.Helper()
	require.NoError(t, database.InitDB(config.SQLiteConfigAt(filepath.Join(t.TempDir(), "test.db"))))
	t.Cleanup(func() { _ = database.CloseDB() })
	return database.GetDB()
}

func registerForm(email, employeeID string, role model.Role) *entity.RegisterForm {
	return &entity.RegisterForm{
		Email:           email,
		Password:        validPassword,
		ConfirmPassword: validPassword,
		FirstName:       "Test",
		LastName:        "User",
		EmployeeId:      employeeID,
		Role:            string(role),
	}
}

func mustRegister(t *testing.T, db *gorm.DB, email, employeeID string, role model.Role) *entity.Principal {
	t.Helper()
	u, err := NewUserService(db, Policy{}).Register(registerForm(email, employeeID, role))
	require.NoError(t, err)
	return entity.NewPrincipal(u)
}

func countRows(t *testing.T, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}
