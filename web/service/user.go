package service

import (
	"regexp"
	"strings"

	"github.com/opsdesk/helpdesk/database"
	"github.com/opsdesk/helpdesk/database/model"
	"github.com/opsdesk/helpdesk/logger"
	"github.com/opsdesk/helpdesk/util/crypto"
	"github.com/opsdesk/helpdesk/web/entity"

	"gorm.io/gorm"
)

var employeeIDPattern = regexp.MustCompile(`^EMP\d{4}$`)

const passwordSymbols = "@$!%*?&"

// IsValidEmployeeID reports whether id is EMP followed by exactly 4 digits.
func IsValidEmployeeID(id string) bool {
	return employeeIDPattern.MatchString(id)
}

// IsStrongPassword reports whether pw has at least 8 characters including a
// lowercase letter, an uppercase letter, a digit and one of @$!%*?&.
func IsStrongPassword(pw string) bool {
	if len([]rune(pw)) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type UserService struct {
	DB     *gorm.DB
	Policy Policy
}

func NewUserService(db *gorm.DB, policy Policy) *UserService {
	return &UserService{DB: db, Policy: policy}
}

// Register validates form and stores a new user. The first failing rule wins:
// required fields, employee id format, employee id uniqueness, password
// strength, password confirmation, role, then email uniqueness at insert.
func (s *UserService) Register(form *entity.RegisterForm) (*model.User, error) {
	email := normalizeEmail(form.Email)
	firstName := strings.TrimSpace(form.FirstName)
	lastName := strings.TrimSpace(form.LastName)
	if email == "" || firstName == "" || lastName == "" {
		return nil, ErrMissingField
	}

	if !IsValidEmployeeID(form.EmployeeId) {
		return nil, ErrInvalidEmployeeID
	}
	taken, err := s.exists("employee_id = ?", form.EmployeeId)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateEmployeeID
	}

	if !IsStrongPassword(form.Password) {
		return nil, ErrWeakPassword
	}
	if form.Password != form.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	role := model.Role(strings.TrimSpace(form.Role))
	if role == "" {
		role = model.RoleEmployee
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := crypto.HashPassword(form.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		EmployeeId:   form.EmployeeId,
		Role:         role,
	}
	if err := s.DB.Create(user).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, s.duplicateCause(email, err)
		}
		return nil, err
	}
	logger.Infof("registered user %d (%s) as %s", user.Id, user.EmployeeId, user.Role)
	return user, nil
}

// duplicateCause decides which unique column rejected an insert. The
// employee id pre-check can lose a race with a concurrent registration.
func (s *UserService) duplicateCause(email string, err error) error {
	if taken, qerr := s.exists("email = ?", email); qerr == nil && !taken {
		return wrap(ErrDuplicateEmployeeID, err)
	}
	return wrap(ErrDuplicateEmail, err)
}

func (s *UserService) exists(query string, args ...any) (bool, error) {
	var count int64
	err := s.DB.Model(&model.User{}).Where(query, args...).Count(&count).Error
	return count > 0, err
}

// CheckUser authenticates email and password.
func (s *UserService) CheckUser(email, password string) (*model.User, error) {
	user := &model.User{}
	err := s.DB.Where("email = ?", normalizeEmail(email)).First(user).Error
	if database.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil, err
	}
	if !crypto.CheckPasswordHash(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetUser(id int) (*model.User, error) {
	user := &model.User{}
	err := s.DB.First(user, id).Error
	if database.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns every user ordered by id. Admin only.
func (s *UserService) ListUsers(pr *entity.Principal) ([]model.User, error) {
	if err := s.Policy.Authorize(pr, OpListUsers); err != nil {
		return nil, err
	}
	return s.AllUsers()
}

// AllUsers lists users without an authorization check, for the CLI.
func (s *UserService) AllUsers() ([]model.User, error) {
	var users []model.User
	if err := s.DB.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
