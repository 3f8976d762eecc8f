package store

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"inkwell/internal/auth"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserStore persists user accounts. All handlers go through it; nothing
// else touches the users table.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(gdb *gorm.DB) *UserStore {
	return &UserStore{db: gdb}
}

// Register validates the fields, checks both uniqueness constraints and
// inserts the new account with a hashed password. The unique indexes
// remain the backstop for racing registrations: a concurrent insert of
// the same value fails at commit and is reported as the same conflict.
func (s *UserStore) Register(username, email, password string) (*models.User, error) {
	if n := utf8.RuneCountInString(username); n < 2 || n > 20 {
		return nil, &ValidationError{Field: "username", Message: "must be 2 to 20 characters"}
	}
	if !emailPattern.MatchString(email) {
		return nil, &ValidationError{Field: "email", Message: "is not a valid address"}
	}
	if len(password) < 6 {
		return nil, &ValidationError{Field: "password", Message: "must be at least 6 characters"}
	}

	if taken, err := s.exists("username", username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err := s.exists("email", email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, s.mapCreateConflict(err, username)
	}
	return &user, nil
}

// Authenticate looks the account up by email and verifies the password.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserStore) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// UpdateProfile changes username, email and avatar. Uniqueness is
// re-checked only for values that actually differ from the user's
// current ones, so saving the form unchanged never conflicts with
// yourself. Empty avatar keeps the current picture.
func (s *UserStore) UpdateProfile(user *models.User, username, email, avatar string) error {
	if n := utf8.RuneCountInString(username); n < 2 || n > 20 {
		return &ValidationError{Field: "username", Message: "must be 2 to 20 characters"}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Message: "is not a valid address"}
	}

	if username != user.Username {
		if taken, err := s.exists("username", username); err != nil {
			return err
		} else if taken {
			return ErrUsernameTaken
		}
	}
	if email != user.Email {
		if taken, err := s.exists("email", email); err != nil {
			return err
		} else if taken {
			return ErrEmailTaken
		}
	}

	user.Username = username
	user.Email = email
	if avatar != "" {
		user.Avatar = avatar
	}
	return s.db.Save(user).Error
}

// ResetPassword re-hashes and overwrites. Outstanding reset tokens are
// not revoked; each stays valid until its own expiry.
func (s *UserStore) ResetPassword(user *models.User, newPassword string) error {
	if len(newPassword) < 6 {
		return &ValidationError{Field: "password", Message: "must be at least 6 characters"}
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	return s.db.Save(user).Error
}

func (s *UserStore) ByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) ByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) ByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) exists(column, value string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where(column+" = ?", value).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// mapCreateConflict turns a unique-index violation raised at commit
// time (the pre-checks lost a race) into the matching conflict error.
func (s *UserStore) mapCreateConflict(err error, username string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if taken, lookupErr := s.exists("username", username); lookupErr == nil && taken {
			return ErrUsernameTaken
		}
		return ErrEmailTaken
	}
	return err
}
