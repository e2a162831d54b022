package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// RoleStaff is the role carried by tokens issued to school staff.
const RoleStaff = "staff"

// ErrBadCredentials is returned for an unknown user or a wrong password.
var ErrBadCredentials = errors.New("invalid username or password")

// Staff is the single staff account configured for the deployment.
type Staff struct {
	Username     string
	PasswordHash string
}

// Authenticate checks username and password against the account. An account
// without a password hash rejects every login.
func (s Staff) Authenticate(username, password string) error {
	if s.PasswordHash == "" {
		return ErrBadCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password))
	if !userOK || passErr != nil {
		return ErrBadCredentials
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for STAFF_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
