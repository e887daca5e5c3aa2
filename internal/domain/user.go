package domain

import (
	"crypto/subtle"
	"errors"

	"github.com/mkrupp/homecase-shop/internal/util/encoding"
)

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an existing name.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the name/password combination is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotACustomer is returned when a customer-only operation targets an admin.
	ErrNotACustomer = errors.New("not a customer")
)

const (
	// DefaultAdminName is the name of the administrator seeded into an empty user store.
	DefaultAdminName = "admin"
	// DefaultAdminPassword is the plaintext password of the seeded administrator.
	DefaultAdminPassword = "admin123"
)

// Role is the closed set of user kinds.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// CustomerProfile holds the fields only customers carry.
type CustomerProfile struct {
	Email string
	Phone string
}

// User is either an admin or a customer. Profile is set exactly when Role is RoleCustomer.
type User struct {
	ID       string
	Name     string
	Password string // obfuscated, see encoding.ScramblePassword
	Role     Role
	Profile  *CustomerProfile
}

// NewAdmin creates an admin with the given plaintext password.
func NewAdmin(id, name, password string) User {
	return User{
		ID:       id,
		Name:     name,
		Password: encoding.ScramblePassword(password),
		Role:     RoleAdmin,
	}
}

// NewCustomer creates a customer with the given plaintext password.
func NewCustomer(id, name, password, email, phone string) User {
	return User{
		ID:       id,
		Name:     name,
		Password: encoding.ScramblePassword(password),
		Role:     RoleCustomer,
		Profile:  &CustomerProfile{Email: email, Phone: phone},
	}
}

// RecordID returns the user ID.
func (u User) RecordID() string {
	return u.ID
}

// DisplayName returns the name used for keyword filtering.
func (u User) DisplayName() string {
	return u.Name
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) IsCustomer() bool {
	return u.Role == RoleCustomer && u.Profile != nil
}

// Email returns the customer email, or "" for admins.
func (u User) Email() string {
	if u.Profile == nil {
		return ""
	}

	return u.Profile.Email
}

// Phone returns the customer phone number, or "" for admins.
func (u User) Phone() string {
	if u.Profile == nil {
		return ""
	}

	return u.Profile.Phone
}

// CheckPassword reports whether plain matches the stored obfuscated password.
func (u User) CheckPassword(plain string) bool {
	stored, ok := encoding.UnscramblePassword(u.Password)
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
}

// SetPassword replaces the stored password with the obfuscated form of plain.
func (u *User) SetPassword(plain string) {
	u.Password = encoding.ScramblePassword(plain)
}

// Clone returns a copy that shares no memory with u.
func (u User) Clone() User {
	if u.Profile != nil {
		profile := *u.Profile
		u.Profile = &profile
	}

	return u
}

// MarshalLine encodes the user as one record line.
//
//	admin:    id,name,password,role
//	customer: id,name,password,role,email,phone
func (u User) MarshalLine() (string, error) {
	switch u.Role {
	case RoleAdmin:
		return joinFields(u.ID, u.Name, u.Password, string(u.Role))
	case RoleCustomer:
		return joinFields(u.ID, u.Name, u.Password, string(u.Role), u.Email(), u.Phone())
	default:
		return "", malformed("unknown role %q", u.Role)
	}
}

// ParseUserLine decodes a record line written by MarshalLine. A customer line without
// the trailing phone field is accepted with an empty phone number.
func ParseUserLine(line string) (User, error) {
	fields := splitFields(line)
	if len(fields) < 4 {
		return User{}, malformed("user: expected at least 4 fields, got %d", len(fields))
	}

	user := User{
		ID:       fields[0],
		Name:     fields[1],
		Password: fields[2],
		Role:     Role(fields[3]),
	}

	if user.ID == "" || user.Name == "" {
		return User{}, malformed("user: empty id or name")
	}

	if _, ok := encoding.UnscramblePassword(user.Password); !ok {
		return User{}, malformed("user %s: unreadable password", user.ID)
	}

	switch user.Role {
	case RoleAdmin:
		if len(fields) != 4 {
			return User{}, malformed("admin %s: expected 4 fields, got %d", user.ID, len(fields))
		}
	case RoleCustomer:
		switch len(fields) {
		case 5:
			user.Profile = &CustomerProfile{Email: fields[4]}
		case 6:
			user.Profile = &CustomerProfile{Email: fields[4], Phone: fields[5]}
		default:
			return User{}, malformed("customer %s: expected 5 or 6 fields, got %d", user.ID, len(fields))
		}
	default:
		return User{}, malformed("user %s: unknown role %q", user.ID, user.Role)
	}

	return user, nil
}
