package usersvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkrupp/homecase-shop/internal/domain"
	"github.com/mkrupp/homecase-shop/internal/infra/logging"
	"github.com/mkrupp/homecase-shop/internal/paging"
	"github.com/mkrupp/homecase-shop/internal/repo/record"
	"github.com/mkrupp/homecase-shop/internal/util/idgen"
	"github.com/mkrupp/homecase-shop/internal/util/validation"
)

// Profile attributes accepted by UpdateProfile.
const (
	AttributeName     = "name"
	AttributePassword = "password"
	AttributeEmail    = "email"
	AttributePhone    = "phone"
)

//nolint:gochecknoglobals
var attributeAliases = map[string]string{
	"name":     AttributeName,
	"username": AttributeName,
	"password": AttributePassword,
	"email":    AttributeEmail,
	"phone":    AttributePhone,
	"mobile":   AttributePhone,
}

// Registration holds the values a new customer signs up with.
type Registration struct {
	Name     string `validate:"required,username"`
	Password string `validate:"required,password"`
	Email    string `validate:"required,email,nodelim"`
	Phone    string `validate:"omitempty,phone"`
}

// UserService registers, authenticates and manages users.
type UserService struct {
	Users    *record.Store[domain.User]
	Log      logging.Logger
	Validate *validation.Validator
}

// NewUserService creates a UserService on top of the given users store.
func NewUserService(users *record.Store[domain.User]) *UserService {
	return &UserService{
		Users:    users,
		Log:      logging.GetLogger("svc.usersvc.user_service"),
		Validate: validation.New(),
	}
}

// Register creates a customer account.
// Returns domain.ErrInvalidInput if a value fails validation and
// domain.ErrUserAlreadyExists if the name is taken.
func (s *UserService) Register(ctx context.Context, reg Registration) (user domain.User, err error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Phone = strings.TrimSpace(reg.Phone)

	log := s.Log.With(logging.Group("user", "name", reg.Name))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register customer failed", "error", err)
		} else {
			log.InfoContext(ctx, "customer registered", "id", user.ID)
		}
	}()

	if err := s.Validate.Struct(reg); err != nil {
		return domain.User{}, err
	}

	if _, ok := s.findByName(reg.Name); ok {
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUserAlreadyExists, reg.Name)
	}

	id, err := s.Users.NextID(idgen.Users)
	if err != nil {
		return domain.User{}, err
	}

	user = domain.NewCustomer(id, reg.Name, reg.Password, reg.Email, reg.Phone)

	if err := s.Users.Add(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("add user: %w", err)
	}

	return user, nil
}

// Login returns the user with the given name and password.
// Returns domain.ErrInvalidCredentials for an unknown name and for a wrong password.
func (s *UserService) Login(ctx context.Context, name, password string) (user domain.User, err error) {
	log := s.Log.With(logging.Group("user", "name", name))

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "login failed", "error", err)
		} else {
			log.InfoContext(ctx, "login successful", "id", user.ID, "role", user.Role)
		}
	}()

	user, ok := s.findByName(strings.TrimSpace(name))
	if !ok {
		return domain.User{}, errors.Join(domain.ErrInvalidCredentials, domain.ErrUserNotFound)
	}

	if !user.CheckPassword(password) {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	return user, nil
}

// Get returns the user with the given ID.
func (s *UserService) Get(_ context.Context, id string) (domain.User, error) {
	user, ok := s.Users.Get(id)
	if !ok {
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}

	return user, nil
}

// Customers returns every customer in store order.
func (s *UserService) Customers(_ context.Context) []domain.User {
	return s.Users.Filter(domain.User.IsCustomer)
}

// ListCustomers returns one page of customers.
func (s *UserService) ListCustomers(ctx context.Context, page int) (paging.Page[domain.User], error) {
	result, err := paging.Paginate(s.Customers(ctx), page)
	if err != nil {
		return paging.Page[domain.User]{}, fmt.Errorf("paginate: %w", err)
	}

	return result, nil
}

// SearchCustomers returns the customers whose name contains keyword, ignoring case.
func (s *UserService) SearchCustomers(ctx context.Context, keyword string) []domain.User {
	return paging.FilterByKeyword(s.Customers(ctx), strings.TrimSpace(keyword), domain.User.DisplayName)
}

// UpdateProfile sets one attribute of a customer: name, password, email or phone.
// The value is validated with the rules of Register.
func (s *UserService) UpdateProfile(
	ctx context.Context,
	id string,
	attribute string,
	value string,
) (user domain.User, err error) {
	log := s.Log.With(logging.Group("user", "id", id, "attribute", attribute))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update profile failed", "error", err)
		} else {
			log.InfoContext(ctx, "profile updated")
		}
	}()

	attr, ok := attributeAliases[strings.ToLower(strings.TrimSpace(attribute))]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: unknown attribute %q", domain.ErrInvalidInput, attribute)
	}

	if attr != AttributePassword {
		value = strings.TrimSpace(value)
	}

	if err := s.validateAttribute(attr, value); err != nil {
		return domain.User{}, err
	}

	if attr == AttributeName {
		if other, ok := s.findByName(value); ok && other.ID != id {
			return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUserAlreadyExists, value)
		}
	}

	err = s.Users.Update(ctx, id, func(u *domain.User) error {
		if !u.IsCustomer() {
			return fmt.Errorf("%w: %s", domain.ErrNotACustomer, id)
		}

		switch attr {
		case AttributeName:
			u.Name = value
		case AttributePassword:
			u.SetPassword(value)
		case AttributeEmail:
			u.Profile.Email = value
		case AttributePhone:
			u.Profile.Phone = value
		}

		user = *u

		return nil
	})
	if errors.Is(err, record.ErrNotFound) {
		return domain.User{}, errors.Join(domain.ErrUserNotFound, err)
	} else if err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

func (s *UserService) validateAttribute(attr, value string) error {
	switch attr {
	case AttributeName:
		return s.Validate.Var(attr, value, "required,username")
	case AttributePassword:
		return s.Validate.Var(attr, value, "required,password")
	case AttributeEmail:
		return s.Validate.Var(attr, value, "required,email,nodelim")
	case AttributePhone:
		return s.Validate.Var(attr, value, "omitempty,phone")
	default:
		return fmt.Errorf("%w: unknown attribute %q", domain.ErrInvalidInput, attr)
	}
}

// DeleteCustomer removes the customer with the given ID. Admins cannot be deleted.
func (s *UserService) DeleteCustomer(ctx context.Context, id string) (err error) {
	log := s.Log.With(logging.Group("user", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "delete customer failed", "error", err)
		} else {
			log.InfoContext(ctx, "customer deleted")
		}
	}()

	user, ok := s.Users.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}

	if !user.IsCustomer() {
		return fmt.Errorf("%w: %s", domain.ErrNotACustomer, id)
	}

	if err := s.Users.RemoveByID(ctx, id); err != nil {
		return fmt.Errorf("remove user: %w", err)
	}

	return nil
}

// DeleteAllCustomers removes every customer and keeps the admins.
// Returns the number of removed customers.
func (s *UserService) DeleteAllCustomers(ctx context.Context) (removed int, err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "delete all customers failed", "error", err)
		} else {
			s.Log.InfoContext(ctx, "all customers deleted", "removed", removed)
		}
	}()

	removed, err = s.Users.Remove(ctx, domain.User.IsCustomer)
	if err != nil {
		return 0, fmt.Errorf("remove users: %w", err)
	}

	return removed, nil
}

// Close releases the users store.
func (s *UserService) Close() error {
	if err := s.Users.Close(); err != nil {
		return fmt.Errorf("close users store: %w", err)
	}

	return nil
}

func (s *UserService) findByName(name string) (domain.User, bool) {
	return s.Users.Find(func(u domain.User) bool {
		return u.Name == name
	})
}
