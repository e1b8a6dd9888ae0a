package domain

import (
	"net/mail"
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer Role = "Customer"
	RoleAdmin    Role = "Admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

type User struct {
	ID           int64     `db:"user_id" json:"id"`
	FirstName    string    `db:"first_name" json:"firstName"`
	LastName     string    `db:"last_name" json:"lastName"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	PhoneNumber  string    `db:"phone_number" json:"phoneNumber"`
	Address      string    `db:"address" json:"address"`
	City         string    `db:"city" json:"city"`
	State        string    `db:"state" json:"state"`
	ZipCode      string    `db:"zip_code" json:"zipCode"`
	Country      string    `db:"country" json:"country"`
	Role         Role      `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int64
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// NormalizeEmail is the form emails are stored and compared in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RegisterRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
}

func (r *RegisterRequest) Validate() error {
	if err := requireLength("First name", r.FirstName, 50); err != nil {
		return err
	}
	if err := requireLength("Last name", r.LastName, 50); err != nil {
		return err
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if len(r.Password) < 6 || len(r.Password) > 100 {
		return Validationf("Password must be between 6 and 100 characters.")
	}
	return maxLength("Phone number", r.PhoneNumber, 20)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return Validationf("Password is required.")
	}
	return nil
}

type UpdateProfileRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zipCode"`
	Country     string `json:"country"`
}

func (r *UpdateProfileRequest) Validate() error {
	if err := requireLength("First name", r.FirstName, 50); err != nil {
		return err
	}
	if err := requireLength("Last name", r.LastName, 50); err != nil {
		return err
	}
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"Phone number", r.PhoneNumber, 20},
		{"Address", r.Address, 200},
		{"City", r.City, 50},
		{"State", r.State, 50},
		{"Zip code", r.ZipCode, 20},
		{"Country", r.Country, 50},
	} {
		if err := maxLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}
	return nil
}

// Apply copies the editable profile fields onto u.
func (r *UpdateProfileRequest) Apply(u *User) {
	u.FirstName = strings.TrimSpace(r.FirstName)
	u.LastName = strings.TrimSpace(r.LastName)
	u.PhoneNumber = r.PhoneNumber
	u.Address = r.Address
	u.City = r.City
	u.State = r.State
	u.ZipCode = r.ZipCode
	u.Country = r.Country
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" {
		return Validationf("Current password is required.")
	}
	if len(r.NewPassword) < 6 || len(r.NewPassword) > 100 {
		return Validationf("Password must be between 6 and 100 characters.")
	}
	return nil
}

type UserQuery struct {
	Search   string
	Role     Role
	Page     int
	PageSize int
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return Validationf("Email is required.")
	}
	if len(email) > 100 {
		return Validationf("Email must not exceed 100 characters.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Validationf("Email is not a valid address.")
	}
	return nil
}

func requireLength(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return Validationf("%s is required.", field)
	}
	return maxLength(field, value, max)
}

func maxLength(field, value string, max int) error {
	if len([]rune(value)) > max {
		return Validationf("%s must not exceed %d characters.", field, max)
	}
	return nil
}
