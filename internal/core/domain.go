package core

import (
	"strings"
	"time"
)

// DefaultMemberPhoto is the placeholder avatar used when a member is created
// without a photo reference.
const DefaultMemberPhoto = "https://iili.io/JxpKsce.png"

type (
	// Member is a dues-paying member of the organization. The ID is immutable
	// once assigned; name, phone, photo and active are admin-mutable.
	Member struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Phone     string    `json:"phone,omitempty"`
		Photo     string    `json:"photo"`
		Active    bool      `json:"active"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// MemberRef is the subset of member data embedded in payment reads.
	MemberRef struct {
		ID    string `json:"id"`
		Name  string `json:"name,omitempty"`
		Phone string `json:"phone,omitempty"`
	}

	// Payment records a member's dues for one week of one year. The triple
	// (member, weekNumber, year) is unique: recording again for the same key
	// replaces the earlier payment.
	Payment struct {
		ID         string    `json:"id"`
		Member     MemberRef `json:"member"`
		Amount     int64     `json:"amount"`
		WeekNumber int       `json:"weekNumber"`
		Year       int       `json:"year"`
		CreatedAt  time.Time `json:"createdAt"`
	}

	// Expense is an outgoing amount. CreatedAt doubles as the attribution date
	// for week bucketing.
	Expense struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Amount      int64     `json:"amount"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// Donation is an incoming amount from a named donor.
	Donation struct {
		ID        string    `json:"id"`
		DonorName string    `json:"donorName"`
		Amount    int64     `json:"amount"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// User is an admin account that can authenticate against the API.
	User struct {
		ID           string    `json:"id"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		Role         string    `json:"role"`
		CreatedAt    time.Time `json:"createdAt"`
	}
)

func (m Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return NewValidationError("name", "required")
	}
	if strings.TrimSpace(m.Phone) == "" {
		return NewValidationError("phone", "required")
	}
	return nil
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.Member.ID) == "" {
		return NewValidationError("member", "required")
	}
	if p.Amount <= 0 {
		return NewValidationError("amount", "must be positive")
	}
	if p.WeekNumber < 1 {
		return NewValidationError("weekNumber", "must be at least 1")
	}
	if p.Year < 1000 || p.Year > 9999 {
		return NewValidationError("year", "must be a four-digit year")
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return NewValidationError("description", "required")
	}
	if len(e.Description) > 200 {
		return NewValidationError("description", "too long (max 200 characters)")
	}
	if e.Amount <= 0 {
		return NewValidationError("amount", "must be positive")
	}
	return nil
}

func (d Donation) Validate() error {
	if strings.TrimSpace(d.DonorName) == "" {
		return NewValidationError("donorName", "required")
	}
	if d.Amount <= 0 {
		return NewValidationError("amount", "must be positive")
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return NewValidationError("email", "required")
	}
	if u.PasswordHash == "" {
		return NewValidationError("password", "required")
	}
	return nil
}
