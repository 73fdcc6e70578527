package types

import "time"

// Role of a user within a household.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Invite lifecycle states.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteExpired  InviteStatus = "expired"
	InviteRevoked  InviteStatus = "revoked"
)

// InviteTTL bounds how long a pending invite stays acceptable.
const InviteTTL = 7 * 24 * time.Hour

// MaxHouseholdNameLength bounds the household name.
const MaxHouseholdNameLength = 100

// Household is the tenant boundary. Every item, location, search and
// export is scoped to exactly one household.
type Household struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Membership ties a user to a household. A user holds at most one
// active membership; a revoked row is kept so the caller can be told
// "revoked" rather than "never belonged".
type Membership struct {
	ID          string     `json:"id"`
	HouseholdID string     `json:"household_id"`
	UserID      string     `json:"user_id"`
	Role        Role       `json:"role"`
	Active      bool       `json:"active"`
	JoinedAt    time.Time  `json:"joined_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

// Member is the list view of a membership joined with its user.
type Member struct {
	UserID   string    `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     Role      `json:"role"`
	Active   bool      `json:"active"`
	JoinedAt time.Time `json:"joined_at"`
}

// Invite is a pending email invitation into a household.
type Invite struct {
	ID          string       `json:"id"`
	HouseholdID string       `json:"household_id"`
	Email       string       `json:"email"`
	Token       string       `json:"-"`
	InvitedBy   string       `json:"invited_by"`
	Status      InviteStatus `json:"status"`
	ExpiresAt   time.Time    `json:"expires_at"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Expired reports whether the invite window has passed.
func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
