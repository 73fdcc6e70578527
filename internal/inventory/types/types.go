package types

import "time"

// Item lifecycle states.
const (
	StatusActive    = "active"
	StatusLent      = "lent"
	StatusInRepair  = "in_repair"
	StatusSold      = "sold"
	StatusDiscarded = "discarded"
)

// ValidStatuses enumerates the accepted item states.
var ValidStatuses = []string{StatusActive, StatusLent, StatusInRepair, StatusSold, StatusDiscarded}

// Item field bounds.
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 5000
	MaxTags              = 20
	MaxTagLength         = 50

	MaxPhotoSize = 10 << 20 // bytes
)

// Location tree bound.
const MaxLocationDepth = 5

// Item is one possession tracked by a household.
type Item struct {
	ID           string     `json:"id"`
	HouseholdID  string     `json:"household_id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Quantity     int        `json:"quantity"`
	Value        float64    `json:"value"`
	Status       string     `json:"status"`
	Tags         []string   `json:"tags,omitempty"`
	LocationID   string     `json:"location_id,omitempty"`
	PhotoKey     string     `json:"photo_key,omitempty"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Location is one node of a household's storage tree, e.g.
// Garage > Shelf B > Blue Box.
type Location struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"household_id"`
	Name        string    `json:"name"`
	ParentID    string    `json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemFilter narrows ListItems.
type ItemFilter struct {
	LocationID string
	Status     string
	Limit      int
	Offset     int
}

// ValidStatus reports whether s is an accepted item state.
func ValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}
