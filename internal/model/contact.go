package model

import "time"

// Contact holds reachability details. Social links are nil when never set
// and "" when explicitly cleared.
type Contact struct {
	ID               string    `db:"id" json:"id"`
	CreatedByID      string    `db:"created_by_id" json:"createdById"`
	Email            string    `db:"email" json:"email"`
	Phone            string    `db:"phone" json:"phone"`
	Location         string    `db:"location" json:"location"`
	GitHub           *string   `db:"github" json:"github"`
	LinkedIn         *string   `db:"linkedin" json:"linkedin"`
	Twitter          *string   `db:"twitter" json:"twitter"`
	Website          *string   `db:"website" json:"website"`
	OpenToRelocation bool      `db:"open_to_relocation" json:"openToRelocation"`
	AvailableForWork bool      `db:"available_for_work" json:"availableForWork"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}
