package model

import "time"

// MessageSourcePortfolio tags messages submitted through the public site.
const MessageSourcePortfolio = "PORTFOLIO"

type ContactMessage struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Subject   *string   `db:"subject" json:"subject"`
	Message   string    `db:"message" json:"message"`
	Source    string    `db:"source" json:"source"`
	Read      bool      `db:"is_read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
