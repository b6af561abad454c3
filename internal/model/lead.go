package model

import (
	"time"
)

// Lead is a contact-form submission forwarded to the data service.
// Full validation is owned by the data service's row-level rules.
type Lead struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Company   *string   `db:"company" json:"company,omitempty"`
	Message   string    `db:"message" json:"message"`
	Source    *string   `db:"source" json:"source,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CreateLeadParams struct {
	Name    string
	Email   string
	Company *string
	Message string
	Source  *string
}
