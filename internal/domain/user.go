package domain

import "time"

type User struct {
	ID      int32  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Blocked bool   `json:"blocked"`
	// ExternalCustomerRef is the billing provider's customer id, set the
	// first time the user subscribes.
	ExternalCustomerRef string    `json:"external_customer_ref"`
	CreatedOn           time.Time `json:"created_on"`
	UpdatedOn           time.Time `json:"updated_on"`
}
