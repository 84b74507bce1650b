package directory

import "time"

// Asset mirrors the asset directory's representation of a physical asset.
// All fields except the identifier are pointers so a degraded lookup can
// keep the id while leaving the rest null. The id stays a string so a
// placeholder can echo back whatever identifier the order carries.
type Asset struct {
	ID        string     `json:"id"`
	Name      *string    `json:"name"`
	Type      *string    `json:"type"`
	Status    *string    `json:"status"`
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// User mirrors the user directory's representation of an operator account.
type User struct {
	ID        string     `json:"id"`
	Username  *string    `json:"username"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	Email     *string    `json:"email"`
	Inactive  bool       `json:"inactive"`
	CreatedAt *time.Time `json:"created_at"`
	Roles     []string   `json:"roles"`
}
