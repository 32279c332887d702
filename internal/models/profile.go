package models

// Profile is a signed-in user's details, shown on the profile page and used
// to pre-fill checkout. Name and email come from the user account, the rest
// from the profile row.
type Profile struct {
	UserID             int64  `json:"user_id"`
	FirstName          string `json:"first_name" binding:"max=150"`
	LastName           string `json:"last_name" binding:"max=150"`
	Email              string `json:"email" binding:"omitempty,email,max=254"`
	CompanyName        string `json:"company_name" binding:"max=255"`
	RegistrationNumber string `json:"registration_number" binding:"max=50"`
	VATNumber          string `json:"vat_number" binding:"max=50"`
	Address            string `json:"address" binding:"max=255"`
	Phone              string `json:"phone_number" binding:"max=30"`
}

// User is the account record the auth gateway provisions.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Email     string `json:"email" binding:"omitempty,email,max=254"`
}
