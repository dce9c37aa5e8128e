package models

import "time"

// User is a researcher provisioned from an approved registration.
// Password is the issued shared secret and is stored as-is.
type User struct {
	Email           string    `json:"email"`
	Password        string    `json:"-"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Affiliation     string    `json:"affiliation"`
	Project         string    `json:"project"`
	Phone           string    `json:"phone"`
	CredentialsSent int       `json:"credentials_sent"`
	CreatedAt       time.Time `json:"created_at"`
}

// UserFromRegistration builds the user row created when a registration is approved.
func UserFromRegistration(reg *Registration, password string) *User {
	return &User{
		Email:       reg.Email,
		Password:    password,
		FirstName:   reg.FirstName,
		LastName:    reg.LastName,
		Affiliation: reg.Affiliation,
		Project:     reg.Project,
		Phone:       reg.Phone,
	}
}
