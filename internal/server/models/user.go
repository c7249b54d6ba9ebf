// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a stored account. Username and ID are unique; ID is a random UUID
// and is never reused.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"isAdmin"`
	Profile
	CreatedAt time.Time `json:"createdAt"`
}

// Profile holds the employee attributes of an account. All of them are
// optional at self-registration.
type Profile struct {
	FirstName        string     `json:"firstName,omitempty"`
	LastName         string     `json:"lastName,omitempty"`
	JobTitle         string     `json:"jobTitle,omitempty"`
	Department       string     `json:"department,omitempty"`
	Email            string     `json:"email,omitempty"`
	PhoneNumber      string     `json:"phoneNumber,omitempty"`
	HireDate         *time.Time `json:"hireDate,omitempty"`
	Salary           *int64     `json:"salary,omitempty"`
	DateOfBirth      *time.Time `json:"dateOfBirth,omitempty"`
	Gender           string     `json:"gender,omitempty"`
	Address          string     `json:"address,omitempty"`
	EmploymentStatus string     `json:"employmentStatus,omitempty"`
}
