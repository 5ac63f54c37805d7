package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the account role used for authorization decisions.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleProducer  Role = "producer"
	RoleManager   Role = "manager"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r can be stored on an account.
func (r Role) Valid() bool {
	switch r {
	case RoleProducer, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User is a login account. PasswordHash never leaves the service layer.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FullName returns "First Last", falling back to the username.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

// Producer is the farming profile attached one-to-one to a user.
type Producer struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"userId"`
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone"`
	DistrictID   *int64    `json:"districtId,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
	Active       bool      `json:"active"`
}

// MinParcelArea is the smallest accepted parcel area in hectares.
var MinParcelArea = decimal.RequireFromString("0.01")

// Parcel is a plot of land owned by one producer and located in one district.
type Parcel struct {
	ID           int64           `json:"id"`
	ProducerID   int64           `json:"producerId"`
	ProducerName string          `json:"producerName,omitempty"`
	DistrictID   int64           `json:"districtId"`
	DistrictName string          `json:"districtName"`
	Name         string          `json:"name"`
	Area         decimal.Decimal `json:"area"`
	Location     *GeoPoint       `json:"location,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}
