package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User is the account record. TotalEarnings and TotalWasteCollected are only
// ever changed by the completion credit of a waste request.
type User struct {
	ID                  primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                string             `json:"name" bson:"name"`
	Email               string             `json:"email" bson:"email"`
	Phone               string             `json:"phone" bson:"phone"`
	Password            string             `json:"-" bson:"password"`
	Role                UserRole           `json:"role" bson:"role"`
	TotalEarnings       float64            `json:"totalEarnings" bson:"total_earnings"`
	TotalWasteCollected float64            `json:"totalWasteCollected" bson:"total_waste_collected"`
	CreatedAt           time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// Summary is the owner projection attached to waste requests.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
	}
}

type UserSummary struct {
	ID    primitive.ObjectID `json:"id" bson:"_id"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email,omitempty" bson:"email,omitempty"`
	Phone string             `json:"phone,omitempty" bson:"phone,omitempty"`
}

// Identity is the resolved caller of a request. A nil *Identity is an
// anonymous caller.
type Identity struct {
	UserID primitive.ObjectID
	Role   UserRole
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == UserRoleAdmin
}

// Owns reports whether the caller is the given owner. A nil owner is never
// owned by anyone.
func (i *Identity) Owns(owner *primitive.ObjectID) bool {
	return i != nil && owner != nil && *owner == i.UserID
}
