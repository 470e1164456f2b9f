package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string             `bson:"email" json:"email" validate:"required,email"`
	PasswordHash string             `bson:"password_hash" json:"-"`

	Name         string `bson:"name" json:"name" validate:"required,min=2,max=100"`
	Organization string `bson:"organization,omitempty" json:"organization,omitempty"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty" validate:"omitempty,min=7,max=20"`

	Role       string `bson:"role" json:"role"`
	IsVerified bool   `bson:"is_verified" json:"is_verified"`
	IsBlocked  bool   `bson:"is_blocked" json:"is_blocked"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
}

func (u *User) RoleValue() UserRole {
	return UserRole(u.Role)
}
