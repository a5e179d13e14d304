package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user may register with
const (
	RoleUser      = "user"
	RolePublisher = "publisher"
)

// User represents a user in the system
type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name                string             `bson:"name" json:"name" validate:"required"`
	Email               string             `bson:"email" json:"email" validate:"required,mailbox"`
	Role                string             `bson:"role" json:"role" validate:"oneof=user publisher"`
	Password            string             `bson:"password" json:"-" validate:"required,min=6"`
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire *time.Time         `bson:"resetPasswordExpire,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
}

func (User) ValidationMessages() map[string]string {
	return map[string]string{
		"Name.required":     "Please add a name",
		"Email.required":    "Please add an email",
		"Email.mailbox":     "Please add a valid email",
		"Role.oneof":        "Role must be user or publisher",
		"Password.required": "Please add a password",
		"Password.min":      "Password must be at least 6 characters",
	}
}
