package models

import "time"

// Role is the closed set of marketplace roles.
type Role string

const (
	RoleBuyer       Role = "buyer"
	RoleFarmer      Role = "farmer"
	RoleTransporter Role = "transporter"
	RoleAdmin       Role = "admin"
)

// ParseRole converts a raw role string into a Role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleBuyer, RoleFarmer, RoleTransporter, RoleAdmin:
		return r, true
	}
	return "", false
}

// User represents a user of the marketplace.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" bson:"username" validate:"required,min=3,max=100"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" bson:"email" validate:"required,email"`
	Phone     string    `json:"phone" gorm:"type:varchar(32)" bson:"phone" validate:"omitempty,max=32"`
	Password  string    `json:"-" gorm:"type:varchar(255)" bson:"password"`
	Role      Role      `json:"role" gorm:"type:varchar(20);index" bson:"role"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Contact returns the notification contact for the user.
func (u *User) Contact() Contact {
	return Contact{UserID: u.ID, Name: u.Username, Email: u.Email, Phone: u.Phone}
}

// Contact is who a notification is addressed to.
type Contact struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	ID   string
	Role Role
}

func (p Principal) Is(role Role) bool {
	return p.Role == role
}
