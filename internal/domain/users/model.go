package users

import "time"

type Role string

const (
	RoleBroker Role = "broker"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool { return r == RoleBroker || r == RoleAdmin }

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
