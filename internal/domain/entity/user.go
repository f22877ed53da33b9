package entity

import (
	"time"
)

type Role string

const (
	RoleTenant Role = "Tenant"
	RoleOwner  Role = "Owner"
	RoleStaff  Role = "Staff"
	RoleAdmin  Role = "Admin"
)

type User struct {
	Username  string  `json:"username" firestore:"username"`
	FullName  string  `json:"full_name,omitempty" firestore:"fullName,omitempty"`
	Email     string  `json:"email,omitempty" firestore:"email,omitempty"`
	Role      Role    `json:"role" firestore:"role"`
	CompanyID string  `json:"company_id,omitempty" firestore:"companyId,omitempty"`
	Balance   float64 `json:"balance" firestore:"balance"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// IsCompanySide reports whether the user acts on behalf of a company
// (and therefore chats under the company's participant id).
func (u *User) IsCompanySide() bool {
	return u.Role == RoleOwner || u.Role == RoleStaff
}
