package entity

import (
	"time"
)

type Company struct {
	ID             string   `json:"id" firestore:"id"`
	Name           string   `json:"name" firestore:"name"`
	OwnerUsername  string   `json:"owner_username" firestore:"ownerUsername"`
	StaffUsernames []string `json:"staff_usernames" firestore:"staffUsernames"`
	Balance        float64  `json:"balance" firestore:"balance"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// MemberUsernames returns the owner plus staff, de-duplicated. Used to
// fan out chat and booking events to every individual behind a company.
func (c *Company) MemberUsernames() []string {
	seen := map[string]bool{}
	var members []string
	for _, u := range append([]string{c.OwnerUsername}, c.StaffUsernames...) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		members = append(members, u)
	}
	return members
}
