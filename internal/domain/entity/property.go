package entity

import (
	"time"
)

type Property struct {
	ID           string  `json:"id" firestore:"id"`
	CompanyID    string  `json:"company_id" firestore:"companyId"`
	Title        string  `json:"title" firestore:"title"`
	Address      string  `json:"address,omitempty" firestore:"address,omitempty"`
	MonthlyPrice float64 `json:"monthly_price" firestore:"monthlyPrice"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
