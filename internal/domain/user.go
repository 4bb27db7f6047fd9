package domain

import "time"

const (
	RoleFarmer = "farmer"
	RoleBuyer  = "buyer"
)

// User is a marketplace account; farmers own products, buyers pay for them.
type User struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `gorm:"size:200" json:"name" form:"name"`
	Email     string    `gorm:"size:200;uniqueIndex" json:"email" form:"email"`
	Password  string    `gorm:"size:200" json:"-" form:"-"`
	Role      string    `gorm:"size:16;index" json:"role" form:"role"`
	Location  string    `gorm:"size:200" json:"location" form:"location"`
	Phone     string    `gorm:"size:32" json:"phone" form:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (User) TableName() string {
	return "sys_user"
}

// Payment is a stub payment record; no money moves.
type Payment struct {
	ID        int64     `json:"id,string"`
	Reference string    `gorm:"size:32;uniqueIndex" json:"reference"`
	ProductID int64     `gorm:"index" json:"product_id,string"`
	BuyerID   int64     `gorm:"index" json:"buyer_id,string"`
	Amount    float64   `json:"amount"`
	Status    string    `gorm:"size:16" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (Payment) TableName() string {
	return "payment"
}

// Viewer is the per-request identity taken from the session.
// The zero value is an anonymous visitor.
type Viewer struct {
	UserID int64
	Name   string
	Role   string
}

func (v Viewer) Authenticated() bool {
	return v.UserID != 0
}

func (v Viewer) IsFarmer() bool {
	return v.Authenticated() && v.Role == RoleFarmer
}

func (v Viewer) IsBuyer() bool {
	return v.Authenticated() && v.Role == RoleBuyer
}
