package domain

import "time"

// Coupon grants a prepaid session pack when redeemed. Codes are unique;
// each user may redeem a given coupon once.
type Coupon struct {
	ID             int32      `json:"id"`
	Code           string     `json:"code"`
	Sessions       int32      `json:"sessions"`
	MaxRedemptions int32      `json:"max_redemptions"` // 0 = unlimited
	Redeemed       int32      `json:"redeemed"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedOn      time.Time  `json:"created_on"`
}
