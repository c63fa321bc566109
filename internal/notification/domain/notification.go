package domain

import "time"

// Notification adalah pesan in-app per user. Pengiriman bersifat
// fire-and-forget: kegagalan tulis tidak boleh menggagalkan operasi
// yang memicunya.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	OrderID   *string   `json:"order_id,omitempty"`
	Message   string    `json:"message"`
	Link      *string   `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
