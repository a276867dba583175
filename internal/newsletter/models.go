package newsletter

import "time"

type Subscriber struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name,omitempty"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

type JoinRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"required,email"`
}
