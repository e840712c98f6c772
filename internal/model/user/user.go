package user

import "time"

// User is a registered account. PasswordHash only ever holds the bcrypt
// digest; the clear-text password never leaves the account service.
type User struct {
	ID           string    `json:"-" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `json:"-" bson:"createdAt"`
	UpdatedAt    time.Time `json:"-" bson:"updatedAt"`
}

// Public is the shape echoed to clients after register/login/verify.
type Public struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public projects the user for API responses.
func (u User) Public() Public {
	return Public{Username: u.Username, Email: u.Email}
}
