package models

import "time"

// DefaultStatus is the status every new user starts with.
const DefaultStatus = "I am new!"

// User represents a registered account. Password holds the bcrypt hash and is
// never serialized to clients.
type User struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Posts     []string  `json:"posts"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Post represents a feed entry. Creator is not stored; the feed service
// resolves it from CreatorID.
type Post struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl"`
	CreatorID string    `json:"-"`
	Creator   *User     `json:"creator"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreatorSummary is the short creator form returned after creating a post.
type CreatorSummary struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}
