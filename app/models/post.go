package models

import (
	"errors"
	"time"
)

// BeforeCreate sets up timestamps before creation
func (p *Post) BeforeCreate() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// IsOwnedBy reports whether userID created the post.
func (p *Post) IsOwnedBy(userID string) bool {
	return userID != "" && p.CreatorID == userID
}

// SetCreator attaches the resolved creator.
func (p *Post) SetCreator(user *User) error {
	if user == nil {
		return errors.New("creator cannot be nil")
	}
	if user.ID != p.CreatorID {
		return errors.New("creator does not match post")
	}
	p.Creator = user
	return nil
}
