package models

import (
	"errors"
	"slices"
	"time"
)

// BeforeCreate fills defaults for a new user.
func (u *User) BeforeCreate() {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.Status == "" {
		u.Status = DefaultStatus
	}
	if u.Posts == nil {
		u.Posts = []string{}
	}
}

// AddPost appends a post reference to the user's owned posts.
func (u *User) AddPost(postID string) error {
	if postID == "" {
		return errors.New("post id cannot be empty")
	}
	if slices.Contains(u.Posts, postID) {
		return nil
	}
	u.Posts = append(u.Posts, postID)
	return nil
}

// RemovePost drops a post reference; missing references are ignored.
func (u *User) RemovePost(postID string) {
	u.Posts = slices.DeleteFunc(u.Posts, func(id string) bool { return id == postID })
}

// Summary returns the short creator form.
func (u *User) Summary() CreatorSummary {
	return CreatorSummary{ID: u.ID, Name: u.Name}
}
