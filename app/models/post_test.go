package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostBeforeCreate(t *testing.T) {
	post := &Post{
		Title:   "Test Post",
		Content: "Test Content",
	}

	assert.True(t, post.CreatedAt.IsZero())
	post.BeforeCreate()
	assert.False(t, post.CreatedAt.IsZero())
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)
}

func TestPostIsOwnedBy(t *testing.T) {
	post := &Post{ID: "p1", CreatorID: "u1"}

	assert.True(t, post.IsOwnedBy("u1"))
	assert.False(t, post.IsOwnedBy("u2"))
	assert.False(t, post.IsOwnedBy(""))
}

func TestPostSetCreator(t *testing.T) {
	post := &Post{ID: "p1", CreatorID: "u1"}

	t.Run("matching creator", func(t *testing.T) {
		user := &User{ID: "u1", Name: "Alice"}
		assert.NoError(t, post.SetCreator(user))
		assert.Same(t, user, post.Creator)
	})

	t.Run("nil creator", func(t *testing.T) {
		assert.Error(t, post.SetCreator(nil))
	})

	t.Run("other user", func(t *testing.T) {
		assert.Error(t, post.SetCreator(&User{ID: "u2"}))
	})
}

func TestPostInputNormalize(t *testing.T) {
	in := PostInput{Title: "  Hello world ", Content: "\tsome content\n"}
	in.Normalize()

	assert.Equal(t, "Hello world", in.Title)
	assert.Equal(t, "some content", in.Content)
}
