package models

import (
	"io"
	"strings"
)

// SignupInput is the body of PUT /auth/signup.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5"`
	Name     string `json:"name" validate:"required,min=5"`
}

// Normalize trims fields and lower-cases the email.
func (in *SignupInput) Normalize() {
	in.Email = NormalizeEmail(in.Email)
	in.Password = strings.TrimSpace(in.Password)
	in.Name = strings.TrimSpace(in.Name)
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize applies the same normalization as signup.
func (in *LoginInput) Normalize() {
	in.Email = NormalizeEmail(in.Email)
	in.Password = strings.TrimSpace(in.Password)
}

// StatusInput is the body of PATCH /auth/status.
type StatusInput struct {
	Status *string `json:"status"`
}

// PostInput carries the text fields of a post create or update.
type PostInput struct {
	Title   string `json:"title" validate:"required,min=5"`
	Content string `json:"content" validate:"required,min=5"`
}

// Normalize trims surrounding whitespace.
func (in *PostInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
}

// ImageUpload is a file from a multipart request. ContentType is what the
// client declared; acceptance is decided by sniffing Reader.
type ImageUpload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
