package repositories

import "socialfeed/app/models"

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

// PostRepository defines the interface for post data access. Create and Delete
// maintain the creator's post list in the same unit of work as the post itself.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id string) (*models.Post, error)
	List(limit, offset int) ([]*models.Post, error)
	Count() (int, error)
	Update(post *models.Post) error
	Delete(id string) error
}
