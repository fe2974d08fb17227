package mock

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"socialfeed/app/models"
	"socialfeed/app/repositories"
)

// UserRepository is an in-memory repositories.UserRepository.
type UserRepository struct {
	users  map[string]*models.User
	emails map[string]string
	nextID int
	mutex  sync.RWMutex
}

// PostRepository is an in-memory repositories.PostRepository. It keeps the
// creator's post list in the linked UserRepository. The *Err fields make the
// matching operation fail once set.
type PostRepository struct {
	users  *UserRepository
	posts  map[string]*models.Post
	order  []string
	nextID int
	mutex  sync.RWMutex

	CreateErr error
	UpdateErr error
	DeleteErr error
}

var (
	_ repositories.UserRepository = (*UserRepository)(nil)
	_ repositories.PostRepository = (*PostRepository)(nil)
)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[string]*models.User),
		emails: make(map[string]string),
		nextID: 1,
	}
}

func NewPostRepository(users *UserRepository) *PostRepository {
	return &PostRepository{
		users:  users,
		posts:  make(map[string]*models.Post),
		nextID: 1,
	}
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Posts = slices.Clone(u.Posts)
	if c.Posts == nil {
		c.Posts = []string{}
	}
	return &c
}

func copyPost(p *models.Post) *models.Post {
	c := *p
	c.Creator = nil
	return &c
}

// UserRepository implementation
func (m *UserRepository) Create(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, taken := m.emails[user.Email]; taken {
		return repositories.ErrDuplicateEmail
	}
	user.ID = fmt.Sprintf("user-%04d", m.nextID)
	m.nextID++
	user.BeforeCreate()
	m.users[user.ID] = copyUser(user)
	m.emails[user.Email] = user.ID
	return nil
}

func (m *UserRepository) GetByID(id string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return copyUser(user), nil
}

func (m *UserRepository) GetByEmail(email string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	id, exists := m.emails[email]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return copyUser(m.users[id]), nil
}

func (m *UserRepository) Update(user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, exists := m.users[user.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	if existing.Email != user.Email {
		return fmt.Errorf("email of user %s cannot change", user.ID)
	}
	existing.Name = user.Name
	existing.Password = user.Password
	existing.Status = user.Status
	existing.UpdatedAt = time.Now()

	stored := copyUser(existing)
	user.Posts = stored.Posts
	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *UserRepository) addPost(userID, postID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	user, exists := m.users[userID]
	if !exists {
		return repositories.ErrCreatorNotFound
	}
	return user.AddPost(postID)
}

func (m *UserRepository) removePost(userID, postID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if user, exists := m.users[userID]; exists {
		user.RemovePost(postID)
	}
}

// PostRepository implementation
func (m *PostRepository) Create(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.CreateErr != nil {
		return m.CreateErr
	}

	id := fmt.Sprintf("post-%04d", m.nextID)
	if err := m.users.addPost(post.CreatorID, id); err != nil {
		return err
	}
	m.nextID++
	post.ID = id
	post.BeforeCreate()
	m.posts[id] = copyPost(post)
	m.order = append(m.order, id)
	return nil
}

func (m *PostRepository) GetByID(id string) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return copyPost(post), nil
}

func (m *PostRepository) List(limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := []*models.Post{}
	if limit <= 0 || offset >= len(m.order) {
		return posts, nil
	}
	end := min(offset+limit, len(m.order))
	for _, id := range m.order[offset:end] {
		posts = append(posts, copyPost(m.posts[id]))
	}
	return posts, nil
}

func (m *PostRepository) Count() (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.order), nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.UpdateErr != nil {
		return m.UpdateErr
	}

	existing, exists := m.posts[post.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	post.CreatorID = existing.CreatorID
	post.CreatedAt = existing.CreatedAt
	post.UpdatedAt = time.Now()
	m.posts[post.ID] = copyPost(post)
	return nil
}

func (m *PostRepository) Delete(id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	existing, exists := m.posts[id]
	if !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	m.order = slices.DeleteFunc(m.order, func(o string) bool { return o == id })
	m.users.removePost(existing.CreatorID, id)
	return nil
}
