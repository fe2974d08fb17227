package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"socialfeed/app/models"
)

// userDocument is the stored form of a user; unlike models.User it keeps the
// password hash in its JSON.
type userDocument struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Posts     []string  `json:"posts"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newUserDocument(u *models.User) userDocument {
	return userDocument{
		ID:        u.ID,
		Email:     u.Email,
		Password:  u.Password,
		Name:      u.Name,
		Status:    u.Status,
		Posts:     u.Posts,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (d userDocument) model() *models.User {
	posts := d.Posts
	if posts == nil {
		posts = []string{}
	}
	return &models.User{
		ID:        d.ID,
		Email:     d.Email,
		Password:  d.Password,
		Name:      d.Name,
		Status:    d.Status,
		Posts:     posts,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// Create stores a new user. The email index is written in the same
// transaction, so a taken email fails with ErrDuplicateEmail.
func (r *BadgerUserRepository) Create(user *models.User) error {
	id, err := newID()
	if err != nil {
		return err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		taken, err := exists(txn, userEmailKey(user.Email))
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}

		user.ID = id
		user.BeforeCreate()

		if err := txn.Set(userEmailKey(user.Email), []byte(user.ID)); err != nil {
			return err
		}
		return setDocument(txn, userKey(user.ID), newUserDocument(user))
	})
	if errors.Is(err, badger.ErrConflict) {
		// a concurrent signup touched the same email index key
		return ErrDuplicateEmail
	}
	return err
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id string) (*models.User, error) {
	var doc userDocument
	err := r.db.View(func(txn *badger.Txn) error {
		return getDocument(txn, userKey(id), &doc)
	})
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

// GetByEmail retrieves a user through the email index
func (r *BadgerUserRepository) GetByEmail(email string) (*models.User, error) {
	var doc userDocument
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userEmailKey(email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getDocument(txn, userKey(string(id)), &doc)
	})
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

// Update writes the user's profile fields (name, password, status). The
// stored post list is owned by the post repository and is kept as is; the
// caller's copy is refreshed from it.
func (r *BadgerUserRepository) Update(user *models.User) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing userDocument
		if err := getDocument(txn, userKey(user.ID), &existing); err != nil {
			return err
		}
		if existing.Email != user.Email {
			return fmt.Errorf("email of user %s cannot change", user.ID)
		}

		existing.Name = user.Name
		existing.Password = user.Password
		existing.Status = user.Status
		existing.UpdatedAt = time.Now()
		if err := setDocument(txn, userKey(user.ID), existing); err != nil {
			return err
		}

		stored := existing.model()
		user.Posts = stored.Posts
		user.CreatedAt = stored.CreatedAt
		user.UpdatedAt = stored.UpdatedAt
		return nil
	})
}
