package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"socialfeed/app/models"
)

type postDocument struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl"`
	Creator   string    `json:"creator"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newPostDocument(p *models.Post) postDocument {
	return postDocument{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		Creator:   p.CreatorID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (d postDocument) model() *models.Post {
	return &models.Post{
		ID:        d.ID,
		Title:     d.Title,
		Content:   d.Content,
		ImageURL:  d.ImageURL,
		CreatorID: d.Creator,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create stores a new post and appends it to the creator's post list in one
// transaction. A missing creator fails with ErrCreatorNotFound.
func (r *BadgerPostRepository) Create(post *models.Post) error {
	id, err := newID()
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		var creator userDocument
		err := getDocument(txn, userKey(post.CreatorID), &creator)
		if errors.Is(err, ErrNotFound) {
			return ErrCreatorNotFound
		}
		if err != nil {
			return err
		}

		post.ID = id
		post.BeforeCreate()
		if err := setDocument(txn, postKey(post.ID), newPostDocument(post)); err != nil {
			return err
		}

		user := creator.model()
		if err := user.AddPost(post.ID); err != nil {
			return err
		}
		user.UpdatedAt = post.CreatedAt
		return setDocument(txn, userKey(user.ID), newUserDocument(user))
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id string) (*models.Post, error) {
	var doc postDocument
	err := r.db.View(func(txn *badger.Txn) error {
		return getDocument(txn, postKey(id), &doc)
	})
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

// List retrieves a page of posts in insertion order
func (r *BadgerPostRepository) List(limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	if limit <= 0 {
		return posts, nil
	}

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		// Skip offset items
		count := 0
		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if count < offset {
				count++
				continue
			}
			if count >= offset+limit {
				break
			}

			var doc postDocument
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &doc)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			posts = append(posts, doc.model())
			count++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Count returns the number of stored posts
func (r *BadgerPostRepository) Count() (int, error) {
	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(PostKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Update updates an existing post; the creator is never changed
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing postDocument
		if err := getDocument(txn, postKey(post.ID), &existing); err != nil {
			return err
		}

		post.CreatorID = existing.Creator
		post.CreatedAt = existing.CreatedAt
		post.UpdatedAt = time.Now()
		return setDocument(txn, postKey(post.ID), newPostDocument(post))
	})
}

// Delete deletes a post and removes it from its creator's post list
func (r *BadgerPostRepository) Delete(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing postDocument
		if err := getDocument(txn, postKey(id), &existing); err != nil {
			return err
		}
		if err := txn.Delete(postKey(id)); err != nil {
			return err
		}

		var creator userDocument
		err := getDocument(txn, userKey(existing.Creator), &creator)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		user := creator.model()
		user.RemovePost(id)
		user.UpdatedAt = time.Now()
		return setDocument(txn, userKey(user.ID), newUserDocument(user))
	})
}
