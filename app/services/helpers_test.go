package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"socialfeed/app/models"
	"socialfeed/app/repositories/mock"
	"socialfeed/app/storage"
	"socialfeed/app/testutil"
	"socialfeed/app/token"
	"socialfeed/app/validation"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// memoryStore is an in-memory storage.Store.
type memoryStore struct {
	mu        sync.Mutex
	files     map[string][]byte
	saveErr   error
	deleteErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: make(map[string][]byte)}
}

func (m *memoryStore) Save(_ context.Context, name, _ string, r io.Reader) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	return nil
}

func (m *memoryStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStore) Delete(_ context.Context, name string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; !ok {
		return storage.ErrNotFound
	}
	delete(m.files, name)
	return nil
}

func (m *memoryStore) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[name]
	return ok
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

var errBoom = errors.New("boom")

type testEnv struct {
	users  *mock.UserRepository
	posts  *mock.PostRepository
	images *memoryStore
	tokens *token.Manager
	auth   *AuthService
	feed   *FeedService
}

func newTestEnv() *testEnv {
	users := mock.NewUserRepository()
	posts := mock.NewPostRepository(users)
	images := newMemoryStore()
	tokens := token.NewManager("test-secret", time.Hour)
	v := validation.New()
	log := testutil.MakeNoopLogger()

	return &testEnv{
		users:  users,
		posts:  posts,
		images: images,
		tokens: tokens,
		auth:   NewAuthService(users, tokens, v, bcrypt.MinCost, log),
		feed:   NewFeedService(posts, users, images, v, 2, log),
	}
}

func pngUpload(filename string) *models.ImageUpload {
	return &models.ImageUpload{Filename: filename, ContentType: "image/png", Reader: bytes.NewReader(pngBytes)}
}
