package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrCreatorNotFound = errors.New("post creator not found")
)

const (
	// Key prefixes for different document types
	UserKeyPrefix        = "user:"
	UserEmailIndexPrefix = "user-email:"
	PostKeyPrefix        = "post:"
)

func userKey(id string) []byte         { return []byte(UserKeyPrefix + id) }
func userEmailKey(email string) []byte { return []byte(UserEmailIndexPrefix + email) }
func postKey(id string) []byte         { return []byte(PostKeyPrefix + id) }

// newID returns a time-ordered identifier, so key order under a prefix
// follows insertion order.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// getDocument loads the JSON document at key into v.
func getDocument(txn *badger.Txn, key []byte, v interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, v)
	})
}

// setDocument stores v as JSON at key.
func setDocument(txn *badger.Txn, key []byte, v interface{}) error {
	data, err := marshalEntity(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// exists reports whether key is present.
func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
