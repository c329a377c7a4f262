package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

var ErrNotFound = errors.New("state not found")

// Storage namespaces, one JSON document per user in each.
const (
	NamespaceExam     = "pmp-exam"
	NamespaceProgress = "pmp-progress"
	NamespaceUser     = "pmp-user"
)

// UpdateFunc receives the stored document (nil when absent) and returns the
// document to store. Returning a nil document skips the write.
type UpdateFunc func(current []byte) ([]byte, error)

// KV is a key-value store of JSON documents.
// Update must run the read-modify-write of one key atomically.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Key builds the storage key of a user document.
func Key(namespace string, userID int64) string {
	return namespace + ":" + strconv.FormatInt(userID, 10)
}

// ParseKey extracts the user id from a storage key of the given namespace.
func ParseKey(namespace, key string) (int64, bool) {
	rest, ok := strings.CutPrefix(key, namespace+":")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
