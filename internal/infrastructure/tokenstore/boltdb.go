package tokenstore

import (
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultBucket = "session"

var currentKey = []byte("current")

// Store wraps BoltDB to keep the signed-in session between CLI runs.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// record is the on-disk form. Session hides its token from JSON, so it is copied here.
type record struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Load returns the stored session, or nil when none is stored.
func (s *Store) Load() (*domain.Session, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}

	var rec *record
	err := s.db.View(func(tx *bolt.Tx) error {
		payload := tx.Bucket(s.bucket).Get(currentKey)
		if payload == nil {
			return nil
		}
		rec = &record{}
		return json.Unmarshal(payload, rec)
	})
	if err != nil || rec == nil {
		return nil, err
	}

	return &domain.Session{
		ID:          rec.ID,
		UserID:      rec.UserID,
		Email:       rec.Email,
		AccessToken: rec.AccessToken,
		ExpiresAt:   rec.ExpiresAt,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

// Save replaces the stored session.
func (s *Store) Save(sess *domain.Session) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(record{
		ID:          sess.ID,
		UserID:      sess.UserID,
		Email:       sess.Email,
		AccessToken: sess.AccessToken,
		ExpiresAt:   sess.ExpiresAt,
		CreatedAt:   sess.CreatedAt,
	})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(currentKey, payload)
	})
}

// Clear forgets the stored session. Clearing an empty store is a no-op.
func (s *Store) Clear() error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(currentKey)
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
