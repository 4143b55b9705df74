package authlib

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/argon2"
)

// Argon2Params are the cost parameters embedded in every hash we produce.
// They are fixed at construction, not per call.
type Argon2Params struct {
	Memory     uint32
	Time       uint32
	Threads    uint8
	SaltLength uint32
	KeyLength  uint32
}

// DefaultArgon2Params mirror the original deployment profile: 64 MiB,
// two passes, single lane.
var DefaultArgon2Params = Argon2Params{
	Memory:     64 * 1024,
	Time:       2,
	Threads:    1,
	SaltLength: 16,
	KeyLength:  32,
}

// DefaultHasherConcurrency bounds how many argon2 computations may run at
// once. Hashing is deliberately expensive; without a bound a burst of
// registrations can starve login latency.
const DefaultHasherConcurrency = 4

// Argon2Hasher hashes passwords with Argon2id into a self-describing
// encoded string and verifies them with the parameters embedded in the hash.
type Argon2Hasher struct {
	params Argon2Params
	sem    chan struct{}
}

var _ Hasher = (*Argon2Hasher)(nil)

type HasherOption func(*Argon2Hasher)

// WithHasherConcurrency bounds the number of concurrent hash computations
func WithHasherConcurrency(n int) HasherOption {
	return func(h *Argon2Hasher) {
		if n > 0 {
			h.sem = make(chan struct{}, n)
		}
	}
}

// NewArgon2Hasher creates a hasher with the given cost parameters. Zero
// fields fall back to DefaultArgon2Params.
func NewArgon2Hasher(params Argon2Params, opts ...HasherOption) *Argon2Hasher {
	if params.Memory == 0 {
		params.Memory = DefaultArgon2Params.Memory
	}
	if params.Time == 0 {
		params.Time = DefaultArgon2Params.Time
	}
	if params.Threads == 0 {
		params.Threads = DefaultArgon2Params.Threads
	}
	if params.SaltLength == 0 {
		params.SaltLength = DefaultArgon2Params.SaltLength
	}
	if params.KeyLength == 0 {
		params.KeyLength = DefaultArgon2Params.KeyLength
	}

	h := &Argon2Hasher{
		params: params,
		sem:    make(chan struct{}, DefaultHasherConcurrency),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Hash produces a salted Argon2id hash in the standard encoded form
// ($argon2id$v=19$m=...,t=...,p=...$salt$digest). The salt is random per
// call, hashing the same password twice yields different strings.
func (h *Argon2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate salt")
	}

	h.acquire()
	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLength)
	h.release()

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Compare recomputes the hash using the parameters embedded in the encoded
// string. A wrong password returns ErrMismatchedHashAndPassword, never a
// panic or a malformed-input error.
func (h *Argon2Hasher) Compare(password, hash string) error {
	params, salt, key, err := decodeArgon2Hash(hash)
	if err != nil {
		return err
	}

	h.acquire()
	otherKey := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, uint32(len(key)))
	h.release()

	if subtle.ConstantTimeCompare(key, otherKey) != 1 {
		return ErrMismatchedHashAndPassword
	}

	return nil
}

// NeedsRehash reports whether the cost parameters embedded in hash differ
// from the hasher's current target parameters. A stored hash produced under
// older parameters should be upgraded on the next successful verification.
func (h *Argon2Hasher) NeedsRehash(hash string) (bool, error) {
	params, _, key, err := decodeArgon2Hash(hash)
	if err != nil {
		return false, err
	}

	stale := params.Memory != h.params.Memory ||
		params.Time != h.params.Time ||
		params.Threads != h.params.Threads ||
		uint32(len(key)) != h.params.KeyLength

	return stale, nil
}

// acquire and release tolerate a nil semaphore so a zero-value hasher can
// still verify hashes whose parameters are self-describing.
func (h *Argon2Hasher) acquire() {
	if h.sem != nil {
		h.sem <- struct{}{}
	}
}

func (h *Argon2Hasher) release() {
	if h.sem != nil {
		<-h.sem
	}
}

func malformedHash(msg string) *goerrors.Error {
	return goerrors.New(msg, goerrors.CategoryValidation).
		WithTextCode(TextCodeMalformedHash)
}

func decodeArgon2Hash(hash string) (Argon2Params, []byte, []byte, error) {
	var params Argon2Params

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		return params, nil, nil, malformedHash("password hash has an invalid structure")
	}

	if parts[1] != "argon2id" {
		return params, nil, nil, malformedHash("password hash uses an unsupported algorithm")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, malformedHash("password hash has an invalid version field")
	}
	if version != argon2.Version {
		return params, nil, nil, malformedHash("password hash uses an incompatible argon2 version")
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Threads); err != nil {
		return params, nil, nil, malformedHash("password hash has invalid cost parameters")
	}

	salt, err := base64.RawStdEncoding.Strict().DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, malformedHash("password hash has an invalid salt")
	}
	params.SaltLength = uint32(len(salt))

	key, err := base64.RawStdEncoding.Strict().DecodeString(parts[5])
	if err != nil {
		return params, nil, nil, malformedHash("password hash has an invalid digest")
	}
	params.KeyLength = uint32(len(key))

	return params, salt, key, nil
}
