package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16

	// MinPasswordBytes is the shortest plaintext Hash accepts.
	MinPasswordBytes = 8

	algorithmID = "argon2id"
)

var (
	// ErrPasswordTooShort is returned by Hash for plaintexts under MinPasswordBytes.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrMalformedHash is returned when an encoded hash is not a valid argon2id PHC string.
	ErrMalformedHash = errors.New("malformed password hash")
	// ErrInvalidParams is returned by NewHasher for parameters below the floor.
	ErrInvalidParams = errors.New("invalid argon2 parameters")
)

// Params are the Argon2id cost parameters. Memory is in KiB.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Hasher hashes and verifies passwords. It is immutable and safe for
// concurrent use.
type Hasher struct {
	params Params
}

// phc is a decoded $argon2id$ string.
type phc struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

// NewHasher validates p and returns a Hasher.
func NewHasher(p Params) (*Hasher, error) {
	switch {
	case p.Memory < minMemoryKB:
		return nil, fmt.Errorf("%w: memory must be >= %d KiB", ErrInvalidParams, minMemoryKB)
	case p.Time < minTimeCost:
		return nil, fmt.Errorf("%w: time must be >= %d", ErrInvalidParams, minTimeCost)
	case p.Parallelism < minParallelism:
		return nil, fmt.Errorf("%w: parallelism must be >= %d", ErrInvalidParams, minParallelism)
	case p.SaltLength < minSaltLength:
		return nil, fmt.Errorf("%w: salt length must be >= %d", ErrInvalidParams, minSaltLength)
	case p.KeyLength < minKeyLength:
		return nil, fmt.Errorf("%w: key length must be >= %d", ErrInvalidParams, minKeyLength)
	}
	return &Hasher{params: p}, nil
}

// Hash derives a fresh salted key for plaintext and returns it in PHC form.
// Plaintext bytes are used as given, without Unicode normalization.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if len(plaintext) < MinPasswordBytes {
		return "", ErrPasswordTooShort
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("reading salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return encode(phc{
		memory:      h.params.Memory,
		time:        h.params.Time,
		parallelism: h.params.Parallelism,
		salt:        salt,
		key:         key,
	}), nil
}

// Verify reports whether plaintext matches encoded. The comparison is
// constant-time. A malformed encoded value yields ErrMalformedHash.
func (h *Hasher) Verify(plaintext, encoded string) (bool, error) {
	decoded, err := decode(encoded)
	if err != nil {
		return false, err
	}

	key := argon2.IDKey([]byte(plaintext), decoded.salt, decoded.time, decoded.memory, decoded.parallelism, uint32(len(decoded.key)))
	return subtle.ConstantTimeCompare(key, decoded.key) == 1, nil
}

// NeedsRehash reports whether encoded was produced with weaker parameters
// than the Hasher's.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	decoded, err := decode(encoded)
	if err != nil {
		return false, err
	}
	return decoded.memory < h.params.Memory ||
		decoded.time < h.params.Time ||
		decoded.parallelism < h.params.Parallelism ||
		uint32(len(decoded.key)) != h.params.KeyLength, nil
}

func encode(p phc) string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID, argon2.Version,
		p.memory, p.time, p.parallelism,
		base64.RawStdEncoding.EncodeToString(p.salt),
		base64.RawStdEncoding.EncodeToString(p.key),
	)
}

func decode(encoded string) (phc, error) {
	malformed := func(reason string) (phc, error) {
		return phc{}, fmt.Errorf("%w: %s", ErrMalformedHash, reason)
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return malformed("expected 5 '$'-separated fields")
	}
	if parts[1] != algorithmID {
		return malformed("unsupported algorithm")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return malformed("invalid version field")
	}
	if version != argon2.Version {
		return malformed("unsupported argon2 version")
	}

	var (
		out         phc
		parallelism uint32
	)
	if n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &out.memory, &out.time, &parallelism); err != nil || n != 3 {
		return malformed("invalid parameter field")
	}
	if out.memory < minMemoryKB || out.time < minTimeCost || parallelism < uint32(minParallelism) || parallelism > 255 {
		return malformed("parameters out of range")
	}
	out.parallelism = uint8(parallelism)

	var err error
	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(out.salt) < int(minSaltLength) {
		return malformed("invalid salt")
	}
	if out.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(out.key) == 0 {
		return malformed("invalid key")
	}
	return out, nil
}
