package sack

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // SHA-1 is the on-disk format's contract, not used for security
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

// checksumLen is the fixed width, in bytes, of every checksum value stored in
// the cache database.
const checksumLen = 32

var cacheBucket = []byte("repo-checksums")

// Cache is the on-disk memoization layer for repo metadata checksums: a bolt
// database at "<cachedir>/provides.db" mapping each repo name to its
// last-validated metadata checksum. No per-repo .solv/.solvx cache files are
// written or read, and no checksum is appended to any file. It is grounded on
// the teacher's boltCache (internal/gps/source_cache_bolt.go).
type Cache struct {
	db *bolt.DB
}

// OpenCache opens (creating if absent) the bolt-backed cache database under
// cacheDir.
func OpenCache(cacheDir string) (*Cache, error) {
	if cacheDir == "" {
		return nil, errors.New("sack: empty cache directory")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create cache directory: %s", cacheDir)
	}
	path := filepath.Join(cacheDir, "provides.db")
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open cache file %q", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying bolt database handle.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// padChecksum normalizes a checksum string to exactly checksumLen bytes,
// truncating or zero-padding, so the trailing-checksum byte layout stays
// fixed regardless of the digest algorithm's native length.
func padChecksum(checksum string) []byte {
	b := make([]byte, checksumLen)
	copy(b, checksum)
	return b
}

// Valid reports whether the checksum stored for reponame in the cache
// database equals checksum, both compared after padChecksum.
func (c *Cache) Valid(reponame, checksum string) (bool, error) {
	if c == nil || c.db == nil {
		return false, nil
	}
	var stored []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(cacheBucket)
		v := b.Get([]byte(reponame))
		if v != nil {
			stored = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if stored == nil {
		return false, nil
	}
	return bytes.Equal(stored, padChecksum(checksum)), nil
}

// Store records the checksum for reponame after a successful load,
// so the next load can validate against it.
func (c *Cache) Store(reponame, checksum string) error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(cacheBucket)
		return b.Put([]byte(reponame), padChecksum(checksum))
	})
}

// SystemFingerprint implements the "<count>:<sha1>" fingerprint algorithm
// from spec §6: count is the number of non-"gpg-pubkey" installed packages,
// and sha1 is the SHA-1 of the concatenation of ASCII-sorted per-package
// SHA-1 header hashes.
func SystemFingerprint(headerHashes []string, names []string) string {
	var kept []string
	for i, hash := range headerHashes {
		if i < len(names) && names[i] == "gpg-pubkey" {
			continue
		}
		kept = append(kept, hash)
	}
	sort.Strings(kept)

	h := sha1.New() //nolint:gosec // fingerprint format, not a security digest
	for _, hash := range kept {
		h.Write([]byte(hash))
	}
	return itoa(len(kept)) + ":" + hex(h.Sum(nil))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

const hexDigits = "0123456789abcdef"

func hex(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xf]
	}
	return string(out)
}
