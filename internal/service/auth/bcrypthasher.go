package auth

import (
	"crypto/sha256"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt work factor
const BcryptCost = 10

// Bcrypt password hasher
// Will be used as default one if user not provide it's own
// Password is pre-hashed with sha256 to get around bcrypt 72 bytes input limit
type BcryptHasher struct{}

var DefaultHasher PasswordHasher = BcryptHasher{}

func (h BcryptHasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	hash, err := bcrypt.GenerateFromPassword(sum[:], BcryptCost)
	return string(hash), err
}

// Compare returns error on mismatch and on malformed hash as well
func (h BcryptHasher) Compare(hashedPassword string, password string) error {
	sum := sha256.Sum256([]byte(password))
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), sum[:])
}

// Verify is the boolean form of Compare
func Verify(h PasswordHasher, hashedPassword string, password string) bool {
	return h.Compare(hashedPassword, password) == nil
}
