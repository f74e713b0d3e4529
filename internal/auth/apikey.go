package auth

import "golang.org/x/crypto/bcrypt"

// HashAdminKey hashes a super-admin API key for storage in configuration.
func HashAdminKey(key string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyAdminKey checks a presented super-admin key against its bcrypt hash.
func VerifyAdminKey(hashed, key string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(key))
}
