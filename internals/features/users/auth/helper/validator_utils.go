package helpers

import (
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRe = regexp.MustCompile(`^[\d\s\+\-\(\)]+$`)
)

const MinPasswordLength = 8

// Validasi Email (regex simple)
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPhone: angka, spasi, +, -, dan kurung.
func IsValidPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPasswordHash(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
