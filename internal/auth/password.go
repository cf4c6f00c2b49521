package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword — bcrypt-дайджест; соль генерируется на каждый вызов и
// лежит внутри дайджеста.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword — сверка пароля с дайджестом.
func CheckPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
