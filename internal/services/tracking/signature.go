package tracking

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer подписывает пару (originalID, userName) серверным секретом.
type Signer struct {
	secret []byte
}

func NewSigner(secret []byte) *Signer {
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Signer{secret: key}
}

// Sign возвращает hex(HMAC-SHA256(secret, originalID + userName)).
// Пустое имя пользователя допустимо: подпись всё равно вычисляется.
func (s *Signer) Sign(originalID, userName string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(originalID))
	mac.Write([]byte(userName))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify сравнивает подпись за постоянное время.
func (s *Signer) Verify(originalID, userName, signature string) bool {
	expected := s.Sign(originalID, userName)
	return hmac.Equal([]byte(expected), []byte(signature))
}
