package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"

	"github.com/gofiber/fiber/v2"
)

const APIKeyHeader = "X-API-Key"

// KeyGate holds the sha256 digest of the shared access secret. Presented
// keys are hashed the same way and compared in constant time.
type KeyGate struct {
	digest [sha256.Size]byte
}

func NewKeyGate(secret string) (*KeyGate, error) {
	if secret == "" {
		return nil, errors.New("key gate: empty secret")
	}
	return &KeyGate{digest: sha256.Sum256([]byte(secret))}, nil
}

func (g *KeyGate) Valid(key string) bool {
	if key == "" {
		return false
	}
	sum := sha256.Sum256([]byte(key))
	return subtle.ConstantTimeCompare(g.digest[:], sum[:]) == 1
}

func RequireAPIKey(gate *KeyGate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(APIKeyHeader)
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "API key required"})
		}
		if !gate.Valid(key) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid API key"})
		}
		return c.Next()
	}
}
