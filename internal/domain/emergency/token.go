package emergency

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes: 32 bytes de entropía criptográfica (256 bits), suficiente
// para que una colisión sea despreciable bajo cualquier volumen realista.
const tokenBytes = 32

// NewToken genera un token opaco URL-safe sin padding (43 caracteres).
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// tokenPrefix devuelve un prefijo corto para logs; el token completo
// nunca se escribe en logs.
func tokenPrefix(tok string) string {
	if len(tok) <= 8 {
		return tok
	}
	return tok[:8]
}
