package auth

import "context"

// AuthVerifier valida el bearer token de una petición y devuelve los
// claims del usuario (paciente, paramédico o admin). Sin verifier (modo
// dev) la identidad sale de los encabezados de depuración.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
