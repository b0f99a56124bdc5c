package users

import (
	"context"
	"strings"
)

// FullName expone el nombre completo de un usuario.
// Lo consume patients.EmergencySummary sin importar este paquete al revés.
func (s *Service) FullName(ctx context.Context, userID string) (string, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName), nil
}
