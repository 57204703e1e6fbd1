package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/ffarena/tournament-platform/internal/platform/auth"
	"github.com/ffarena/tournament-platform/internal/platform/dto"
)

type ctxKey string

const emailKey ctxKey = "email"

// callerEmail retorna o email autenticado do contexto da request
func callerEmail(r *http.Request) string {
	email, _ := r.Context().Value(emailKey).(string)
	return email
}

// authenticated valida o bearer token e injeta o email do chamador no contexto
func (s *Server) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "missing authorization header"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid authorization header"})
			return
		}
		email, err := auth.ParseToken(s.jwtSecret, parts[1])
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
			return
		}
		ctx := context.WithValue(r.Context(), emailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin consulta o papel no banco a cada chamada
// Quem não é admin recebe um "access denied" fixo e nunca vê os dados
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.repo.IsAdmin(r.Context(), callerEmail(r))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
			return
		}
		if !ok {
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "access denied"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
