package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/readcircle/book-recommendation-service/internal/auth"
	"github.com/readcircle/book-recommendation-service/internal/domain"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// register handles POST /api/v1/auth/register.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("password hashing failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(r.Context(), user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		writeDomainError(w, err)
		return
	}

	token, err := s.authManager.GenerateToken(user)
	if err != nil {
		s.logger.Error().Err(err).Msg("token generation failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.logger.Info().Str("username", user.Username).Msg("user registered")

	writeJSON(w, http.StatusCreated, authResponse{
		Token: token,
		User:  domainUserToResponse(user),
	})
}

// login handles POST /api/v1/auth/login.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	user, err := s.userRepo.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Same response as a bad password; never reveal which part failed.
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeDomainError(w, err)
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.authManager.GenerateToken(user)
	if err != nil {
		s.logger.Error().Err(err).Msg("token generation failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token: token,
		User:  domainUserToResponse(user),
	})
}
