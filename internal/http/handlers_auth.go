package http

import (
	"net/http"

	"spendwise/internal/auth"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/services"
)

// requireToken resolves the bearer token to a user and stores it in the
// request context.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Token is missing!")
			return
		}
		u, err := s.accounts.Authenticate(r.Context(), token)
		if err != nil {
			log.FromContext(r.Context()).DebugContext(r.Context(), "Token rejected",
				log.NewFields().WithError(err).WithErrorType(log.ErrorTypeAuth).ToSlice()...)
			writeError(w, http.StatusUnauthorized, "Token is invalid!")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), u)))
	})
}

// currentUser is only valid behind requireToken.
func currentUser(r *http.Request) core.User {
	u, _ := auth.UserFrom(r.Context())
	return u
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req services.Registration
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	if _, err := s.accounts.Register(r.Context(), req); err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	writeMessage(w, http.StatusCreated, "User created successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	UserType    string `json:"user_type"`
	IsAdmin     bool   `json:"is_admin"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	sess, err := s.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Message:     "Login successful",
		AccessToken: sess.Token,
		Username:    sess.User.Username,
		Email:       sess.User.Email,
		UserType:    sess.User.UserType,
		IsAdmin:     sess.User.IsAdmin,
	})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	if err := s.accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeMessage(w, http.StatusOK, "If registered, you will receive a reset link.")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	if err := s.accounts.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset successful")
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var upd core.ProfileUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	if _, err := s.accounts.UpdateProfile(r.Context(), currentUser(r).ID, upd); err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	writeMessage(w, http.StatusOK, "Profile updated")
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	if err := s.accounts.ChangePassword(r.Context(), currentUser(r).ID, req.CurrentPassword, req.NewPassword); err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password updated")
}
