package http

import (
	"net/http"

	"spendwise/internal/core"
	"spendwise/internal/log"
)

type adminUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
	Joined   string `json:"joined"`
	IsAdmin  bool   `json:"is_admin"`
}

type adminFeedback struct {
	User    string `json:"user"`
	Rating  int    `json:"rating"`
	Message string `json:"message"`
	Date    string `json:"date"`
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.admin.Stats(r.Context(), currentUser(r))
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.admin.Users(r.Context(), currentUser(r))
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	out := make([]adminUser, 0, len(users))
	for _, u := range users {
		out = append(out, adminUser{
			Username: u.Username,
			Email:    u.Email,
			UserType: u.UserType,
			Joined:   u.JoinedAt.UTC().Format(core.DateLayout),
			IsAdmin:  u.IsAdmin,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdminFeedback(w http.ResponseWriter, r *http.Request) {
	feedback, err := s.admin.Feedback(r.Context(), currentUser(r))
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	out := make([]adminFeedback, 0, len(feedback))
	for _, fb := range feedback {
		out = append(out, adminFeedback{
			User:    fb.Username,
			Rating:  fb.Rating,
			Message: fb.Message,
			Date:    fb.CreatedAt.UTC().Format(core.DateLayout),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
