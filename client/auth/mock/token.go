package mock

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/viant/lore/schema"
)

// defaultLoginHandler handles login requests
func (s *Service) defaultLoginHandler(w http.ResponseWriter, r *http.Request) {
	request := &schema.LoginRequest{}
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		fieldError(w, "non_field_errors", "Invalid payload.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[request.Email]
	if !ok || s.passwords[request.Email] != request.Password {
		fieldError(w, "non_field_errors", "Unable to log in with provided credentials.")
		return
	}
	s.user = *user
	pair, err := s.issue(user.ID)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, &schema.LoginResponse{Access: pair.Access, Refresh: pair.Refresh, User: user})
}

// defaultRegistrationHandler accepts JSON or multipart registrations
func (s *Service) defaultRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	registration := &schema.Registration{}
	var avatar *string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			fieldError(w, "non_field_errors", "Invalid payload.")
			return
		}
		registration.FirstName = r.FormValue("first_name")
		registration.LastName = r.FormValue("last_name")
		registration.Email = r.FormValue("email")
		registration.Password1 = r.FormValue("password1")
		registration.Password2 = r.FormValue("password2")
		if _, header, err := r.FormFile("avatar"); err == nil {
			location := "/media/avatars/" + header.Filename
			avatar = &location
		}
	} else if err := json.NewDecoder(r.Body).Decode(registration); err != nil {
		fieldError(w, "non_field_errors", "Invalid payload.")
		return
	}

	fields := map[string][]string{}
	if registration.Email == "" {
		fields["email"] = append(fields["email"], "This field is required.")
	}
	if len(registration.Password1) < 8 {
		fields["password1"] = append(fields["password1"], "This password is too short. It must contain at least 8 characters.")
	}
	if registration.Password1 != registration.Password2 {
		fields["non_field_errors"] = append(fields["non_field_errors"], "The two password fields didn't match.")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[registration.Email]; ok {
		fields["email"] = append(fields["email"], "A user is already registered with this e-mail address.")
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	user := &schema.User{ID: s.id(), FirstName: registration.FirstName, LastName: registration.LastName, Email: registration.Email, Avatar: avatar}
	s.users[user.Email] = user
	s.passwords[user.Email] = registration.Password1
	s.user = *user
	pair, err := s.issue(user.ID)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, &schema.LoginResponse{Access: pair.Access, Refresh: pair.Refresh, User: user})
}

// defaultRefreshHandler rotates the token pair when the refresh token is valid
func (s *Service) defaultRefreshHandler(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)
	if s.OnRefresh != nil {
		s.OnRefresh(r)
	}
	request := &schema.RefreshRequest{}
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		fieldError(w, "refresh", "This field is required.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if request.Refresh == "" || request.Refresh != s.refresh {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}
	pair, err := s.issue(s.user.ID)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// CountRefresh wraps a replacement refresh handler so that RefreshCalls still counts hits.
func (s *Service) CountRefresh(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.refreshCalls.Add(1)
		handler(w, r)
	}
}

// defaultLogoutHandler blacklists the current pair
func (s *Service) defaultLogoutHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.access, s.refresh = "", ""
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Successfully logged out."})
}
