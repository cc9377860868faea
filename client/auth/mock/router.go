package mock

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/viant/lore/schema"
)

// Handler returns the backend HTTP handler.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+schema.PathLogin+"{$}", s.override(&s.LoginHandler, s.defaultLoginHandler))
	mux.HandleFunc("POST "+schema.PathRegistration+"{$}", s.override(&s.RegistrationHandler, s.defaultRegistrationHandler))
	mux.HandleFunc("POST "+schema.PathTokenRefresh+"{$}", s.override(&s.RefreshHandler, s.defaultRefreshHandler))
	mux.HandleFunc("POST "+schema.PathLogout+"{$}", s.override(&s.LogoutHandler, s.defaultLogoutHandler))

	mux.HandleFunc("GET "+schema.PathCurrentUser+"{$}", s.protected(s.currentUserHandler))
	mux.HandleFunc("GET "+schema.PathUsers+"{$}", s.protected(s.listUsersHandler))
	mux.HandleFunc("GET "+schema.PathUser+"{$}", s.protected(s.userHandler))
	mux.HandleFunc("PATCH "+schema.PathUser+"{$}", s.protected(s.updateUserHandler))
	mux.HandleFunc("DELETE "+schema.PathUser+"{$}", s.protected(s.deleteUserHandler))

	mux.HandleFunc("GET "+schema.PathGroups+"{$}", s.protected(s.listGroupsHandler))
	mux.HandleFunc("POST "+schema.PathGroups+"{$}", s.protected(s.createGroupHandler))
	mux.HandleFunc("GET "+schema.PathGroup+"{$}", s.protected(s.groupHandler))
	mux.HandleFunc("PATCH "+schema.PathGroup+"{$}", s.protected(s.updateGroupHandler))
	mux.HandleFunc("POST "+schema.PathGroupJoin+"{$}", s.protected(s.joinGroupHandler))
	mux.HandleFunc("DELETE "+schema.PathGroupMember+"{$}", s.protected(s.noContentHandler))

	mux.HandleFunc("GET "+schema.PathQuotes+"{$}", s.protected(s.listQuotesHandler))
	mux.HandleFunc("POST "+schema.PathGroupQuotes+"{$}", s.protected(s.createQuoteHandler))
	mux.HandleFunc("PATCH "+schema.PathGroupQuote+"{$}", s.protected(s.updateQuoteHandler))
	mux.HandleFunc("DELETE "+schema.PathGroupQuote+"{$}", s.protected(s.deleteQuoteHandler))

	mux.HandleFunc("GET "+schema.PathGroupAchievements+"{$}", s.protected(s.listAchievementsHandler))
	mux.HandleFunc("POST "+schema.PathGroupAchievements+"{$}", s.protected(s.createAchievementHandler))
	mux.HandleFunc("POST "+schema.PathAchievers+"{$}", s.protected(s.achieveHandler))
	mux.HandleFunc("DELETE "+schema.PathAchiever+"{$}", s.protected(s.unachieveHandler))
	return mux
}

// override dispatches to the handler stored in slot when set at request time.
func (s *Service) override(slot *http.HandlerFunc, fallback http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if handler := *slot; handler != nil {
			handler(w, r)
			return
		}
		fallback(w, r)
	}
}

// protected rejects requests without the currently valid access token.
func (s *Service) protected(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		s.seen[r.URL.Path] = append(s.seen[r.URL.Path], token)
		valid := token != "" && token == s.access
		s.mu.Unlock()
		if !valid {
			if s.OnUnauthorized != nil {
				s.OnUnauthorized(r)
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}
		next(w, r)
	}
}

func (s *Service) noContentHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func fieldError(w http.ResponseWriter, field string, messages ...string) {
	writeJSON(w, http.StatusBadRequest, map[string][]string{field: messages})
}
