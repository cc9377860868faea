package mock

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/viant/lore/schema"
)

func (s *Service) currentUserHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.User())
}

func (s *Service) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	users := make([]schema.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, *user)
	}
	size := s.PageSize
	s.mu.Unlock()
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	writePage(w, r, users, size)
}

func (s *Service) userHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strconv.Itoa(user.ID) == r.PathValue("id") {
			writeJSON(w, http.StatusOK, user)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (s *Service) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.PathValue("id") != strconv.Itoa(s.user.ID) {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "You do not have permission to perform this action."})
		return
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			fieldError(w, "avatar", "Upload a valid image.")
			return
		}
		if _, header, err := r.FormFile("avatar"); err == nil {
			location := "/media/avatars/" + header.Filename
			s.user.Avatar = &location
		}
		if value := r.FormValue("first_name"); value != "" {
			s.user.FirstName = value
		}
	} else {
		update := &schema.UserUpdate{}
		if err := json.NewDecoder(r.Body).Decode(update); err != nil {
			fieldError(w, "non_field_errors", "Invalid payload.")
			return
		}
		if update.FirstName != "" {
			s.user.FirstName = update.FirstName
		}
		if update.LastName != "" {
			s.user.LastName = update.LastName
		}
	}
	if stored, ok := s.users[s.user.Email]; ok {
		*stored = s.user
	}
	writeJSON(w, http.StatusOK, s.user)
}

// deleteUserHandler removes the signed in account and revokes its tokens
func (s *Service) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.PathValue("id") != strconv.Itoa(s.user.ID) {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "You do not have permission to perform this action."})
		return
	}
	delete(s.users, s.user.Email)
	delete(s.passwords, s.user.Email)
	s.access, s.refresh = "", ""
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) listGroupsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	groups := append([]schema.Group(nil), s.groups...)
	size := s.PageSize
	s.mu.Unlock()
	writePage(w, r, groups, size)
}

func (s *Service) groupHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, group := range s.groups {
		if strconv.Itoa(group.ID) == r.PathValue("id") {
			writeJSON(w, http.StatusOK, group)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No LoreGroup matches the given query."})
}

func (s *Service) updateGroupHandler(w http.ResponseWriter, r *http.Request) {
	input := &schema.GroupInput{}
	var avatar *string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			fieldError(w, "avatar", "Upload a valid image.")
			return
		}
		input.Name = r.FormValue("name")
		if location := r.FormValue("location"); location != "" {
			input.Location = &location
		}
		if _, header, err := r.FormFile("avatar"); err == nil {
			location := "/media/groups/" + header.Filename
			avatar = &location
		}
	} else if err := json.NewDecoder(r.Body).Decode(input); err != nil {
		fieldError(w, "non_field_errors", "Invalid payload.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.groups {
		group := &s.groups[i]
		if strconv.Itoa(group.ID) != r.PathValue("id") {
			continue
		}
		if input.Name != "" {
			group.Name = input.Name
		}
		if input.Location != nil {
			group.Location = input.Location
		}
		if avatar != nil {
			group.Avatar = avatar
		}
		writeJSON(w, http.StatusOK, group)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No LoreGroup matches the given query."})
}

func (s *Service) createGroupHandler(w http.ResponseWriter, r *http.Request) {
	input := &schema.GroupInput{}
	if err := json.NewDecoder(r.Body).Decode(input); err != nil || input.Name == "" {
		fieldError(w, "name", "This field is required.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	group := schema.Group{ID: id, Name: input.Name, Location: input.Location, NumMembers: 1 + len(input.Members), JoinCode: "JOIN" + strconv.Itoa(id), Created: time.Now().UTC()}
	s.groups = append(s.groups, group)
	writeJSON(w, http.StatusCreated, group)
}

func (s *Service) joinGroupHandler(w http.ResponseWriter, r *http.Request) {
	request := &schema.JoinRequest{}
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		fieldError(w, "join_code", "This field is required.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.groups {
		if s.groups[i].JoinCode != "" && s.groups[i].JoinCode == request.JoinCode {
			s.groups[i].NumMembers++
			writeJSON(w, http.StatusOK, s.groups[i])
			return
		}
	}
	fieldError(w, "join_code", "Invalid join code.")
}

func (s *Service) listQuotesHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var quotes []schema.Quote
	group := r.URL.Query().Get("group")
	for _, quote := range s.quotes {
		if group == "" || strconv.Itoa(quote.Group) == group {
			quotes = append(quotes, quote)
		}
	}
	size := s.PageSize
	s.mu.Unlock()
	writePage(w, r, quotes, size)
}

func (s *Service) createQuoteHandler(w http.ResponseWriter, r *http.Request) {
	input := &schema.QuoteInput{}
	if err := json.NewDecoder(r.Body).Decode(input); err != nil || input.Text == "" {
		fieldError(w, "text", "This field is required.")
		return
	}
	groupID, err := strconv.Atoi(r.PathValue("loregroup_pk"))
	if err != nil {
		fieldError(w, "group", "Invalid pk.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	quote := schema.Quote{ID: s.id(), Text: input.Text, Context: input.Context, SaidBy: input.SaidBy, Group: groupID, Created: time.Now().UTC()}
	if input.Pinned != nil {
		quote.Pinned = *input.Pinned
	}
	s.quotes = append(s.quotes, quote)
	writeJSON(w, http.StatusCreated, quote)
}

func (s *Service) updateQuoteHandler(w http.ResponseWriter, r *http.Request) {
	input := &schema.QuoteInput{}
	if err := json.NewDecoder(r.Body).Decode(input); err != nil {
		fieldError(w, "non_field_errors", "Invalid payload.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.quoteIndex(r)
	if index == -1 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	quote := &s.quotes[index]
	if input.Text != "" {
		quote.Text = input.Text
	}
	if input.Context != "" {
		quote.Context = input.Context
	}
	if input.Pinned != nil {
		quote.Pinned = *input.Pinned
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Service) deleteQuoteHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.quoteIndex(r)
	if index == -1 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	s.quotes = append(s.quotes[:index], s.quotes[index+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

// quoteIndex locates the quote addressed by the request path, caller holds s.mu
func (s *Service) quoteIndex(r *http.Request) int {
	for i, quote := range s.quotes {
		if strconv.Itoa(quote.Group) == r.PathValue("loregroup_pk") && strconv.Itoa(quote.ID) == r.PathValue("id") {
			return i
		}
	}
	return -1
}

func (s *Service) listAchievementsHandler(w http.ResponseWriter, r *http.Request) {
	groupID, _ := strconv.Atoi(r.PathValue("loregroup_pk"))
	s.mu.Lock()
	achievements := append([]schema.Achievement(nil), s.achievements[groupID]...)
	for i := range achievements {
		achievements[i].NumAchieved += len(s.achievers[achievements[i].ID])
	}
	size := s.PageSize
	s.mu.Unlock()
	writePage(w, r, achievements, size)
}

func (s *Service) createAchievementHandler(w http.ResponseWriter, r *http.Request) {
	input := &schema.AchievementInput{}
	if err := json.NewDecoder(r.Body).Decode(input); err != nil || input.Title == "" {
		fieldError(w, "title", "This field is required.")
		return
	}
	groupID, err := strconv.Atoi(r.PathValue("loregroup_pk"))
	if err != nil {
		fieldError(w, "group", "Invalid pk.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	achievement := schema.Achievement{ID: s.id(), Title: input.Title, Description: input.Description, Group: groupID, Created: time.Now().UTC()}
	s.achievements[groupID] = append(s.achievements[groupID], achievement)
	writeJSON(w, http.StatusCreated, achievement)
}

func (s *Service) achieveHandler(w http.ResponseWriter, r *http.Request) {
	achievementID, err := strconv.Atoi(r.PathValue("achievement_pk"))
	if err != nil {
		fieldError(w, "achievement", "Invalid pk.")
		return
	}
	achiever := &schema.Achiever{}
	if err = json.NewDecoder(r.Body).Decode(achiever); err != nil || achiever.ID == 0 {
		fieldError(w, "id", "This field is required.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.achievers[achievementID] == nil {
		s.achievers[achievementID] = map[int]bool{}
	}
	s.achievers[achievementID][achiever.ID] = true
	writeJSON(w, http.StatusCreated, achiever)
}

func (s *Service) unachieveHandler(w http.ResponseWriter, r *http.Request) {
	achievementID, _ := strconv.Atoi(r.PathValue("achievement_pk"))
	userID, _ := strconv.Atoi(r.PathValue("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.achievers[achievementID][userID] {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	delete(s.achievers[achievementID], userID)
	w.WriteHeader(http.StatusNoContent)
}
