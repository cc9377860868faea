package schema

import "time"

type (
	// User represents public user details.
	User struct {
		ID        int     `json:"id" validate:"required"`
		FirstName string  `json:"first_name"`
		LastName  string  `json:"last_name"`
		Email     string  `json:"email,omitempty"`
		Avatar    *string `json:"avatar"`
		URL       string  `json:"url,omitempty"`
	}

	// UserUpdate carries editable user fields.
	UserUpdate struct {
		FirstName string `json:"first_name,omitempty"`
		LastName  string `json:"last_name,omitempty"`
	}

	// Group represents a lore group.
	Group struct {
		ID                int       `json:"id" validate:"required"`
		Name              string    `json:"name" validate:"required"`
		NumMembers        int       `json:"num_members"`
		JoinCode          string    `json:"join_code,omitempty"`
		Avatar            *string   `json:"avatar"`
		Location          *string   `json:"location"`
		Created           time.Time `json:"created"`
		URL               string    `json:"url,omitempty"`
		AchievementsURL   string    `json:"achievements_url,omitempty"`
		ChallengesURL     string    `json:"challenges_url,omitempty"`
		QuotesURL         string    `json:"quotes_url,omitempty"`
		ImagesURL         string    `json:"images_url,omitempty"`
		MembersURL        string    `json:"members_url,omitempty"`
		LoggedInMemberURL string    `json:"logged_in_member_url,omitempty"`
	}

	// GroupInput creates or updates a group.
	GroupInput struct {
		Name     string  `json:"name,omitempty"`
		Location *string `json:"location,omitempty"`
		Members  []int   `json:"members,omitempty"`
	}

	// JoinRequest joins a group by its code.
	JoinRequest struct {
		JoinCode string `json:"join_code"`
	}

	// Quote represents a quote said by a group member.
	Quote struct {
		ID             int       `json:"id" validate:"required"`
		Text           string    `json:"text" validate:"required"`
		Context        string    `json:"context"`
		SaidBy         int       `json:"said_by"`
		SaidByUsername string    `json:"said_by_username,omitempty"`
		Pinned         bool      `json:"pinned"`
		Group          int       `json:"group"`
		Created        time.Time `json:"created"`
		SaidByURL      string    `json:"said_by_url,omitempty"`
		GroupURL       string    `json:"group_url,omitempty"`
		URL            string    `json:"url,omitempty"`
	}

	// QuoteInput creates or updates a quote.
	QuoteInput struct {
		Text    string `json:"text,omitempty"`
		Context string `json:"context,omitempty"`
		SaidBy  int    `json:"said_by,omitempty"`
		Pinned  *bool  `json:"pinned,omitempty"`
		Group   int    `json:"group,omitempty"`
	}

	// Achievement represents a group achievement.
	Achievement struct {
		ID              int       `json:"id" validate:"required"`
		Title           string    `json:"title" validate:"required"`
		Image           *string   `json:"image"`
		Description     string    `json:"description"`
		NumAchieved     int       `json:"num_achieved"`
		Group           int       `json:"group"`
		Created         time.Time `json:"created"`
		URL             string    `json:"url,omitempty"`
		AchieversURL    string    `json:"achievers_url,omitempty"`
		GroupURL        string    `json:"group_url,omitempty"`
		LoggedInUserURL string    `json:"logged_in_user_url,omitempty"`
	}

	// AchievementInput creates an achievement.
	AchievementInput struct {
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
		Group       int    `json:"group,omitempty"`
	}

	// Achiever marks a user as having achieved an achievement.
	Achiever struct {
		ID int `json:"id"`
	}
)

// Fields returns the multipart form fields of the group input.
func (g *GroupInput) Fields() map[string]string {
	ret := map[string]string{}
	if g.Name != "" {
		ret["name"] = g.Name
	}
	if g.Location != nil {
		ret["location"] = *g.Location
	}
	return ret
}

// DisplayName returns the user's full name.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
