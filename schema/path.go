package schema

// API endpoint paths, relative to the configured base URL.
const (
	PathLogin        = "/api/v1/auth/login/"
	PathRegistration = "/api/v1/auth/registration/"
	PathTokenRefresh = "/api/v1/auth/token/refresh/"
	PathLogout       = "/api/v1/auth/logout/"
	PathCurrentUser  = "/api/v1/auth/user/"

	PathUsers = "/api/v1/users/"
	PathUser  = "/api/v1/users/{id}/"

	PathGroups      = "/api/v1/groups/"
	PathGroup       = "/api/v1/groups/{id}/"
	PathGroupJoin   = "/api/v1/groups/join/"
	PathGroupMember = "/api/v1/groups/{loregroup_pk}/members/{id}/"

	PathQuotes      = "/api/v1/quotes/"
	PathQuote       = "/api/v1/quotes/{id}/"
	PathGroupQuotes = "/api/v1/groups/{loregroup_pk}/quotes/"
	PathGroupQuote  = "/api/v1/groups/{loregroup_pk}/quotes/{id}/"

	PathGroupAchievements = "/api/v1/groups/{loregroup_pk}/achievements/"
	PathAchievers         = "/api/v1/achievements/{achievement_pk}/achievers/"
	PathAchiever          = "/api/v1/achievements/{achievement_pk}/achievers/{id}/"
)

// AuthPaths lists endpoints that never carry a bearer token and never trigger a token refresh.
var AuthPaths = []string{
	"/auth/login/",
	"/auth/registration/",
	"/auth/token/refresh/",
	"/auth/logout/",
}
