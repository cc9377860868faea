package cli

import "github.com/viant/lore"

type Options struct {
	Verbose bool               `short:"v" long:"verbose" description:"debug logging"`
	Client  lore.ClientOptions `group:"Client Options"`

	Login        LoginCommand        `command:"login" description:"sign in"`
	Logout       struct{}            `command:"logout" description:"sign out"`
	WhoAmI       struct{}            `command:"whoami" description:"print the signed in user and token expiry"`
	Groups       struct{}            `command:"groups" description:"list groups"`
	Quotes       GroupCommand        `command:"quotes" description:"list quotes"`
	Achievements AchievementsCommand `command:"achievements" description:"list achievements of a group"`
	CountQuotes  CountCommand        `command:"count-quotes" description:"count quotes"`
	Summary      struct{}            `command:"summary" description:"print user, group and quote totals"`
}

type LoginCommand struct {
	Email    string `short:"e" long:"email" description:"account e-mail" required:"true"`
	Password string `short:"p" long:"password" env:"LORE_PASSWORD" description:"account password" required:"true"`
}

type GroupCommand struct {
	Group int `short:"g" long:"group" description:"group id, all groups when omitted"`
}

type AchievementsCommand struct {
	Group int `short:"g" long:"group" description:"group id" required:"true"`
}

type CountCommand struct {
	GroupCommand
	MaxPages int     `long:"max-pages" description:"stop after fetching this many pages"`
	Rate     float64 `long:"rate" description:"max page requests per second"`
}
