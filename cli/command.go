package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/lore"
	"github.com/viant/lore/client/paging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type runner struct {
	client *lore.Client
	out    io.Writer
	logger zerolog.Logger
}

func (r *runner) run(ctx context.Context, command string, options *Options) error {
	switch command {
	case "login":
		return r.login(ctx, &options.Login)
	case "logout":
		if err := r.client.Session.Logout(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(r.out, "signed out")
		return err
	case "whoami":
		return r.whoAmI(ctx)
	case "groups":
		return r.groups(ctx)
	case "quotes":
		return r.quotes(ctx, &options.Quotes)
	case "achievements":
		return r.achievements(ctx, &options.Achievements)
	case "count-quotes":
		return r.countQuotes(ctx, &options.CountQuotes)
	case "summary":
		return r.summary(ctx)
	}
	return fmt.Errorf("unsupported command: %v", command)
}

func (r *runner) login(ctx context.Context, command *LoginCommand) error {
	user, err := r.client.Session.Login(ctx, command.Email, command.Password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.out, "signed in as %s\n", user.DisplayName())
	return err
}

func (r *runner) whoAmI(ctx context.Context) error {
	user, err := r.client.Session.Reload(ctx)
	if err != nil {
		return err
	}
	if _, err = fmt.Fprintf(r.out, "%d\t%s\t%s\n", user.ID, user.DisplayName(), user.Email); err != nil {
		return err
	}
	token, err := r.client.Session.TokenSource(ctx).Token()
	if err != nil {
		return err
	}
	if token.Expiry.IsZero() {
		return nil
	}
	r.logger.Debug().Time("expires", token.Expiry).Bool("valid", token.Valid()).Msg("access token")
	_, err = fmt.Fprintf(r.out, "access token expires %s\n", token.Expiry.UTC().Format(time.RFC3339))
	return err
}

func (r *runner) groups(ctx context.Context) error {
	groups := r.client.Groups()
	if err := groups.FetchAll(ctx); err != nil {
		return err
	}
	for _, group := range groups.Data().Items {
		if _, err := fmt.Fprintf(r.out, "%d\t%s\t%d members\n", group.ID, group.Name, group.NumMembers); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) quotes(ctx context.Context, command *GroupCommand) error {
	quotes := r.client.Quotes(command.Group)
	if err := quotes.FetchAll(ctx); err != nil {
		return err
	}
	for _, quote := range quotes.Data().Items {
		if _, err := fmt.Fprintf(r.out, "%d\t%q\n", quote.ID, quote.Text); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) achievements(ctx context.Context, command *AchievementsCommand) error {
	achievements := r.client.Achievements(command.Group)
	if err := achievements.FetchAll(ctx); err != nil {
		return err
	}
	for _, achievement := range achievements.Data().Items {
		if _, err := fmt.Fprintf(r.out, "%d\t%s\t%d achieved\n", achievement.ID, achievement.Title, achievement.NumAchieved); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) countQuotes(ctx context.Context, command *CountCommand) error {
	var options []paging.FetchAllOption
	if command.MaxPages > 0 {
		options = append(options, paging.WithMaxPages(command.MaxPages))
	}
	if command.Rate > 0 {
		options = append(options, paging.WithLimiter(rate.NewLimiter(rate.Limit(command.Rate), 1)))
	}
	count, err := r.client.CountQuotes(ctx, command.Group, options...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.out, count)
	return err
}

func (r *runner) summary(ctx context.Context) error {
	var name string
	var groups, quotes int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := r.client.CurrentUser(gctx)
		if err != nil {
			return err
		}
		name = user.DisplayName()
		return nil
	})
	g.Go(func() error {
		list := r.client.Groups()
		if err := list.FetchAll(gctx); err != nil {
			return err
		}
		groups = len(list.Data().Items)
		return nil
	})
	g.Go(func() error {
		var err error
		quotes, err = r.client.CountQuotes(gctx, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(r.out, "%s: %d groups, %d quotes\n", name, groups, quotes)
	return err
}
