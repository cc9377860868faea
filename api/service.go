package api

import (
	"context"
	"strconv"

	"github.com/viant/lore/client"
	"github.com/viant/lore/client/paging"
	"github.com/viant/lore/schema"
)

// Service groups lore endpoints
type Service struct {
	client *client.Client
}

func New(aClient *client.Client) *Service {
	return &Service{client: aClient}
}

func id(v int) string {
	return strconv.Itoa(v)
}

func (s *Service) CurrentUser(ctx context.Context) (*schema.User, error) {
	return client.Query[schema.User](ctx, s.client, client.Get(schema.PathCurrentUser))
}

func (s *Service) User(ctx context.Context, userID int) (*schema.User, error) {
	return client.Query[schema.User](ctx, s.client, client.Get(schema.PathUser, "id", id(userID)))
}

func (s *Service) Users() *client.Infinite[schema.User] {
	return client.InfiniteQuery[schema.User](s.client, client.Get(schema.PathUsers))
}

func (s *Service) UpdateUser(ctx context.Context, userID int, update *schema.UserUpdate) (*schema.User, error) {
	return client.Mutate[schema.User](ctx, s.client, client.Patch(schema.PathUser, update, "id", id(userID)), nil)
}

// UpdateAvatar uploads a new avatar image as multipart form data
func (s *Service) UpdateAvatar(ctx context.Context, userID int, name, contentType string, data []byte) (*schema.User, error) {
	descriptor := client.Patch(schema.PathUser, nil, "id", id(userID))
	descriptor.Form = &client.Form{Files: []client.FormFile{{Field: "avatar", Name: name, ContentType: contentType, Data: data}}}
	return client.Mutate[schema.User](ctx, s.client, descriptor, nil)
}

// DeleteUser deletes the account and discards every cached query.
func (s *Service) DeleteUser(ctx context.Context, userID int) error {
	_, err := client.Mutate[struct{}](ctx, s.client, client.Delete(schema.PathUser, "id", id(userID)), &client.MutateOptions[struct{}]{
		Invalidates: []string{""},
	})
	return err
}

func (s *Service) Groups() *client.Infinite[schema.Group] {
	return client.InfiniteQuery[schema.Group](s.client, client.Get(schema.PathGroups))
}

func (s *Service) Group(ctx context.Context, groupID int) (*schema.Group, error) {
	return client.Query[schema.Group](ctx, s.client, client.Get(schema.PathGroup, "id", id(groupID)))
}

func (s *Service) CreateGroup(ctx context.Context, input *schema.GroupInput) (*schema.Group, error) {
	return client.Mutate[schema.Group](ctx, s.client, client.Post(schema.PathGroups, input), &client.MutateOptions[schema.Group]{
		Invalidates: []string{schema.PathGroups},
	})
}

// UpdateGroup changes group details, sent as multipart form data when image is set.
func (s *Service) UpdateGroup(ctx context.Context, groupID int, input *schema.GroupInput, image *client.FormFile) (*schema.Group, error) {
	if input == nil {
		input = &schema.GroupInput{}
	}
	descriptor := client.Patch(schema.PathGroup, input, "id", id(groupID))
	if image != nil {
		file := *image
		if file.Field == "" {
			file.Field = "avatar"
		}
		descriptor.Body = nil
		descriptor.Form = &client.Form{Fields: input.Fields(), Files: []client.FormFile{file}}
	}
	return client.Mutate[schema.Group](ctx, s.client, descriptor, &client.MutateOptions[schema.Group]{
		Invalidates: []string{schema.PathGroups},
	})
}

// JoinGroup joins the group identified by its join code
func (s *Service) JoinGroup(ctx context.Context, joinCode string) (*schema.Group, error) {
	return client.Mutate[schema.Group](ctx, s.client, client.Post(schema.PathGroupJoin, &schema.JoinRequest{JoinCode: joinCode}), &client.MutateOptions[schema.Group]{
		Invalidates: []string{schema.PathGroups},
	})
}

func (s *Service) LeaveGroup(ctx context.Context, groupID, userID int) error {
	_, err := client.Mutate[struct{}](ctx, s.client, client.Delete(schema.PathGroupMember, "loregroup_pk", id(groupID), "id", id(userID)), &client.MutateOptions[struct{}]{
		Invalidates: []string{schema.PathGroups},
	})
	return err
}

// Quotes lists quotes, of a single group when groupID is not zero
func (s *Service) Quotes(groupID int) *client.Infinite[schema.Quote] {
	descriptor := client.Get(schema.PathQuotes)
	if groupID != 0 {
		descriptor.Query = map[string][]string{"group": {id(groupID)}}
	}
	return client.InfiniteQuery[schema.Quote](s.client, descriptor)
}

func (s *Service) CreateQuote(ctx context.Context, groupID int, input *schema.QuoteInput) (*schema.Quote, error) {
	return client.Mutate[schema.Quote](ctx, s.client, client.Post(schema.PathGroupQuotes, input, "loregroup_pk", id(groupID)), &client.MutateOptions[schema.Quote]{
		Invalidates: []string{schema.PathQuotes},
	})
}

func (s *Service) UpdateQuote(ctx context.Context, groupID, quoteID int, input *schema.QuoteInput) (*schema.Quote, error) {
	return client.Mutate[schema.Quote](ctx, s.client, client.Patch(schema.PathGroupQuote, input, "loregroup_pk", id(groupID), "id", id(quoteID)), &client.MutateOptions[schema.Quote]{
		Invalidates: []string{schema.PathQuotes},
	})
}

// PinQuote pins or unpins a quote
func (s *Service) PinQuote(ctx context.Context, groupID, quoteID int, pinned bool) (*schema.Quote, error) {
	return s.UpdateQuote(ctx, groupID, quoteID, &schema.QuoteInput{Pinned: &pinned})
}

func (s *Service) DeleteQuote(ctx context.Context, groupID, quoteID int) error {
	_, err := client.Mutate[struct{}](ctx, s.client, client.Delete(schema.PathGroupQuote, "loregroup_pk", id(groupID), "id", id(quoteID)), &client.MutateOptions[struct{}]{
		Invalidates: []string{schema.PathQuotes},
	})
	return err
}

// CountQuotes fetches every remaining quote page and returns the number of quotes
func (s *Service) CountQuotes(ctx context.Context, groupID int, options ...paging.FetchAllOption) (int, error) {
	quotes := s.Quotes(groupID)
	if err := quotes.FetchAll(ctx, options...); err != nil {
		return 0, err
	}
	return len(quotes.Data().Items), nil
}

func (s *Service) Achievements(groupID int) *client.Infinite[schema.Achievement] {
	return client.InfiniteQuery[schema.Achievement](s.client, achievements(groupID))
}

func achievements(groupID int) *client.Descriptor {
	return client.Get(schema.PathGroupAchievements, "loregroup_pk", id(groupID))
}

func (s *Service) CreateAchievement(ctx context.Context, groupID int, input *schema.AchievementInput) (*schema.Achievement, error) {
	return client.Mutate[schema.Achievement](ctx, s.client, client.Post(schema.PathGroupAchievements, input, "loregroup_pk", id(groupID)), &client.MutateOptions[schema.Achievement]{
		Invalidates: []string{achievements(groupID).Key()},
	})
}

// Achieve marks userID as having achieved the achievement
func (s *Service) Achieve(ctx context.Context, groupID, achievementID, userID int) error {
	_, err := client.Mutate[schema.Achiever](ctx, s.client, client.Post(schema.PathAchievers, &schema.Achiever{ID: userID}, "achievement_pk", id(achievementID)), &client.MutateOptions[schema.Achiever]{
		Invalidates: achieved(groupID),
	})
	return err
}

func (s *Service) Unachieve(ctx context.Context, groupID, achievementID, userID int) error {
	_, err := client.Mutate[struct{}](ctx, s.client, client.Delete(schema.PathAchiever, "achievement_pk", id(achievementID), "id", id(userID)), &client.MutateOptions[struct{}]{
		Invalidates: achieved(groupID),
	})
	return err
}

// achieved lists queries holding achievement counts of a group
func achieved(groupID int) []string {
	return []string{achievements(groupID).Key(), schema.PathCurrentUser}
}
