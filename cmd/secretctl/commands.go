package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/secretapp/internal/client"
	"github.com/HammerMeetNail/secretapp/internal/services"
)

const adminTokenTTL = 5 * time.Minute

type command struct {
	name  string
	words int
	args  int
	run   func(ctx context.Context, opts *options, args []string, out io.Writer) error
}

var commands = []command{
	{name: "signup", words: 1, run: runSignUp},
	{name: "whoami", words: 1, run: runWhoAmI},
	{name: "profile get", words: 2, run: runProfileGet},
	{name: "profile set", words: 2, run: runProfileSet},
	{name: "secret list", words: 2, run: runSecretList},
	{name: "secret create", words: 2, args: 1, run: runSecretCreate},
	{name: "secret update", words: 2, args: 2, run: runSecretUpdate},
	{name: "secret delete", words: 2, args: 1, run: runSecretDelete},
	{name: "friends view", words: 2, run: runFriendsView},
	{name: "friends send", words: 2, args: 1, run: runFriendsSend},
	{name: "friends accept", words: 2, args: 1, run: runFriendsAccept},
	{name: "friends secret", words: 2, args: 1, run: runFriendsSecret},
	{name: "account delete", words: 2, run: runAccountDelete},
	{name: "admin delete-user", words: 2, args: 1, run: runAdminDeleteUser},
}

func lookup(words []string) (command, bool) {
	for _, cmd := range commands {
		if len(words) < cmd.words {
			continue
		}
		if strings.Join(words[:cmd.words], " ") == cmd.name {
			return cmd, true
		}
	}
	return command{}, false
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", errUsage, raw)
	}
	return id, nil
}

func runSignUp(ctx context.Context, opts *options, _ []string, out io.Writer) error {
	if opts.email == "" || opts.password == "" {
		return fmt.Errorf("%w: --email and --password are required", errUsage)
	}
	c, err := client.New(opts.url)
	if err != nil {
		return err
	}
	user, err := c.SignUp(ctx, opts.email, opts.password)
	if err != nil {
		return errors.New(client.MessageOf(err))
	}
	return printJSON(out, user)
}

func runWhoAmI(ctx context.Context, opts *options, _ []string, out io.Writer) error {
	c, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	user, err := c.Me(ctx)
	if err != nil {
		return errors.New(client.MessageOf(err))
	}
	return printJSON(out, user)
}

func runProfileGet(ctx context.Context, opts *options, _ []string, out io.Writer) error {
	c, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	form := client.NewProfileForm(c)
	form.Load(ctx)
	return printJSON(out, map[string]string{
		"email":        form.Email,
		"display_name": form.DisplayName,
		"bio":          form.Bio,
	})
}

func runProfileSet(ctx context.Context, opts *options, _ []string, out io.Writer) error {
	c, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	form := client.NewProfileForm(c)
	form.Load(ctx)
	form.DisplayName = opts.displayName
	form.Bio = opts.bio
	ok := form.Save(ctx)
	fmt.Fprintln(out, form.Message)
	if !ok {
		return errors.New("profile not saved")
	}
	return nil
}

func loadSecretForm(ctx context.Context, opts *options) (*client.SecretForm, error) {
	c, err := newSession(ctx, opts)
	if err != nil {
		return nil, err
	}
	form := client.NewSecretForm(c, true)
	if err := form.Load(ctx); err != nil {
		return nil, errors.New(client.MessageOf(err))
	}
	return form, nil
}

func runSecretList(ctx context.Context, opts *options, _ []string, out io.Writer) error {
	form, err := loadSecretForm(ctx, opts)
	if err != nil {
		return err
	}
	return printJSON(out, form.Secrets)
}

func runSecretCreate(ctx context.Context, opts *options, args []string, out io.Writer) error {
	form, err := loadSecretForm(ctx, opts)
	if err != nil {
		return err
	}
	form.Draft = args[0]
	if err := form.Submit(ctx); err != nil {
		return errors.New(form.Error)
	}
	if form.Error != "" {
		return errors.New(form.Error)
	}
	return printJSON(out, form.Secrets)
}

func runSecretUpdate(ctx context.Context, opts *options, args []string, out io.Writer) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	form, err := loadSecretForm(ctx, opts)
	if err != nil {
		return err
	}
	if !form.StartEdit(id) {
		return fmt.Errorf("no secret with id %s", id)
	}
	form.Draft = args[1]
	if err := form.Submit(ctx); err != nil {
		return errors.New(form.Error)
	}
	return printJSON(out, form.Secrets)
}

func runSecretDelete(ctx context.Context, opts *options, args []string, out io.Writer) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	form, err := loadSecretForm(ctx, opts)
	if err != nil {
		return err
	}
	if err := form.Delete(ctx, id); err != nil {
		return errors.New(form.Error)
	}
	fmt.Fprintln(out, "deleted", id)
	return nil
}

func loadFriendsPage(ctx context.Context, opts *options) (*client.FriendsPage, error) {
	c, err := newSession(ctx, opts)
	if err != nil {
		return nil, err
	}
	page := client.NewFriendsPage(c)
	if err := page.Load(ctx); err != nil {
		return nil, errors.New(page.Message)
	}
	return page, nil
}

func runFriendsView(ctx context.Context, opts *options, _ []string, out io.Writer) error {
	page, err := loadFriendsPage(ctx, opts)
	if err != nil {
		return err
	}
	return printJSON(out, page.View)
}

func runFriendsSend(ctx context.Context, opts *options, args []string, out io.Writer) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	page, err := loadFriendsPage(ctx, opts)
	if err != nil {
		return err
	}
	if err := page.SendFriendRequest(ctx, id); err != nil {
		return errors.New(page.Message)
	}
	return printJSON(out, page.View)
}

func runFriendsAccept(ctx context.Context, opts *options, args []string, out io.Writer) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	page, err := loadFriendsPage(ctx, opts)
	if err != nil {
		return err
	}
	if err := page.AcceptFriendRequest(ctx, id); err != nil {
		return errors.New(page.Message)
	}
	return printJSON(out, page.View)
}

func runFriendsSecret(ctx context.Context, opts *options, args []string, out io.Writer) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	page, err := loadFriendsPage(ctx, opts)
	if err != nil {
		return err
	}
	message, err := page.FetchSecretMessage(ctx, id)
	if err != nil {
		return errors.New(page.Message)
	}
	fmt.Fprintln(out, message)
	return nil
}

func runAccountDelete(ctx context.Context, opts *options, _ []string, out io.Writer) error {
	c, err := newSession(ctx, opts)
	if err != nil {
		return err
	}
	if err := c.DeleteAccount(ctx); err != nil {
		return errors.New(client.MessageOf(err))
	}
	fmt.Fprintln(out, "account deleted")
	return nil
}

func runAdminDeleteUser(ctx context.Context, opts *options, args []string, out io.Writer) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	secret, err := serviceRoleSecret(opts.envFile)
	if err != nil {
		return err
	}
	token, err := services.NewServiceRoleToken(secret, "secretctl", adminTokenTTL)
	if err != nil {
		return err
	}
	c, err := client.New(opts.url, client.WithBearerToken(token))
	if err != nil {
		return err
	}
	if err := c.DeleteUser(ctx, id); err != nil {
		return errors.New(client.MessageOf(err))
	}
	fmt.Fprintln(out, "deleted user", id)
	return nil
}
