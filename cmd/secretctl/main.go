package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/HammerMeetNail/secretapp/internal/client"
	"github.com/HammerMeetNail/secretapp/internal/config"
	"github.com/HammerMeetNail/secretapp/internal/logging"
)

const usage = `Usage: secretctl [flags] <command> [args]

Commands:
  signup                         create an account
  whoami                         show the signed-in user
  profile get                    show your profile
  profile set                    update your profile (--display-name, --bio)
  secret list                    list your secret message
  secret create <message>        store your secret message
  secret update <id> <message>   replace your secret message
  secret delete <id>             delete your secret message
  friends view                   show candidates, friends and requests
  friends send <user-id>         send a friend request
  friends accept <user-id>       accept a request from user-id
  friends secret <user-id>       read a friend's secret message
  account delete                 delete your own account
  admin delete-user <user-id>    delete any account (needs SERVICE_ROLE_SECRET)

Flags:
`

var errUsage = errors.New("usage")

type options struct {
	url         string
	email       string
	password    string
	displayName string
	bio         string
	envFile     string
	timeout     time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var opts options
	flags := pflag.NewFlagSet("secretctl", pflag.ContinueOnError)
	flags.StringVar(&opts.url, "url", envOr("SECRETAPP_URL", "http://localhost:8080"), "server base URL")
	flags.StringVarP(&opts.email, "email", "e", os.Getenv("SECRETAPP_EMAIL"), "account email")
	flags.StringVarP(&opts.password, "password", "p", os.Getenv("SECRETAPP_PASSWORD"), "account password")
	flags.StringVar(&opts.displayName, "display-name", "", "display name for profile set")
	flags.StringVar(&opts.bio, "bio", "", "bio for profile set")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file read by admin commands")
	flags.DurationVar(&opts.timeout, "timeout", 15*time.Second, "overall request timeout")
	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return errUsage
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	cmd, ok := lookup(rest)
	if !ok {
		flags.Usage()
		return fmt.Errorf("%w: unknown command %q", errUsage, strings.Join(rest, " "))
	}
	if len(rest)-cmd.words < cmd.args {
		return fmt.Errorf("%w: %s needs %d argument(s)", errUsage, cmd.name, cmd.args)
	}

	logging.Debug("Running command", map[string]interface{}{"command": cmd.name, "url": opts.url})
	return cmd.run(ctx, &opts, rest[cmd.words:], out)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// serviceRoleSecret reads the admin secret from the environment, seeded by
// the same dotenv file the server uses.
func serviceRoleSecret(envFile string) (string, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return "", err
	}
	secret := os.Getenv("SERVICE_ROLE_SECRET")
	if secret == "" {
		return "", errors.New("SERVICE_ROLE_SECRET is not set")
	}
	return secret, nil
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSession(ctx context.Context, opts *options) (*client.Client, error) {
	if opts.email == "" || opts.password == "" {
		return nil, fmt.Errorf("%w: --email and --password are required", errUsage)
	}
	c, err := client.New(opts.url)
	if err != nil {
		return nil, err
	}
	if _, err := c.SignIn(ctx, opts.email, opts.password); err != nil {
		return nil, fmt.Errorf("signing in: %s", client.MessageOf(err))
	}
	return c, nil
}
