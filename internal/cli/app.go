// Package cli implements the watchlist terminal client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/caarlos0/env/v11"

	"go-watchlist/pkg/client"
)

type Config struct {
	APIURL      string `env:"WATCHLIST_API_URL" envDefault:"http://localhost:5000"`
	SessionFile string `env:"WATCHLIST_SESSION_FILE"`
	Debug       bool   `env:"WATCHLIST_DEBUG" envDefault:"false"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("locate config dir: %w", err)
		}
		cfg.SessionFile = filepath.Join(dir, "go-watchlist", "session.json")
	}
	return cfg, nil
}

type App struct {
	api    *client.Client
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(api *client.Client, in io.Reader, out io.Writer) *App {
	return &App{api: api, reader: bufio.NewReader(in), out: out}
}

// Run builds the client from cfg and executes one command.
func Run(ctx context.Context, cfg Config, args []string, in io.Reader, out, errOut io.Writer) int {
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	session := client.NewSession(client.NewFileStorage(cfg.SessionFile), client.NewMemoryStorage())
	app := NewApp(client.New(cfg.APIURL, session, client.WithLogger(logger)), in, out)

	if err := app.Execute(ctx, args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

const usage = `usage: watchlist <command> [flags]

commands:
  register                      create an account
  login [-remember]             sign in
  logout                        forget the stored session
  whoami                        show the signed-in user
  forgot-password               email a reset link
  reset-password <token>        choose a new password
  avatar <image file>           upload a profile picture
  search [-page N] <query>      search movies and tv
  add [-id N] [-status S] <query>
                                add a search result to the watchlist
  list [-status S] [-type T] [-genres a,b] [-sort F] [-order asc|desc] [-page N] [-limit N]
  update [-status S] [-notes N] [-active true|false] <entry id>
  remove <entry id>`

func (a *App) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, usage)
		return errUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "register":
		return a.register(ctx)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout()
	case "whoami":
		return a.whoami(ctx)
	case "forgot-password":
		return a.forgotPassword(ctx)
	case "reset-password":
		return a.resetPassword(ctx, rest)
	case "avatar":
		return a.avatar(ctx, rest)
	case "search":
		return a.search(ctx, rest)
	case "add":
		return a.add(ctx, rest)
	case "list":
		return a.list(ctx, rest)
	case "update":
		return a.update(ctx, rest)
	case "remove":
		return a.remove(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, usage)
		return nil
	default:
		fmt.Fprintln(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func joinArgs(fs *flag.FlagSet) string {
	return strings.TrimSpace(strings.Join(fs.Args(), " "))
}
