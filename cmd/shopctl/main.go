package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mkrupp/homecase-shop/internal/app"
	"github.com/mkrupp/homecase-shop/internal/infra/config"
	context_ "github.com/mkrupp/homecase-shop/internal/infra/context"
	"github.com/mkrupp/homecase-shop/internal/infra/logging"
)

const (
	appName = "shop"
	cmdName = "shopctl"
)

type Config struct {
	config.EnvConfig

	Log   logging.LoggerConfig `envPrefix:"LOG_"`
	Login LoginConfig          `envPrefix:"LOGIN_"`
	App   app.Config
}

// LoginConfig holds default credentials, overridden by -u and -p.
type LoginConfig struct {
	Name     string `env:"NAME"     default:""`
	Password string `env:"PASSWORD" default:""`
}

func main() {
	var (
		cfg Config
		ctx = context.Background()

		configPrefix = strings.ToUpper(strings.Join([]string{appName, cmdName}, "_"))
		loggerName   = strings.ToLower(strings.Join([]string{appName, cmdName}, "."))
	)

	if err := config.LoadDotenv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := logging.Configure(ctx, cfg.Log, loggerName); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx = context_.WithSessionID(ctx, context_.NewSessionID())

	if err := run(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, args []string, stdout, stderr io.Writer) (err error) {
	log := logging.GetLogger("cmd.shopctl")

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "command failed", "args", args, "error", err)
		} else {
			log.DebugContext(ctx, "command done", "args", args)
		}
	}()

	global, rest, err := parseGlobalFlags(args, cfg.Login, stderr)
	if err != nil {
		return err
	}

	cmd, rest, err := lookupCommand(rest)
	if err != nil {
		printUsage(stderr)

		return err
	}

	shop, err := app.New(ctx, cfg.App)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	defer func() {
		if cerr := shop.Close(ctx); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()

	s := &session{
		app:      shop,
		out:      stdout,
		errOut:   stderr,
		name:     global.name,
		password: global.password,
	}

	return cmd.run(ctx, s, rest)
}
