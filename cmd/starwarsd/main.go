// Command starwarsd serves the Star Wars catalog API.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/viniciuslks7/API-Starwars/auth"
	"github.com/viniciuslks7/API-Starwars/config"
	"github.com/viniciuslks7/API-Starwars/server"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "starwarsd:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to the YAML configuration; empty uses defaults and environment",
		EnvVars: []string{config.EnvPrefix + "CONFIG"},
	}

	return &cli.App{
		Name:    "starwarsd",
		Usage:   "Star Wars catalog API",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server until interrupted",
				Flags:  []cli.Flag{configFlag},
				Action: serve,
			},
			{
				Name:   "check-config",
				Usage:  "validate the configuration and print it with secrets redacted",
				Flags:  []cli.Flag{configFlag},
				Action: checkConfig,
			},
			{
				Name:  "token",
				Usage: "sign a bearer token with the configured JWT secret",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Required: true, Usage: "token principal"},
					&cli.BoolFlag{Name: "admin", Usage: "grant the admin claim"},
					&cli.StringSliceFlag{Name: "role", Usage: "role to include; repeatable"},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "token lifetime; 0 issues a token without expiry"},
				},
				Action: token,
			},
			{
				Name:  "version",
				Usage: "print the build version",
				Action: func(c *cli.Context) error {
					_, err := fmt.Fprintln(c.App.Writer, version)
					return err
				},
			},
		},
	}
}

func load(c *cli.Context) (*config.Config, error) {
	return config.Load(c.Context, c.String("config"))
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := load(c)
	if err != nil {
		return err
	}
	if cfg.Service.Version == "" || cfg.Service.Version == config.Defaults().Service.Version {
		cfg.Service.Version = version
	}

	srv, err := server.New(ctx, cfg)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func checkConfig(c *cli.Context) error {
	cfg, err := load(c)
	if err != nil {
		return err
	}
	redact(cfg)

	enc := yaml.NewEncoder(c.App.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}

// redact replaces credentials so the printed configuration is safe to share.
func redact(cfg *config.Config) {
	const mask = "[REDACTED]"
	if cfg.Auth.JWT.Secret != "" {
		cfg.Auth.JWT.Secret = mask
	}
	if len(cfg.Auth.APIKeys) > 0 {
		keys := make(map[string]string, len(cfg.Auth.APIKeys))
		i := 0
		for _, name := range cfg.Auth.APIKeys {
			i++
			keys[fmt.Sprintf("%s-%d", mask, i)] = name
		}
		cfg.Auth.APIKeys = keys
	}
}

func token(c *cli.Context) error {
	cfg, err := load(c)
	if err != nil {
		return err
	}
	tok, err := auth.SignToken(cfg.Auth.JWT.Authenticator(), auth.TokenOptions{
		Subject: c.String("subject"),
		Roles:   c.StringSlice("role"),
		Admin:   c.Bool("admin"),
		TTL:     c.Duration("ttl"),
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, tok)
	return err
}
