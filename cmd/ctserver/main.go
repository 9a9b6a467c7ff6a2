/*
Ctserver runs a cmdtree server, letting remote users log in over HTTP, connect
as players and execute lines against the command grammar.

Usage:

	ctserver [flags]

The REST API is served under /api/v1 on localhost:8080 unless another address
is set. Each setting is read from its flag if given, else from its environment
variable, else from the config file named by --config or CMDTREE_CONFIG.

On first start an account called "admin" with password "password" is created at
Management level so that there is someone to log in as. Change its password or
delete it once other accounts exist.

The flags are:

	-v, --version
		Print the server and cmdtree versions and exit.

	-c, --config FILE
		Take settings not given elsewhere from this TOML file. Falls back to
		CMDTREE_CONFIG.

	-l, --listen ADDRESS
		Serve on ADDRESS, written as HOST:PORT or :PORT, such as
		"10.0.0.5:6001" or ":6001". Falls back to CMDTREE_LISTEN_ADDRESS, then
		to localhost:8080.

	-s, --secret SECRET
		Sign login tokens with SECRET. Secrets under 32 bytes are repeated
		until they reach it, and secrets over 64 bytes are refused. Falls back
		to CMDTREE_TOKEN_SECRET. With no secret at all, a random one is made
		and every token stops working when the server exits.

	--db ENGINE[:DATADIR]
		Keep accounts and command history in the given store: "inmem", which
		is lost at exit, or "sqlite:DATADIR", which keeps a database file in
		DATADIR. Falls back to CMDTREE_DATABASE, then to inmem.

	--log-level LEVEL
		Log at LEVEL and above; one of debug, info, warn, error or fatal.
		Defaults to info.

	--log-file FILE
		Append log output to FILE instead of writing it to stderr.
*/
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dekarrin/cmdtree/internal/level"
	"github.com/dekarrin/cmdtree/internal/logger"
	"github.com/dekarrin/cmdtree/internal/serr"
	"github.com/dekarrin/cmdtree/internal/version"
	"github.com/dekarrin/cmdtree/server"
	"github.com/spf13/pflag"
)

// Environment variables that settings fall back to.
const (
	EnvListen = "CMDTREE_LISTEN_ADDRESS"
	EnvSecret = "CMDTREE_TOKEN_SECRET"
	EnvDB     = "CMDTREE_DATABASE"
	EnvConfig = "CMDTREE_CONFIG"
)

// Exit codes.
const (
	ExitSuccess = iota
	ExitUsageError
	ExitInitError
	ExitServeError
)

const shutdownTimeout = 10 * time.Second

var (
	flagVersion  = pflag.BoolP("version", "v", false, "Print the version and exit.")
	flagConfig   = pflag.StringP("config", "c", "", "Read settings from the given TOML config file.")
	flagListen   = pflag.StringP("listen", "l", "", "Serve on the given HOST:PORT or :PORT address.")
	flagSecret   = pflag.StringP("secret", "s", "", "Sign login tokens with the given secret.")
	flagDB       = pflag.String("db", "", "Keep data in the given store: inmem or sqlite:DATADIR.")
	flagLogLevel = pflag.String("log-level", "", "Least severe level of log output.")
	flagLogFile  = pflag.String("log-file", "", "Append log output to the given file instead of stderr.")
)

// usageError is a bad flag or setting, reported with a pointer to -h.
type usageError struct {
	msg string
}

func (e usageError) Error() string {
	return e.msg
}

func badUsage(format string, a ...interface{}) error {
	return usageError{msg: fmt.Sprintf(format, a...)}
}

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (cmdtree v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	cfg, err := settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		if errors.As(err, &usageError{}) {
			fmt.Fprintf(os.Stderr, "Do -h for help.\n")
		}
		os.Exit(ExitUsageError)
	}

	log := logger.For("main")
	if cfg.TokenSecret == nil {
		cfg.TokenSecret = make([]byte, server.MaxSecretSize)
		if _, err := rand.Read(cfg.TokenSecret); err != nil {
			log.Fatal("could not generate token secret", "error", err)
		}
		log.Warn("no token secret set; using a random one, so every token stops working at shutdown")
	}

	cts, err := server.New(cfg)
	if err != nil {
		log.Error("could not create server", "error", err)
		os.Exit(ExitInitError)
	}
	defer cts.Close()

	if err := seedAdmin(cts, log); err != nil {
		log.Error("could not create initial admin user", "error", err)
		os.Exit(ExitInitError)
	}

	go shutdownOnSignal(cts, log)

	log.Info("starting cmdtree server", "version", version.ServerCurrent)
	if err := cts.ServeForever(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(ExitServeError)
	}
}

// settings builds the server config from the config file, environment and
// flags, and sets up logging from it. A missing secret is left nil.
func settings() (server.Config, error) {
	if pflag.NArg() > 0 {
		return server.Config{}, badUsage("Too many arguments")
	}

	var cfg server.Config
	if path := setting("config", flagConfig, EnvConfig); path != "" {
		var err error
		if cfg, err = server.LoadConfig(path); err != nil {
			return cfg, err
		}
	}

	if pflag.Lookup("log-level").Changed {
		cfg.LogLevel = *flagLogLevel
	}
	if err := logger.Configure(cfg.LogLevel, *flagLogFile); err != nil {
		return cfg, badUsage("Could not configure logging: %s", err.Error())
	}

	if addr := setting("listen", flagListen, EnvListen); addr != "" {
		if !strings.Contains(addr, ":") {
			return cfg, badUsage("Listen address %q is not in HOST:PORT or :PORT form", addr)
		}
		cfg.Listen = addr
	}

	if connStr := setting("db", flagDB, EnvDB); connStr != "" {
		db, err := server.ParseDBConnString(connStr)
		if err != nil {
			return cfg, badUsage("Not a valid DB string: %s", err.Error())
		}
		cfg.DB = db
	}

	if secret := setting("secret", flagSecret, EnvSecret); secret != "" {
		cfg.TokenSecret = []byte(secret)
	}
	if len(cfg.TokenSecret) == 0 {
		cfg.TokenSecret = nil
		return cfg, nil
	}
	for len(cfg.TokenSecret) < server.MinSecretSize {
		cfg.TokenSecret = append(cfg.TokenSecret, cfg.TokenSecret...)
	}
	if len(cfg.TokenSecret) > server.MaxSecretSize {
		return cfg, badUsage("Token secret is %d bytes, but it must be <= %d bytes", len(cfg.TokenSecret), server.MaxSecretSize)
	}
	return cfg, nil
}

// setting gives the value of the named flag if it was set, otherwise that of
// the environment variable env.
func setting(flagName string, flagVal *string, env string) string {
	if pflag.Lookup(flagName).Changed {
		return *flagVal
	}
	return os.Getenv(env)
}

// seedAdmin creates the Management account that a fresh server is
// administered through. An existing one is left alone.
func seedAdmin(cts *server.Server, log *log.Logger) error {
	_, err := cts.Backend().CreateUser(context.Background(), "admin", "password", "", level.Management)
	if errors.Is(err, serr.ErrAlreadyExists) {
		return nil
	} else if err != nil {
		return err
	}
	log.Info("added initial admin user with password 'password'")
	return nil
}

func shutdownOnSignal(cts *server.Server, log *log.Logger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	sig := <-sigs

	log.Info("shutting down", "signal", sig)
	if err := cts.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown did not complete", "error", err)
	}
}
