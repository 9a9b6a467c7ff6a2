package server

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/cmdtree/internal/logger"
	"github.com/dekarrin/cmdtree/internal/players"
	"github.com/dekarrin/cmdtree/server/dao"
	"github.com/dekarrin/cmdtree/server/dao/inmem"
	"github.com/dekarrin/cmdtree/server/dao/sqlite"
)

// Bounds on the size of a token secret, and the address listened on when none
// is configured.
const (
	MinSecretSize = 32
	MaxSecretSize = 64

	DefaultListenAddress = "localhost:8080"
)

const defaultUnauthDelayMillis = 1000

// unsafeSecret is used when no secret is configured. It is public, so tokens
// signed with it can be forged by anyone who reads this file.
var unsafeSecret = []byte("DEFAULT_TOKEN_SECRET-DO_NOT_USE_IN_PROD!")

// DBType is a kind of persistence store that command history and user accounts
// are kept in.
type DBType string

// The kinds of store. DatabaseNone is never valid to connect to.
const (
	DatabaseNone     DBType = "none"
	DatabaseSQLite   DBType = "sqlite"
	DatabaseInMemory DBType = "inmem"
)

func (dbt DBType) String() string {
	return string(dbt)
}

// needsDir returns whether a store of this type is kept in a data directory.
func (dbt DBType) needsDir() bool {
	return dbt == DatabaseSQLite
}

// Database says which store a server keeps its users and history in. It is
// written as a connection string of the form "engine" or "engine:datadir".
type Database struct {
	Type DBType

	// DataDir is the directory the store keeps its files in. Only stores whose
	// type needs one may set it.
	DataDir string
}

// ParseDBConnString parses a connection string such as "inmem" or
// "sqlite:/var/lib/cmdtree". The engine name is case-insensitive.
func ParseDBConnString(s string) (Database, error) {
	engine, dir, _ := strings.Cut(s, ":")
	db := Database{
		Type:    DBType(strings.ToLower(strings.TrimSpace(engine))),
		DataDir: strings.TrimSpace(dir),
	}

	if db.Type != DatabaseSQLite && db.Type != DatabaseInMemory {
		return Database{}, fmt.Errorf("unsupported DB engine %q; must be one of 'sqlite' or 'inmem'", engine)
	}
	if !db.Type.needsDir() && db.DataDir != "" {
		return Database{}, fmt.Errorf("%s DB engine does not take params, but got %q", db.Type, db.DataDir)
	}
	if err := db.Validate(); err != nil {
		return Database{}, err
	}
	return db, nil
}

// UnmarshalText parses a connection string so a Database can be read directly
// from a config file.
func (db *Database) UnmarshalText(text []byte) error {
	parsed, err := ParseDBConnString(string(text))
	if err != nil {
		return err
	}
	*db = parsed
	return nil
}

// String gives the connection string of db.
func (db Database) String() string {
	if db.Type.needsDir() {
		return db.Type.String() + ":" + db.DataDir
	}
	return db.Type.String()
}

// Validate returns an error if db cannot be connected to.
func (db Database) Validate() error {
	switch {
	case db.Type == DatabaseNone:
		return errors.New("'none' DB is not valid")
	case db.Type != DatabaseSQLite && db.Type != DatabaseInMemory:
		return fmt.Errorf("unknown database type: %q", db.Type)
	case db.Type.needsDir() && db.DataDir == "":
		return fmt.Errorf("%s DB engine needs a path to its data directory after ':'", db.Type)
	}
	return nil
}

// Connect opens the store db describes, creating its data directory if
// needed.
func (db Database) Connect() (dao.Store, error) {
	if err := db.Validate(); err != nil {
		return nil, err
	}

	if db.Type == DatabaseInMemory {
		return inmem.NewDatastore(), nil
	}

	if err := os.MkdirAll(db.DataDir, 0770); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := sqlite.NewDatastore(db.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite: %w", err)
	}
	return store, nil
}

// Config holds everything that can be set about how a Server runs. The zero
// value is usable once FillDefaults is called on it.
type Config struct {
	// Listen is the host:port address that clients connect to.
	Listen string

	// TokenSecret signs the tokens given to logged-in users.
	TokenSecret []byte

	// DB is the store that accounts and command history are kept in. Defaults
	// to an in-memory one that is lost when the server stops.
	DB Database

	// UnauthDelayMillis is how long, in milliseconds, to hold back responses
	// that refuse a client for lack of credentials or permission. Defaults to
	// one second. A negative value turns the delay off.
	UnauthDelayMillis int

	// LogLevel is the least severe level of log output, one of "debug",
	// "info", "warn", "error" or "fatal". Defaults to "info".
	LogLevel string

	// MessageWidth is the column that messages to connected players wrap at.
	// Defaults to players.DefaultMessageWidth. A negative value turns off
	// wrapping.
	MessageWidth int
}

// UnauthDelay gives UnauthDelayMillis as a duration. It is zero if the delay
// is turned off.
func (cfg Config) UnauthDelay() time.Duration {
	if cfg.UnauthDelayMillis < 0 {
		return 0
	}
	return time.Duration(cfg.UnauthDelayMillis) * time.Millisecond
}

// FillDefaults returns a copy of cfg with every unset field given its default.
func (cfg Config) FillDefaults() Config {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListenAddress
	}
	if cfg.TokenSecret == nil {
		cfg.TokenSecret = unsafeSecret
	}
	if cfg.DB.Type == "" || cfg.DB.Type == DatabaseNone {
		cfg.DB = Database{Type: DatabaseInMemory}
	}
	if cfg.UnauthDelayMillis == 0 {
		cfg.UnauthDelayMillis = defaultUnauthDelayMillis
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MessageWidth == 0 {
		cfg.MessageWidth = players.DefaultMessageWidth
	}
	return cfg
}

// Validate returns an error naming the first invalid field of cfg. Unset
// fields are invalid, so call it on the result of FillDefaults.
func (cfg Config) Validate() error {
	if cfg.Listen == "" {
		return errors.New("listen: address not set")
	}
	if n := len(cfg.TokenSecret); n < MinSecretSize || n > MaxSecretSize {
		return fmt.Errorf("token secret: must be %d to %d bytes, but is %d", MinSecretSize, MaxSecretSize, n)
	}
	if err := cfg.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// configFile is the TOML layout of a config file.
type configFile struct {
	Listen       string   `toml:"listen"`
	TokenSecret  string   `toml:"token_secret"`
	Database     Database `toml:"database"`
	UnauthDelay  *int     `toml:"unauth_delay"`
	LogLevel     string   `toml:"log_level"`
	MessageWidth int      `toml:"message_width"`
}

// LoadConfig reads the TOML config file at path. Keys it does not have are
// left unset.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses the contents of a TOML config file.
func ParseConfig(data []byte) (Config, error) {
	var cf configFile
	if err := toml.Unmarshal(data, &cf); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Config{
		Listen:       cf.Listen,
		DB:           cf.Database,
		LogLevel:     cf.LogLevel,
		MessageWidth: cf.MessageWidth,
	}
	if cf.TokenSecret != "" {
		cfg.TokenSecret = []byte(cf.TokenSecret)
	}
	if cf.UnauthDelay != nil {
		// zero in a file turns the delay off rather than asking for the default
		cfg.UnauthDelayMillis = *cf.UnauthDelay
		if cfg.UnauthDelayMillis == 0 {
			cfg.UnauthDelayMillis = -1
		}
	}
	return cfg, nil
}
