package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nc80sp/marketd/internal/core/application"
	"github.com/nc80sp/marketd/internal/core/ports"
	"github.com/nc80sp/marketd/internal/infrastructure/db"
	"github.com/nc80sp/marketd/internal/infrastructure/payments"
	badgerledger "github.com/nc80sp/marketd/internal/infrastructure/payments/badger"
	"github.com/nc80sp/marketd/internal/infrastructure/registry"
	badgerregistry "github.com/nc80sp/marketd/internal/infrastructure/registry/badger"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var supportedDbs = supportedType{
	"badger":   {},
	"postgres": {},
}

type Config struct {
	Datadir  string
	LogLevel int

	DbType   string
	DbDir    string
	DbUrl    string
	Operator string

	repo     ports.RepoManager
	registry registry.Registry
	ledger   payments.Ledger
	svc      application.Service
}

func (c *Config) String() string {
	json, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	defaultDatadir  = appDataDir("marketd")
	defaultLogLevel = 4
	defaultDbType   = "badger"
	defaultOperator = "marketd"
)

// env returns a list of strings prefixed with `MARKETD_`.
// This is used as a syntax sugar for defining env vars.
func env(values ...string) []string {
	envs := make([]string, len(values))

	for i, value := range values {
		envs[i] = fmt.Sprintf("MARKETD_%s", value)
	}

	return envs
}

var (
	Datadir = &cli.StringFlag{
		Usage: "Directory to store data",
		Name:  "datadir", EnvVars: env("DATADIR"),
		Value: defaultDatadir,
	}

	LogLevel = &cli.IntFlag{
		Usage: "Logging level (0-6, where 6 is trace)",
		Name:  "log-level", EnvVars: env("LOG_LEVEL"),
		Value: defaultLogLevel,
	}

	DbType = &cli.StringFlag{
		Usage: "Database type (badger, postgres)",
		Name:  "db-type", EnvVars: env("DB_TYPE"),
		Value: defaultDbType,
	}

	DbUrl = &cli.StringFlag{
		Usage: "Postgres connection url if MARKETD_DB_TYPE is set to postgres",
		Name:  "pg-db-url", EnvVars: env("PG_DB_URL"),
	}

	Operator = &cli.StringFlag{
		Usage: "Account the marketplace acts as when transferring sold assets",
		Name:  "market-operator", EnvVars: env("MARKET_OPERATOR"),
		Value: defaultOperator,
	}
)

var Flags = []cli.Flag{
	Datadir,
	LogLevel,
	DbType,
	DbUrl,
	Operator,
}

func LoadConfig(c *cli.Context) (*Config, error) {
	if err := initDatadir(c); err != nil {
		return nil, fmt.Errorf("failed to create datadir: %s", err)
	}

	dbPath := filepath.Join(c.String(Datadir.Name), "db")

	var dbUrl string
	if c.String(DbType.Name) == "postgres" {
		dbUrl = c.String(DbUrl.Name)
		if dbUrl == "" {
			return nil, fmt.Errorf("db type set to 'postgres' but db url is missing")
		}
	}

	return &Config{
		Datadir:  c.String(Datadir.Name),
		LogLevel: c.Int(LogLevel.Name),
		DbType:   c.String(DbType.Name),
		DbDir:    dbPath,
		DbUrl:    dbUrl,
		Operator: c.String(Operator.Name),
	}, nil
}

func (c *Config) Validate() error {
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if c.Operator == "" {
		return fmt.Errorf("missing market operator identity")
	}
	return nil
}

func (c *Config) MarketService() (application.Service, error) {
	if c.svc == nil {
		if err := c.marketService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

func (c *Config) OwnershipRegistry() (registry.Registry, error) {
	if c.registry == nil {
		if err := c.registryService(); err != nil {
			return nil, err
		}
	}
	return c.registry, nil
}

func (c *Config) ValueLedger() (payments.Ledger, error) {
	if c.ledger == nil {
		if err := c.ledgerService(); err != nil {
			return nil, err
		}
	}
	return c.ledger, nil
}

func (c *Config) RepoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		if err := c.repoManager(); err != nil {
			return nil, err
		}
	}
	return c.repo, nil
}

func (c *Config) Close() {
	if c.svc != nil {
		c.svc.Stop()
	}
	if c.repo != nil {
		c.repo.Close()
	}
	if c.registry != nil {
		c.registry.Close()
	}
	if c.ledger != nil {
		c.ledger.Close()
	}
}

func (c *Config) repoManager() error {
	if c.repo != nil {
		return nil
	}

	var dataStoreConfig []interface{}
	logger := log.New()

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "postgres":
		dataStoreConfig = []interface{}{c.DbUrl, true}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		DataStoreType:   c.DbType,
		DataStoreConfig: dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) registryService() error {
	if c.registry != nil {
		return nil
	}

	svc, err := badgerregistry.NewOwnershipRegistry(c.Operator, c.Datadir, log.New())
	if err != nil {
		return err
	}

	c.registry = svc
	return nil
}

func (c *Config) ledgerService() error {
	if c.ledger != nil {
		return nil
	}

	svc, err := badgerledger.NewValueLedger(c.Datadir, log.New())
	if err != nil {
		return err
	}

	c.ledger = svc
	return nil
}

func (c *Config) marketService() error {
	if c.svc != nil {
		return nil
	}

	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.registryService(); err != nil {
		return err
	}
	if err := c.ledgerService(); err != nil {
		return err
	}

	svc, err := application.NewService(c.repo, c.registry, c.ledger, c.Operator)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

func initDatadir(c *cli.Context) error {
	datadir := c.String(Datadir.Name)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0o755)
	}
	return nil
}

func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, "."+appName)
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
