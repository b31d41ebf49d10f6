package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/nc80sp/marketd/internal/core/domain"
	"github.com/nc80sp/marketd/internal/core/ports"
	badgerdb "github.com/nc80sp/marketd/internal/infrastructure/db/badger"
	pgdb "github.com/nc80sp/marketd/internal/infrastructure/db/postgres"
)

//go:embed postgres/migration/*
var pgMigration embed.FS

var (
	listingStoreTypes = map[string]func(...interface{}) (domain.ListingRepository, error){
		"badger":   badgerdb.NewListingRepository,
		"postgres": pgdb.NewListingRepository,
	}
	marketEventStoreTypes = map[string]func(...interface{}) (domain.MarketEventRepository, error){
		"badger":   badgerdb.NewMarketEventRepository,
		"postgres": pgdb.NewMarketEventRepository,
	}
)

type ServiceConfig struct {
	DataStoreType   string
	DataStoreConfig []interface{}
}

type service struct {
	listingStore     domain.ListingRepository
	marketEventStore domain.MarketEventRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	listingStoreFactory, ok := listingStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	marketEventStoreFactory, ok := marketEventStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	var listingStore domain.ListingRepository
	var marketEventStore domain.MarketEventRepository
	var err error

	switch config.DataStoreType {
	case "badger":
		listingStore, err = listingStoreFactory(config.DataStoreConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open listing store: %s", err)
		}
		marketEventStore, err = marketEventStoreFactory(config.DataStoreConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open market event store: %s", err)
		}
	case "postgres":
		if len(config.DataStoreConfig) != 2 {
			return nil, fmt.Errorf("invalid data store config for postgres")
		}

		dsn, ok := config.DataStoreConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid DSN for postgres")
		}

		autoCreate, ok := config.DataStoreConfig[1].(bool)
		if !ok {
			return nil, fmt.Errorf("invalid autocreate flag for postgres")
		}

		db, err := pgdb.OpenDb(dsn, autoCreate)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres db: %s", err)
		}

		pgDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to init postgres migration driver: %s", err)
		}

		source, err := iofs.New(pgMigration, "postgres/migration")
		if err != nil {
			return nil, fmt.Errorf("failed to embed postgres migrations: %s", err)
		}

		m, err := migrate.NewWithInstance("iofs", source, "postgres", pgDriver)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres migration instance: %s", err)
		}

		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to run postgres migrations: %s", err)
		}

		listingStore, err = listingStoreFactory(db)
		if err != nil {
			return nil, fmt.Errorf("failed to open listing store: %s", err)
		}
		marketEventStore, err = marketEventStoreFactory(db)
		if err != nil {
			return nil, fmt.Errorf("failed to open market event store: %s", err)
		}
	default:
		return nil, fmt.Errorf("unknown data store db type")
	}

	return &service{
		listingStore:     listingStore,
		marketEventStore: marketEventStore,
	}, nil
}

func (s *service) Listings() domain.ListingRepository {
	return s.listingStore
}

func (s *service) MarketEvents() domain.MarketEventRepository {
	return s.marketEventStore
}

func (s *service) Close() {
	s.listingStore.Close()
	s.marketEventStore.Close()
}
