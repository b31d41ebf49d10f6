package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nc80sp/marketd/internal/config"
	"github.com/nc80sp/marketd/internal/core/domain"
	"github.com/nc80sp/marketd/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Version = Version
	app.Name = "marketd"
	app.Usage = "fixed price marketplace for non-fungible assets"
	app.Flags = config.Flags
	app.Commands = append(
		app.Commands,
		&mintCommand,
		&depositCommand,
		&balanceCommand,
		&listCommand,
		&buyCommand,
		&cancelCommand,
		&getCommand,
		&listingsCommand,
		&eventsCommand,
	)

	if err := app.Run(os.Args); err != nil {
		fmt.Println(fmt.Errorf("error: %v", err))
		os.Exit(1)
	}
}

var (
	mintCommand = cli.Command{
		Name:  "mint",
		Usage: "Mint a new asset in a collection and assign it to an owner",
		Flags: []cli.Flag{collectionFlag, ownerFlag},
		Action: func(ctx *cli.Context) error {
			return mint(ctx)
		},
	}
	depositCommand = cli.Command{
		Name:  "deposit",
		Usage: "Credit a payment account",
		Flags: []cli.Flag{accountFlag, amountFlag},
		Action: func(ctx *cli.Context) error {
			return deposit(ctx)
		},
	}
	balanceCommand = cli.Command{
		Name:  "balance",
		Usage: "Show the balance of a payment account",
		Flags: []cli.Flag{accountFlag},
		Action: func(ctx *cli.Context) error {
			return balance(ctx)
		},
	}
	listCommand = cli.Command{
		Name:  "list",
		Usage: "Put an owned asset up for sale at a fixed price",
		Flags: []cli.Flag{assetFlag, priceFlag, fromFlag},
		Action: func(ctx *cli.Context) error {
			return listItem(ctx)
		},
	}
	buyCommand = cli.Command{
		Name:  "buy",
		Usage: "Buy a listed asset, paying the seller from the buyer account",
		Flags: []cli.Flag{assetFlag, fromFlag, offerFlag},
		Action: func(ctx *cli.Context) error {
			return buyItem(ctx)
		},
	}
	cancelCommand = cli.Command{
		Name:  "cancel",
		Usage: "Cancel an open listing",
		Flags: []cli.Flag{assetFlag, fromFlag},
		Action: func(ctx *cli.Context) error {
			return cancelListing(ctx)
		},
	}
	getCommand = cli.Command{
		Name:  "get",
		Usage: "Show the listing of an asset",
		Flags: []cli.Flag{assetFlag},
		Action: func(ctx *cli.Context) error {
			return getListing(ctx)
		},
	}
	listingsCommand = cli.Command{
		Name:  "listings",
		Usage: "Show all open listings, optionally filtered by seller",
		Flags: []cli.Flag{sellerFlag},
		Action: func(ctx *cli.Context) error {
			return getListings(ctx)
		},
	}
	eventsCommand = cli.Command{
		Name:  "events",
		Usage: "Show the market event history, optionally scoped to an asset",
		Flags: []cli.Flag{optionalAssetFlag},
		Action: func(ctx *cli.Context) error {
			return getEvents(ctx)
		},
	}
)

func mint(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	defer cfg.Close()

	registry, err := cfg.OwnershipRegistry()
	if err != nil {
		return err
	}

	asset, err := registry.Mint(
		context.Background(), ctx.String(collectionFlagName), ctx.String(ownerFlagName),
	)
	if err != nil {
		return err
	}

	fmt.Println(asset.String())
	return nil
}

func deposit(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	defer cfg.Close()

	ledger, err := cfg.ValueLedger()
	if err != nil {
		return err
	}

	account := ctx.String(accountFlagName)
	if err := ledger.Deposit(
		context.Background(), account, ctx.Uint64(amountFlagName),
	); err != nil {
		return err
	}

	newBalance, err := ledger.BalanceOf(context.Background(), account)
	if err != nil {
		return err
	}

	fmt.Println(newBalance)
	return nil
}

func balance(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	defer cfg.Close()

	ledger, err := cfg.ValueLedger()
	if err != nil {
		return err
	}

	accountBalance, err := ledger.BalanceOf(context.Background(), ctx.String(accountFlagName))
	if err != nil {
		return err
	}

	fmt.Println(accountBalance)
	return nil
}

func listItem(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	defer cfg.Close()

	asset, err := parseAsset(ctx)
	if err != nil {
		return err
	}

	registry, err := cfg.OwnershipRegistry()
	if err != nil {
		return err
	}

	svc, err := cfg.MarketService()
	if err != nil {
		return err
	}

	seller := ctx.String(fromFlagName)

	// The marketplace needs transfer authorization to settle the sale later.
	if err := registry.Approve(
		context.Background(), asset, seller, cfg.Operator,
	); err != nil {
		return err
	}

	if err := svc.ListItem(
		context.Background(), asset, ctx.Uint64(priceFlagName), seller,
	); err != nil {
		return err
	}

	fmt.Printf("listed %s at %d\n", asset, ctx.Uint64(priceFlagName))
	return nil
}

func buyItem(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	defer cfg.Close()

	asset, err := parseAsset(ctx)
	if err != nil {
		return err
	}

	svc, err := cfg.MarketService()
	if err != nil {
		return err
	}

	offered := ctx.Uint64(offerFlagName)
	if offered == 0 {
		listing, err := svc.GetListing(context.Background(), asset)
		if err != nil {
			return err
		}
		offered = listing.Price
	}

	if err := svc.BuyItem(
		context.Background(), asset, offered, ctx.String(fromFlagName),
	); err != nil {
		return err
	}

	fmt.Printf("bought %s for %d\n", asset, offered)
	return nil
}

func cancelListing(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	defer cfg.Close()

	asset, err := parseAsset(ctx)
	if err != nil {
		return err
	}

	svc, err := cfg.MarketService()
	if err != nil {
		return err
	}

	if err := svc.CancelListing(
		context.Background(), asset, ctx.String(fromFlagName),
	); err != nil {
		return err
	}

	fmt.Printf("canceled listing of %s\n", asset)
	return nil
}

func getListing(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	defer cfg.Close()

	asset, err := parseAsset(ctx)
	if err != nil {
		return err
	}

	svc, err := cfg.MarketService()
	if err != nil {
		return err
	}

	listing, err := svc.GetListing(context.Background(), asset)
	if err != nil {
		return err
	}

	fmt.Println(listing.String())
	return nil
}

func getListings(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	defer cfg.Close()

	svc, err := cfg.MarketService()
	if err != nil {
		return err
	}

	var listings []domain.Listing
	if seller := ctx.String(sellerFlagName); seller != "" {
		listings, err = svc.GetListingsBySeller(context.Background(), seller)
	} else {
		listings, err = svc.GetAllListings(context.Background())
	}
	if err != nil {
		return err
	}

	return printJSON(listings)
}

func getEvents(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	defer cfg.Close()

	var events []domain.MarketEvent
	if ctx.IsSet(assetFlagName) {
		asset, err := parseAsset(ctx)
		if err != nil {
			return err
		}

		svc, err := cfg.MarketService()
		if err != nil {
			return err
		}

		events, err = svc.GetEventHistory(context.Background(), asset)
		if err != nil {
			return err
		}
	} else {
		repo, err := cfg.RepoManager()
		if err != nil {
			return err
		}

		events, err = repo.MarketEvents().GetAllEvents(context.Background())
		if err != nil {
			return err
		}
	}

	return printJSON(events)
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %s", err)
	}

	log.SetLevel(log.Level(cfg.LogLevel))
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	return cfg, nil
}

func parseAsset(ctx *cli.Context) (domain.AssetRef, error) {
	return parseAssetRef(ctx.String(assetFlagName))
}

func parseAssetRef(ref string) (domain.AssetRef, error) {
	var asset domain.AssetRef
	if err := asset.FromString(ref); err != nil {
		return domain.AssetRef{}, errors.INVALID_ASSET_REF.Wrap(err).
			WithMetadata(errors.AssetRefMetadata{Ref: ref})
	}
	return asset, nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
