package main

import (
	"github.com/urfave/cli/v2"
)

const (
	collectionFlagName = "collection"
	ownerFlagName      = "owner"
	accountFlagName    = "account"
	amountFlagName     = "amount"
	assetFlagName      = "asset"
	priceFlagName      = "price"
	fromFlagName       = "from"
	offerFlagName      = "offer"
	sellerFlagName     = "seller"
)

var (
	collectionFlag = &cli.StringFlag{
		Name:     collectionFlagName,
		Usage:    "collection the new asset belongs to",
		Required: true,
	}
	ownerFlag = &cli.StringFlag{
		Name:     ownerFlagName,
		Usage:    "account the new asset is assigned to",
		Required: true,
	}
	accountFlag = &cli.StringFlag{
		Name:     accountFlagName,
		Usage:    "payment account",
		Required: true,
	}
	amountFlag = &cli.Uint64Flag{
		Name:     amountFlagName,
		Usage:    "amount in the smallest unit of the payment currency",
		Required: true,
	}
	assetFlag = &cli.StringFlag{
		Name:     assetFlagName,
		Usage:    "asset reference in <collection>:<serial> format",
		Required: true,
	}
	optionalAssetFlag = &cli.StringFlag{
		Name:  assetFlagName,
		Usage: "asset reference in <collection>:<serial> format",
	}
	priceFlag = &cli.Uint64Flag{
		Name:     priceFlagName,
		Usage:    "asking price in the smallest unit of the payment currency",
		Required: true,
	}
	fromFlag = &cli.StringFlag{
		Name:     fromFlagName,
		Usage:    "account acting on the marketplace",
		Required: true,
	}
	offerFlag = &cli.Uint64Flag{
		Name:  offerFlagName,
		Usage: "amount offered for the asset, defaults to the asking price",
	}
	sellerFlag = &cli.StringFlag{
		Name:  sellerFlagName,
		Usage: "filter listings by seller account",
	}
)
