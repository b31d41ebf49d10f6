package ports

import "github.com/nc80sp/marketd/internal/core/domain"

type RepoManager interface {
	Listings() domain.ListingRepository
	MarketEvents() domain.MarketEventRepository
	Close()
}
