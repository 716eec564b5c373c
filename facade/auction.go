package facade

import (
	"context"
	"math/big"

	"github.com/aqua-stark/world-binding/binding/api"
)

// TargetAuctions is the world contract owning fish auctions.
var TargetAuctions = api.NewTarget("Auctions")

var (
	methodAuctionStart = TargetAuctions.NewMethod("start_auction", api.Mutation,
		api.P("fish_id", idShape),
		api.P("duration_secs", idShape),
		api.P("reserve_price", amountShape),
	)
	methodAuctionPlaceBid = TargetAuctions.NewMethod("place_bid", api.Mutation,
		api.P("auction_id", idShape),
		api.P("amount", amountShape),
	)
	methodAuctionEnd       = TargetAuctions.NewMethod("end_auction", api.Mutation, api.P("auction_id", idShape))
	methodAuctionGetActive = TargetAuctions.NewMethod("get_active_auctions", api.View)
	methodAuctionGetByID   = TargetAuctions.NewMethod("get_auction_by_id", api.View, api.P("auction_id", idShape))
)

// BuildAuctionStartAuction builds a start_auction call.
func BuildAuctionStartAuction(fishID, durationSecs uint64, reservePrice *big.Int) (*api.Descriptor, error) {
	price, err := amount(reservePrice)
	if err != nil {
		return nil, err
	}
	return methodAuctionStart.Build(id(fishID), id(durationSecs), price)
}

// BuildAuctionPlaceBid builds a place_bid call.
func BuildAuctionPlaceBid(auctionID uint64, bid *big.Int) (*api.Descriptor, error) {
	a, err := amount(bid)
	if err != nil {
		return nil, err
	}
	return methodAuctionPlaceBid.Build(id(auctionID), a)
}

// BuildAuctionEndAuction builds an end_auction call.
func BuildAuctionEndAuction(auctionID uint64) (*api.Descriptor, error) {
	return methodAuctionEnd.Build(id(auctionID))
}

// BuildAuctionGetActiveAuctions builds a get_active_auctions call.
func BuildAuctionGetActiveAuctions() (*api.Descriptor, error) {
	return methodAuctionGetActive.Build()
}

// BuildAuctionGetAuctionByID builds a get_auction_by_id call.
func BuildAuctionGetAuctionByID(auctionID uint64) (*api.Descriptor, error) {
	return methodAuctionGetByID.Build(id(auctionID))
}

// Auction is the auction façade.
type Auction struct {
	backend *Backend
}

// NewAuction creates a new auction façade.
func NewAuction(backend *Backend) *Auction {
	return &Auction{backend: backend}
}

// StartAuction puts a fish up for auction.
func (a *Auction) StartAuction(ctx context.Context, signer api.Signer, fishID, durationSecs uint64, reservePrice *big.Int) (*api.TransactionHandle, error) {
	return a.backend.mutate(ctx, signer, methodAuctionStart, func() (*api.Descriptor, error) {
		return BuildAuctionStartAuction(fishID, durationSecs, reservePrice)
	})
}

// PlaceBid bids on an auction.
func (a *Auction) PlaceBid(ctx context.Context, signer api.Signer, auctionID uint64, bid *big.Int) (*api.TransactionHandle, error) {
	return a.backend.mutate(ctx, signer, methodAuctionPlaceBid, func() (*api.Descriptor, error) {
		return BuildAuctionPlaceBid(auctionID, bid)
	})
}

// EndAuction settles an auction.
func (a *Auction) EndAuction(ctx context.Context, signer api.Signer, auctionID uint64) (*api.TransactionHandle, error) {
	return a.backend.mutate(ctx, signer, methodAuctionEnd, func() (*api.Descriptor, error) {
		return BuildAuctionEndAuction(auctionID)
	})
}

// GetActiveAuctions returns the running auctions.
func (a *Auction) GetActiveAuctions(ctx context.Context) (api.ResultSet, error) {
	return a.backend.query(ctx, methodAuctionGetActive, BuildAuctionGetActiveAuctions)
}

// GetAuctionByID returns an auction.
func (a *Auction) GetAuctionByID(ctx context.Context, auctionID uint64) (api.ResultSet, error) {
	return a.backend.query(ctx, methodAuctionGetByID, func() (*api.Descriptor, error) {
		return BuildAuctionGetAuctionByID(auctionID)
	})
}
