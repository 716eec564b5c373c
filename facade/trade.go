package facade

import (
	"context"

	"github.com/aqua-stark/world-binding/binding/api"
	"github.com/aqua-stark/world-binding/codec"
)

// TargetTrade is the world contract owning trade offers.
var TargetTrade = api.NewTarget("Trade")

var (
	methodTradeCreateOffer = TargetTrade.NewMethod("create_trade_offer", api.Mutation,
		api.P("offered_fish_id", idShape),
		api.P("criteria", MatchCriteriaShape),
		api.P("requested_fish_id", codec.OptionShape{Elem: idShape}),
		api.P("requested_species", codec.OptionShape{Elem: SpeciesShape}),
		api.P("requested_generation", codec.OptionShape{Elem: idShape}),
		api.P("requested_traits", codec.ArrayShape{Elem: codec.FeltShape}),
		api.P("duration_hours", idShape),
	)
	methodTradeAcceptOffer = TargetTrade.NewMethod("accept_trade_offer", api.Mutation,
		api.P("offer_id", idShape),
		api.P("offered_fish_id", idShape),
	)
	methodTradeCancelOffer        = TargetTrade.NewMethod("cancel_trade_offer", api.Mutation, api.P("offer_id", idShape))
	methodTradeGetOffer           = TargetTrade.NewMethod("get_trade_offer", api.View, api.P("offer_id", idShape))
	methodTradeGetActiveOffers    = TargetTrade.NewMethod("get_active_offers", api.View, api.P("creator", codec.AddressShape))
	methodTradeGetAllActiveOffers = TargetTrade.NewMethod("get_all_active_offers", api.View)
	methodTradeGetOffersForFish   = TargetTrade.NewMethod("get_offers_for_fish", api.View, api.P("fish_id", idShape))
	methodTradeIsFishLocked       = TargetTrade.NewMethod("is_fish_locked", api.View, api.P("fish_id", idShape))
	methodTradeGetFishLockStatus  = TargetTrade.NewMethod("get_fish_lock_status", api.View, api.P("fish_id", idShape))
	methodTradeGetTotalCount      = TargetTrade.NewMethod("get_total_trades_count", api.View)
	methodTradeGetUserCount       = TargetTrade.NewMethod("get_user_trade_count", api.View, api.P("user", codec.AddressShape))
	methodTradeCleanupExpired     = TargetTrade.NewMethod("cleanup_expired_offers", api.Mutation)
)

// TradeOfferArgs are the arguments of create_trade_offer. Absent optional
// requests are sent as explicit None values.
type TradeOfferArgs struct {
	OfferedFishID       uint64
	Criteria            MatchCriteria
	RequestedFishID     *uint64
	RequestedSpecies    *Species
	RequestedGeneration *uint64
	RequestedTraits     []uint64
	DurationHours       uint64
}

func optionalID(x *uint64) codec.Option {
	if x == nil {
		return codec.None()
	}
	return codec.Some(id(*x))
}

// BuildTradeCreateTradeOffer builds a create_trade_offer call.
func BuildTradeCreateTradeOffer(args TradeOfferArgs) (*api.Descriptor, error) {
	criteria, err := args.Criteria.Encode()
	if err != nil {
		return nil, err
	}
	species := codec.None()
	if args.RequestedSpecies != nil {
		s, err := args.RequestedSpecies.Encode()
		if err != nil {
			return nil, err
		}
		species = codec.Some(s)
	}
	traits, err := codec.FeltArray(args.RequestedTraits)
	if err != nil {
		return nil, err
	}
	return methodTradeCreateOffer.Build(
		id(args.OfferedFishID),
		criteria,
		optionalID(args.RequestedFishID),
		species,
		optionalID(args.RequestedGeneration),
		traits,
		id(args.DurationHours),
	)
}

// BuildTradeAcceptTradeOffer builds an accept_trade_offer call.
func BuildTradeAcceptTradeOffer(offerID, offeredFishID uint64) (*api.Descriptor, error) {
	return methodTradeAcceptOffer.Build(id(offerID), id(offeredFishID))
}

// BuildTradeCancelTradeOffer builds a cancel_trade_offer call.
func BuildTradeCancelTradeOffer(offerID uint64) (*api.Descriptor, error) {
	return methodTradeCancelOffer.Build(id(offerID))
}

// BuildTradeGetTradeOffer builds a get_trade_offer call.
func BuildTradeGetTradeOffer(offerID uint64) (*api.Descriptor, error) {
	return methodTradeGetOffer.Build(id(offerID))
}

// BuildTradeGetActiveOffers builds a get_active_offers call.
func BuildTradeGetActiveOffers(creator string) (*api.Descriptor, error) {
	return buildWithAddress(methodTradeGetActiveOffers, creator)
}

// BuildTradeGetAllActiveOffers builds a get_all_active_offers call.
func BuildTradeGetAllActiveOffers() (*api.Descriptor, error) {
	return methodTradeGetAllActiveOffers.Build()
}

// BuildTradeGetOffersForFish builds a get_offers_for_fish call.
func BuildTradeGetOffersForFish(fishID uint64) (*api.Descriptor, error) {
	return methodTradeGetOffersForFish.Build(id(fishID))
}

// BuildTradeIsFishLocked builds an is_fish_locked call.
func BuildTradeIsFishLocked(fishID uint64) (*api.Descriptor, error) {
	return methodTradeIsFishLocked.Build(id(fishID))
}

// BuildTradeGetFishLockStatus builds a get_fish_lock_status call.
func BuildTradeGetFishLockStatus(fishID uint64) (*api.Descriptor, error) {
	return methodTradeGetFishLockStatus.Build(id(fishID))
}

// BuildTradeGetTotalTradesCount builds a get_total_trades_count call.
func BuildTradeGetTotalTradesCount() (*api.Descriptor, error) {
	return methodTradeGetTotalCount.Build()
}

// BuildTradeGetUserTradeCount builds a get_user_trade_count call.
func BuildTradeGetUserTradeCount(user string) (*api.Descriptor, error) {
	return buildWithAddress(methodTradeGetUserCount, user)
}

// BuildTradeCleanupExpiredOffers builds a cleanup_expired_offers call.
func BuildTradeCleanupExpiredOffers() (*api.Descriptor, error) {
	return methodTradeCleanupExpired.Build()
}

// Trade is the trade façade.
type Trade struct {
	backend *Backend
}

// NewTrade creates a new trade façade.
func NewTrade(backend *Backend) *Trade {
	return &Trade{backend: backend}
}

// CreateTradeOffer offers a fish for trade.
func (t *Trade) CreateTradeOffer(ctx context.Context, signer api.Signer, args TradeOfferArgs) (*api.TransactionHandle, error) {
	return t.backend.mutate(ctx, signer, methodTradeCreateOffer, func() (*api.Descriptor, error) {
		return BuildTradeCreateTradeOffer(args)
	})
}

// AcceptTradeOffer accepts an offer with one of the signer's fish.
func (t *Trade) AcceptTradeOffer(ctx context.Context, signer api.Signer, offerID, offeredFishID uint64) (*api.TransactionHandle, error) {
	return t.backend.mutate(ctx, signer, methodTradeAcceptOffer, func() (*api.Descriptor, error) {
		return BuildTradeAcceptTradeOffer(offerID, offeredFishID)
	})
}

// CancelTradeOffer cancels an offer.
func (t *Trade) CancelTradeOffer(ctx context.Context, signer api.Signer, offerID uint64) (*api.TransactionHandle, error) {
	return t.backend.mutate(ctx, signer, methodTradeCancelOffer, func() (*api.Descriptor, error) {
		return BuildTradeCancelTradeOffer(offerID)
	})
}

// GetTradeOffer returns an offer.
func (t *Trade) GetTradeOffer(ctx context.Context, offerID uint64) (api.ResultSet, error) {
	return t.backend.query(ctx, methodTradeGetOffer, func() (*api.Descriptor, error) {
		return BuildTradeGetTradeOffer(offerID)
	})
}

// GetActiveOffers returns the active offers created by creator.
func (t *Trade) GetActiveOffers(ctx context.Context, creator string) (api.ResultSet, error) {
	return t.backend.query(ctx, methodTradeGetActiveOffers, func() (*api.Descriptor, error) {
		return BuildTradeGetActiveOffers(creator)
	})
}

// GetAllActiveOffers returns every active offer.
func (t *Trade) GetAllActiveOffers(ctx context.Context) (api.ResultSet, error) {
	return t.backend.query(ctx, methodTradeGetAllActiveOffers, BuildTradeGetAllActiveOffers)
}

// GetOffersForFish returns the offers involving a fish.
func (t *Trade) GetOffersForFish(ctx context.Context, fishID uint64) (api.ResultSet, error) {
	return t.backend.query(ctx, methodTradeGetOffersForFish, func() (*api.Descriptor, error) {
		return BuildTradeGetOffersForFish(fishID)
	})
}

// IsFishLocked returns whether a fish is locked by an offer.
func (t *Trade) IsFishLocked(ctx context.Context, fishID uint64) (api.ResultSet, error) {
	return t.backend.query(ctx, methodTradeIsFishLocked, func() (*api.Descriptor, error) {
		return BuildTradeIsFishLocked(fishID)
	})
}

// GetFishLockStatus returns the lock of a fish.
func (t *Trade) GetFishLockStatus(ctx context.Context, fishID uint64) (api.ResultSet, error) {
	return t.backend.query(ctx, methodTradeGetFishLockStatus, func() (*api.Descriptor, error) {
		return BuildTradeGetFishLockStatus(fishID)
	})
}

// GetTotalTradesCount returns the number of completed trades.
func (t *Trade) GetTotalTradesCount(ctx context.Context) (api.ResultSet, error) {
	return t.backend.query(ctx, methodTradeGetTotalCount, BuildTradeGetTotalTradesCount)
}

// GetUserTradeCount returns the number of trades of user.
func (t *Trade) GetUserTradeCount(ctx context.Context, user string) (api.ResultSet, error) {
	return t.backend.query(ctx, methodTradeGetUserCount, func() (*api.Descriptor, error) {
		return BuildTradeGetUserTradeCount(user)
	})
}

// CleanupExpiredOffers removes expired offers and unlocks their fish.
func (t *Trade) CleanupExpiredOffers(ctx context.Context, signer api.Signer) (*api.TransactionHandle, error) {
	return t.backend.mutate(ctx, signer, methodTradeCleanupExpired, BuildTradeCleanupExpiredOffers)
}
