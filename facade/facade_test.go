package facade

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aqua-stark/world-binding/binding/api"
	"github.com/aqua-stark/world-binding/binding/dispatch"
	"github.com/aqua-stark/world-binding/binding/tests"
	"github.com/aqua-stark/world-binding/codec"
	"github.com/aqua-stark/world-binding/common"
	"github.com/aqua-stark/world-binding/world/manifest"
)

const testPlayer = "0x5e1f"

var testSigner = tests.StaticSigner(testPlayer)

func allCapabilities() *manifest.CapabilitySet {
	var contracts []manifest.Contract
	for i, target := range []api.Target{TargetAquaStark, TargetTrade, TargetAuctions, TargetShopCatalog, TargetDailyChallenge, TargetSession} {
		contracts = append(contracts, manifest.Contract{
			Address: "0x" + strings.Repeat("1", i+1),
			Tag:     common.DefaultNamespace.Tag(string(target)),
		})
	}
	return manifest.NewCapabilitySet(common.DefaultNamespace, "0xabc", contracts...)
}

func newTestBackend(t *testing.T, caps *manifest.CapabilitySet) (*Backend, *tests.MockTransport) {
	transport := tests.NewMockTransport()
	d, err := dispatch.New(common.DefaultNamespace, transport)
	require.NoError(t, err, "dispatch.New")
	return NewBackend(d, caps), transport
}

func requireCalldata(t *testing.T, expected string, desc *api.Descriptor) {
	inv, err := desc.Invocation(common.DefaultNamespace)
	require.NoError(t, err, "Invocation")
	require.Equal(t, expected, codec.FormatCalldata(inv.Calldata))
}

func u64(x uint64) *uint64 {
	return &x
}

func TestBuildPlayerRegister(t *testing.T) {
	require := require.New(t)

	desc, err := BuildPlayerRegister("alice")
	require.NoError(err)
	require.Equal("AquaStark", desc.Target())
	require.Equal("register", desc.Entrypoint())
	require.Equal(api.Mutation, desc.Kind())

	args := desc.Arguments()
	require.Len(args, 1)
	require.True(codec.Equal(codec.EncodeByteArray("alice"), args[0]))
}

func TestBuildersDeterministic(t *testing.T) {
	species := Betta
	builders := map[string]func() (*api.Descriptor, error){
		"register":     func() (*api.Descriptor, error) { return BuildPlayerRegister("alice") },
		"get_player":   func() (*api.Descriptor, error) { return BuildPlayerGetPlayer(testPlayer) },
		"new_aquarium": func() (*api.Descriptor, error) { return BuildAquariumNewAquarium(testPlayer, 10, 5) },
		"new_fish":     func() (*api.Descriptor, error) { return BuildFishNewFish(1, Corydoras) },
		"new_decoration": func() (*api.Descriptor, error) {
			return BuildDecorationNewDecoration(NewDecorationArgs{AquariumID: 1, Name: "Coral", Price: big.NewInt(5)})
		},
		"create_trade_offer": func() (*api.Descriptor, error) {
			return BuildTradeCreateTradeOffer(TradeOfferArgs{OfferedFishID: 3, Criteria: MatchSpecies, RequestedSpecies: &species})
		},
		"place_bid":          func() (*api.Descriptor, error) { return BuildAuctionPlaceBid(2, big.NewInt(1000)) },
		"update_item":        func() (*api.Descriptor, error) { return BuildShopUpdateItem(1, big.NewInt(9), 3, "a rock") },
		"claim_reward":       func() (*api.Descriptor, error) { return BuildChallengeClaimReward(4) },
		"create_session_key": func() (*api.Descriptor, error) { return BuildSessionCreateSessionKey(SessionKeyArgs{Permissions: []SessionAction{ActionAll}}) },
	}
	for name, fn := range builders {
		d1, err := fn()
		require.NoError(t, err, name)
		d2, err := fn()
		require.NoError(t, err, name)
		require.True(t, d1.Equal(d2), name)
		require.NotSame(t, d1, d2, name)
		require.Equal(t, name, d1.Entrypoint())
	}
}

func TestEntrypointTable(t *testing.T) {
	table := map[api.Target][]string{
		TargetAquaStark: {
			"register", "get_player", "get_username_from_address", "is_verified",
			"get_player_aquariums", "get_player_fishes", "get_player_decorations",
			"get_player_aquarium_count", "get_player_fish_count", "get_player_decoration_count",
			"new_aquarium", "get_aquarium", "get_aquarium_owner", "add_fish_to_aquarium",
			"add_decoration_to_aquarium", "move_fish_to_aquarium", "move_decoration_to_aquarium",
			"new_fish", "get_fish", "get_fish_owner", "breed_fishes", "get_parents",
			"get_fish_offspring", "get_fish_family_tree", "get_fish_ancestor",
			"new_decoration", "get_decoration", "get_decoration_owner",
		},
		TargetTrade: {
			"create_trade_offer", "accept_trade_offer", "cancel_trade_offer", "get_trade_offer",
			"get_active_offers", "get_all_active_offers", "get_offers_for_fish", "is_fish_locked",
			"get_fish_lock_status", "get_total_trades_count", "get_user_trade_count",
			"cleanup_expired_offers",
		},
		TargetAuctions:       {"start_auction", "place_bid", "end_auction", "get_active_auctions", "get_auction_by_id"},
		TargetShopCatalog:    {"add_new_item", "update_item", "get_item", "get_all_items"},
		TargetDailyChallenge: {"create_challenge", "join_challenge", "complete_challenge", "claim_reward", "get_challenge"},
		TargetSession: {
			"create_session_key", "validate_session", "renew_session", "revoke_session",
			"get_session_info", "calculate_session_time_remaining", "check_session_needs_renewal",
			"validate_session_for_action",
		},
	}
	for target, entrypoints := range table {
		for _, entrypoint := range entrypoints {
			m, ok := api.LookupMethod(string(target), entrypoint)
			require.True(t, ok, "%s::%s", target, entrypoint)
			require.Equal(t, strings.HasPrefix(entrypoint, "get_") || strings.HasPrefix(entrypoint, "is_") ||
				strings.HasPrefix(entrypoint, "calculate_") || strings.HasPrefix(entrypoint, "check_"),
				m.Kind() == api.View, "%s kind", m.FullName())
		}
	}
}

func TestCalldataLayout(t *testing.T) {
	desc, err := BuildFishNewFish(1, Betta)
	require.NoError(t, err)
	requireCalldata(t, "[0x1, 0x2]", desc)

	species := Betta
	desc, err = BuildTradeCreateTradeOffer(TradeOfferArgs{
		OfferedFishID:    3,
		Criteria:         MatchSpecies,
		RequestedSpecies: &species,
		DurationHours:    24,
	})
	require.NoError(t, err)
	requireCalldata(t, "[0x3, 0x1, 0x1, 0x0, 0x2, 0x1, 0x0, 0x18]", desc)

	desc, err = BuildTradeCreateTradeOffer(TradeOfferArgs{
		OfferedFishID:       3,
		Criteria:            MatchExactID,
		RequestedFishID:     u64(9),
		RequestedGeneration: u64(0),
		RequestedTraits:     []uint64{4, 5},
		DurationHours:       1,
	})
	require.NoError(t, err)
	requireCalldata(t, "[0x3, 0x0, 0x0, 0x9, 0x1, 0x0, 0x0, 0x2, 0x4, 0x5, 0x1]", desc)

	desc, err = BuildSessionCreateSessionKey(SessionKeyArgs{
		DurationSecs:    3600,
		MaxTransactions: 10,
		Permissions:     []SessionAction{ActionNewFish, ActionPlaceBid},
	})
	require.NoError(t, err)
	requireCalldata(t, "[0xe10, 0xa, 0x0, 0x2, 0x1, 0x7]", desc)

	desc, err = BuildAuctionStartAuction(5, 60, nil)
	require.NoError(t, err)
	requireCalldata(t, "[0x5, 0x3c, 0x0, 0x0]", desc)
}

func TestBuilderEncodingErrors(t *testing.T) {
	require := require.New(t)

	_, err := BuildDecorationNewDecoration(NewDecorationArgs{Name: strings.Repeat("x", 32)})
	require.ErrorIs(err, codec.ErrEncoding, "decoration name is too long")

	_, err = BuildPlayerGetPlayer("alice")
	require.ErrorIs(err, codec.ErrEncoding)

	_, err = BuildFishNewFish(1, Species("Shark"))
	require.ErrorIs(err, codec.ErrEncoding)

	_, err = BuildAuctionPlaceBid(1, big.NewInt(-1))
	require.ErrorIs(err, codec.ErrEncoding)
}

func TestGetFish(t *testing.T) {
	require := require.New(t)

	backend, transport := newTestBackend(t, allCapabilities())
	transport.OnCall("get_fish", func(*api.Invocation) (api.ResultSet, error) {
		return api.ResultSet{}, nil
	})

	rs, err := NewFish(backend).GetFish(context.Background(), 7)
	require.NoError(err)
	require.Equal(api.ResultSet{}, rs)

	reqs := transport.Requests()
	require.Len(reqs, 1)
	require.Equal(api.ChannelCall, reqs[0].Channel)
	require.Equal("get_fish", reqs[0].Invocation.Entrypoint)
	require.Equal("[0x7]", codec.FormatCalldata(reqs[0].Invocation.Calldata))
}

func TestMutations(t *testing.T) {
	require := require.New(t)

	backend, transport := newTestBackend(t, allCapabilities())
	ctx := context.Background()

	_, err := NewPlayer(backend).Register(ctx, testSigner, "alice")
	require.NoError(err)
	_, err = NewAquarium(backend).NewAquarium(ctx, testSigner, testPlayer, 10, 5)
	require.NoError(err)
	_, err = NewShop(backend).AddNewItem(ctx, testSigner, big.NewInt(100), 3, "castle")
	require.NoError(err)
	_, err = NewTrade(backend).CleanupExpiredOffers(ctx, testSigner)
	require.NoError(err)

	reqs := transport.Requests()
	require.Len(reqs, 4)
	for _, r := range reqs {
		require.Equal(api.ChannelExecute, r.Channel)
		require.Equal(testPlayer, r.Signer)
	}
	require.Equal("aqua_stark-ShopCatalog", reqs[2].Invocation.Tag())

	_, err = NewPlayer(backend).Register(ctx, nil, "alice")
	require.ErrorIs(err, api.ErrUnauthorized)
	require.Len(transport.Requests(), 4)
}

func TestGuardOrdering(t *testing.T) {
	ctx := context.Background()
	species := GoldFish

	calls := map[string]func(*Backend) error{
		"Player.Register": func(b *Backend) error {
			_, err := NewPlayer(b).Register(ctx, testSigner, "alice")
			return err
		},
		"Player.GetPlayerAquariums": func(b *Backend) error {
			_, err := NewPlayer(b).GetPlayerAquariums(ctx, testPlayer)
			return err
		},
		"Aquarium.MoveFishToAquarium": func(b *Backend) error {
			_, err := NewAquarium(b).MoveFishToAquarium(ctx, testSigner, 1, 2, 3)
			return err
		},
		"Fish.GetFish": func(b *Backend) error {
			_, err := NewFish(b).GetFish(ctx, 7)
			return err
		},
		"Decoration.NewDecoration": func(b *Backend) error {
			_, err := NewDecoration(b).NewDecoration(ctx, testSigner, NewDecorationArgs{Name: "Coral"})
			return err
		},
		"Trade.CreateTradeOffer": func(b *Backend) error {
			_, err := NewTrade(b).CreateTradeOffer(ctx, testSigner, TradeOfferArgs{Criteria: MatchSpecies, RequestedSpecies: &species})
			return err
		},
		"Auction.GetActiveAuctions": func(b *Backend) error {
			_, err := NewAuction(b).GetActiveAuctions(ctx)
			return err
		},
		"Shop.GetAllItems": func(b *Backend) error {
			_, err := NewShop(b).GetAllItems(ctx)
			return err
		},
		"Challenge.JoinChallenge": func(b *Backend) error {
			_, err := NewChallenge(b).JoinChallenge(ctx, testSigner, 1)
			return err
		},
		"Session.ValidateSessionForAction": func(b *Backend) error {
			_, err := NewSession(b).ValidateSessionForAction(ctx, testSigner, 1, ActionPlaceBid)
			return err
		},
	}

	for name, call := range calls {
		backend, transport := newTestBackend(t, nil)
		err := call(backend)
		require.ErrorIs(t, err, ErrModuleNotFound, name)
		require.Zero(t, transport.Count(""), name)

		backend.SetCapabilities(manifest.NewCapabilitySet(common.DefaultNamespace, "0xabc"))
		err = call(backend)
		require.ErrorIs(t, err, ErrModuleNotFound, name)
		require.Zero(t, transport.Count(""), name)

		backend.SetCapabilities(allCapabilities())
		require.NoError(t, call(backend), name)
		require.Equal(t, 1, transport.Count(""), name)
	}
}

func TestEnsureReady(t *testing.T) {
	require := require.New(t)

	err := EnsureReady(nil, "Trade")
	require.ErrorIs(err, ErrModuleNotFound)
	require.Contains(err.Error(), "Trade")

	caps := manifest.NewCapabilitySet(common.DefaultNamespace, "0xabc", manifest.Contract{Address: "0x1", Tag: "aqua_stark-Auctions"})
	err = EnsureReady(caps, "Trade")
	require.ErrorIs(err, ErrModuleNotFound)
	require.Contains(err.Error(), "Trade")
	require.NoError(EnsureReady(caps, "Auctions"))
}

func TestGuardSystems(t *testing.T) {
	require := require.New(t)

	caps := manifest.NewCapabilitySet(common.DefaultNamespace, "0xabc", manifest.Contract{
		Address: "0x1",
		Tag:     "aqua_stark-AquaStark",
		Systems: []string{"register"},
	})
	backend, transport := newTestBackend(t, caps)

	_, err := NewPlayer(backend).Register(context.Background(), testSigner, "alice")
	require.NoError(err)

	_, err = NewFish(backend).BreedFishes(context.Background(), testSigner, 1, 2)
	require.ErrorIs(err, ErrModuleNotFound)
	require.Contains(err.Error(), "breed_fishes")
	require.Equal(1, transport.Count(""))
}

func TestBackendQuery(t *testing.T) {
	require := require.New(t)

	backend, transport := newTestBackend(t, nil)
	desc, err := BuildFishGetFish(1)
	require.NoError(err)

	_, err = backend.Query(context.Background(), desc)
	require.ErrorIs(err, ErrModuleNotFound)

	backend.SetCapabilities(allCapabilities())
	_, err = backend.Query(context.Background(), desc)
	require.NoError(err)
	require.Equal(1, transport.Count("get_fish"))
	require.NotNil(backend.Dispatcher())
}
