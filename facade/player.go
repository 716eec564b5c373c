package facade

import (
	"context"

	"github.com/aqua-stark/world-binding/binding/api"
	"github.com/aqua-stark/world-binding/codec"
)

// TargetAquaStark is the world contract owning players, aquariums, fish
// and decorations.
var TargetAquaStark = api.NewTarget("AquaStark")

var (
	methodPlayerRegister                 = TargetAquaStark.NewMethod("register", api.Mutation, api.P("username", codec.ByteArrayShape))
	methodPlayerGetPlayer                = TargetAquaStark.NewMethod("get_player", api.View, api.P("address", codec.AddressShape))
	methodPlayerGetUsernameFromAddress   = TargetAquaStark.NewMethod("get_username_from_address", api.View, api.P("address", codec.AddressShape))
	methodPlayerIsVerified               = TargetAquaStark.NewMethod("is_verified", api.View, api.P("address", codec.AddressShape))
	methodPlayerGetPlayerAquariums       = TargetAquaStark.NewMethod("get_player_aquariums", api.View, api.P("address", codec.AddressShape))
	methodPlayerGetPlayerFishes          = TargetAquaStark.NewMethod("get_player_fishes", api.View, api.P("address", codec.AddressShape))
	methodPlayerGetPlayerDecorations     = TargetAquaStark.NewMethod("get_player_decorations", api.View, api.P("address", codec.AddressShape))
	methodPlayerGetPlayerAquariumCount   = TargetAquaStark.NewMethod("get_player_aquarium_count", api.View, api.P("address", codec.AddressShape))
	methodPlayerGetPlayerFishCount       = TargetAquaStark.NewMethod("get_player_fish_count", api.View, api.P("address", codec.AddressShape))
	methodPlayerGetPlayerDecorationCount = TargetAquaStark.NewMethod("get_player_decoration_count", api.View, api.P("address", codec.AddressShape))
)

func buildWithAddress(m *api.Method, address string) (*api.Descriptor, error) {
	a, err := codec.EncodeAddress(address)
	if err != nil {
		return nil, err
	}
	return m.Build(a)
}

// BuildPlayerRegister builds a register call.
func BuildPlayerRegister(username string) (*api.Descriptor, error) {
	return methodPlayerRegister.Build(codec.EncodeByteArray(username))
}

// BuildPlayerGetPlayer builds a get_player call.
func BuildPlayerGetPlayer(address string) (*api.Descriptor, error) {
	return buildWithAddress(methodPlayerGetPlayer, address)
}

// BuildPlayerGetUsernameFromAddress builds a get_username_from_address call.
func BuildPlayerGetUsernameFromAddress(address string) (*api.Descriptor, error) {
	return buildWithAddress(methodPlayerGetUsernameFromAddress, address)
}

// BuildPlayerIsVerified builds an is_verified call.
func BuildPlayerIsVerified(address string) (*api.Descriptor, error) {
	return buildWithAddress(methodPlayerIsVerified, address)
}

// BuildPlayerGetPlayerAquariums builds a get_player_aquariums call.
func BuildPlayerGetPlayerAquariums(address string) (*api.Descriptor, error) {
	return buildWithAddress(methodPlayerGetPlayerAquariums, address)
}

// BuildPlayerGetPlayerFishes builds a get_player_fishes call.
func BuildPlayerGetPlayerFishes(address string) (*api.Descriptor, error) {
	return buildWithAddress(methodPlayerGetPlayerFishes, address)
}

// BuildPlayerGetPlayerDecorations builds a get_player_decorations call.
func BuildPlayerGetPlayerDecorations(address string) (*api.Descriptor, error) {
	return buildWithAddress(methodPlayerGetPlayerDecorations, address)
}

// BuildPlayerGetPlayerAquariumCount builds a get_player_aquarium_count call.
func BuildPlayerGetPlayerAquariumCount(address string) (*api.Descriptor, error) {
	return buildWithAddress(methodPlayerGetPlayerAquariumCount, address)
}

// BuildPlayerGetPlayerFishCount builds a get_player_fish_count call.
func BuildPlayerGetPlayerFishCount(address string) (*api.Descriptor, error) {
	return buildWithAddress(methodPlayerGetPlayerFishCount, address)
}

// BuildPlayerGetPlayerDecorationCount builds a get_player_decoration_count
// call.
func BuildPlayerGetPlayerDecorationCount(address string) (*api.Descriptor, error) {
	return buildWithAddress(methodPlayerGetPlayerDecorationCount, address)
}

// Player is the player façade.
type Player struct {
	backend *Backend
}

// NewPlayer creates a new player façade.
func NewPlayer(backend *Backend) *Player {
	return &Player{backend: backend}
}

// Register registers the signer's account under username.
func (p *Player) Register(ctx context.Context, signer api.Signer, username string) (*api.TransactionHandle, error) {
	return p.backend.mutate(ctx, signer, methodPlayerRegister, func() (*api.Descriptor, error) {
		return BuildPlayerRegister(username)
	})
}

func (p *Player) queryAddress(ctx context.Context, m *api.Method, address string) (api.ResultSet, error) {
	return p.backend.query(ctx, m, func() (*api.Descriptor, error) {
		return buildWithAddress(m, address)
	})
}

// GetPlayer returns the player registered for address.
func (p *Player) GetPlayer(ctx context.Context, address string) (api.ResultSet, error) {
	return p.queryAddress(ctx, methodPlayerGetPlayer, address)
}

// GetUsernameFromAddress returns the username registered for address.
func (p *Player) GetUsernameFromAddress(ctx context.Context, address string) (api.ResultSet, error) {
	return p.queryAddress(ctx, methodPlayerGetUsernameFromAddress, address)
}

// IsVerified returns whether address belongs to a registered player.
func (p *Player) IsVerified(ctx context.Context, address string) (api.ResultSet, error) {
	return p.queryAddress(ctx, methodPlayerIsVerified, address)
}

// GetPlayerAquariums returns the aquarium ids owned by address.
func (p *Player) GetPlayerAquariums(ctx context.Context, address string) (api.ResultSet, error) {
	return p.queryAddress(ctx, methodPlayerGetPlayerAquariums, address)
}

// GetPlayerFishes returns the fish ids owned by address.
func (p *Player) GetPlayerFishes(ctx context.Context, address string) (api.ResultSet, error) {
	return p.queryAddress(ctx, methodPlayerGetPlayerFishes, address)
}

// GetPlayerDecorations returns the decoration ids owned by address.
func (p *Player) GetPlayerDecorations(ctx context.Context, address string) (api.ResultSet, error) {
	return p.queryAddress(ctx, methodPlayerGetPlayerDecorations, address)
}

// GetPlayerAquariumCount returns the number of aquariums owned by address.
func (p *Player) GetPlayerAquariumCount(ctx context.Context, address string) (api.ResultSet, error) {
	return p.queryAddress(ctx, methodPlayerGetPlayerAquariumCount, address)
}

// GetPlayerFishCount returns the number of fish owned by address.
func (p *Player) GetPlayerFishCount(ctx context.Context, address string) (api.ResultSet, error) {
	return p.queryAddress(ctx, methodPlayerGetPlayerFishCount, address)
}

// GetPlayerDecorationCount returns the number of decorations owned by
// address.
func (p *Player) GetPlayerDecorationCount(ctx context.Context, address string) (api.ResultSet, error) {
	return p.queryAddress(ctx, methodPlayerGetPlayerDecorationCount, address)
}
