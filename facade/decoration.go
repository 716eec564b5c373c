package facade

import (
	"context"
	"math/big"

	"github.com/aqua-stark/world-binding/binding/api"
	"github.com/aqua-stark/world-binding/codec"
)

var (
	methodDecorationNew = TargetAquaStark.NewMethod("new_decoration", api.Mutation,
		api.P("aquarium_id", idShape),
		api.P("name", codec.ShortStringShape),
		api.P("description", codec.ShortStringShape),
		api.P("price", amountShape),
		api.P("rarity", idShape),
	)
	methodDecorationGet      = TargetAquaStark.NewMethod("get_decoration", api.View, api.P("id", idShape))
	methodDecorationGetOwner = TargetAquaStark.NewMethod("get_decoration_owner", api.View, api.P("id", idShape))
)

// NewDecorationArgs are the arguments of new_decoration. Name and
// description must each fit a single slot.
type NewDecorationArgs struct {
	AquariumID  uint64
	Name        string
	Description string
	Price       *big.Int
	Rarity      uint64
}

// BuildDecorationNewDecoration builds a new_decoration call.
func BuildDecorationNewDecoration(args NewDecorationArgs) (*api.Descriptor, error) {
	name, err := codec.EncodeShortString(args.Name)
	if err != nil {
		return nil, err
	}
	description, err := codec.EncodeShortString(args.Description)
	if err != nil {
		return nil, err
	}
	price, err := amount(args.Price)
	if err != nil {
		return nil, err
	}
	return methodDecorationNew.Build(id(args.AquariumID), name, description, price, id(args.Rarity))
}

// BuildDecorationGetDecoration builds a get_decoration call.
func BuildDecorationGetDecoration(decorationID uint64) (*api.Descriptor, error) {
	return methodDecorationGet.Build(id(decorationID))
}

// BuildDecorationGetDecorationOwner builds a get_decoration_owner call.
func BuildDecorationGetDecorationOwner(decorationID uint64) (*api.Descriptor, error) {
	return methodDecorationGetOwner.Build(id(decorationID))
}

// Decoration is the decoration façade.
type Decoration struct {
	backend *Backend
}

// NewDecoration creates a new decoration façade.
func NewDecoration(backend *Backend) *Decoration {
	return &Decoration{backend: backend}
}

// NewDecoration mints a decoration into an aquarium.
func (d *Decoration) NewDecoration(ctx context.Context, signer api.Signer, args NewDecorationArgs) (*api.TransactionHandle, error) {
	return d.backend.mutate(ctx, signer, methodDecorationNew, func() (*api.Descriptor, error) {
		return BuildDecorationNewDecoration(args)
	})
}

// GetDecoration returns a decoration.
func (d *Decoration) GetDecoration(ctx context.Context, decorationID uint64) (api.ResultSet, error) {
	return d.backend.query(ctx, methodDecorationGet, func() (*api.Descriptor, error) {
		return BuildDecorationGetDecoration(decorationID)
	})
}

// GetDecorationOwner returns the owner of a decoration.
func (d *Decoration) GetDecorationOwner(ctx context.Context, decorationID uint64) (api.ResultSet, error) {
	return d.backend.query(ctx, methodDecorationGetOwner, func() (*api.Descriptor, error) {
		return BuildDecorationGetDecorationOwner(decorationID)
	})
}
