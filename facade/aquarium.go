package facade

import (
	"context"

	"github.com/aqua-stark/world-binding/binding/api"
	"github.com/aqua-stark/world-binding/codec"
)

var (
	methodAquariumNew = TargetAquaStark.NewMethod("new_aquarium", api.Mutation,
		api.P("owner", codec.AddressShape),
		api.P("max_capacity", idShape),
		api.P("max_decorations", idShape),
	)
	methodAquariumGet      = TargetAquaStark.NewMethod("get_aquarium", api.View, api.P("id", idShape))
	methodAquariumGetOwner = TargetAquaStark.NewMethod("get_aquarium_owner", api.View, api.P("id", idShape))
	methodAquariumAddFish  = TargetAquaStark.NewMethod("add_fish_to_aquarium", api.Mutation,
		api.P("fish_id", idShape),
		api.P("aquarium_id", idShape),
	)
	methodAquariumAddDecoration = TargetAquaStark.NewMethod("add_decoration_to_aquarium", api.Mutation,
		api.P("decoration_id", idShape),
		api.P("aquarium_id", idShape),
	)
	methodAquariumMoveFish = TargetAquaStark.NewMethod("move_fish_to_aquarium", api.Mutation,
		api.P("fish_id", idShape),
		api.P("from", idShape),
		api.P("to", idShape),
	)
	methodAquariumMoveDecoration = TargetAquaStark.NewMethod("move_decoration_to_aquarium", api.Mutation,
		api.P("decoration_id", idShape),
		api.P("from", idShape),
		api.P("to", idShape),
	)
)

// BuildAquariumNewAquarium builds a new_aquarium call.
func BuildAquariumNewAquarium(owner string, maxCapacity, maxDecorations uint64) (*api.Descriptor, error) {
	a, err := codec.EncodeAddress(owner)
	if err != nil {
		return nil, err
	}
	return methodAquariumNew.Build(a, id(maxCapacity), id(maxDecorations))
}

// BuildAquariumGetAquarium builds a get_aquarium call.
func BuildAquariumGetAquarium(aquariumID uint64) (*api.Descriptor, error) {
	return methodAquariumGet.Build(id(aquariumID))
}

// BuildAquariumGetAquariumOwner builds a get_aquarium_owner call.
func BuildAquariumGetAquariumOwner(aquariumID uint64) (*api.Descriptor, error) {
	return methodAquariumGetOwner.Build(id(aquariumID))
}

// BuildAquariumAddFishToAquarium builds an add_fish_to_aquarium call.
func BuildAquariumAddFishToAquarium(fishID, aquariumID uint64) (*api.Descriptor, error) {
	return methodAquariumAddFish.Build(id(fishID), id(aquariumID))
}

// BuildAquariumAddDecorationToAquarium builds an add_decoration_to_aquarium
// call.
func BuildAquariumAddDecorationToAquarium(decorationID, aquariumID uint64) (*api.Descriptor, error) {
	return methodAquariumAddDecoration.Build(id(decorationID), id(aquariumID))
}

// BuildAquariumMoveFishToAquarium builds a move_fish_to_aquarium call.
func BuildAquariumMoveFishToAquarium(fishID, from, to uint64) (*api.Descriptor, error) {
	return methodAquariumMoveFish.Build(id(fishID), id(from), id(to))
}

// BuildAquariumMoveDecorationToAquarium builds a move_decoration_to_aquarium
// call.
func BuildAquariumMoveDecorationToAquarium(decorationID, from, to uint64) (*api.Descriptor, error) {
	return methodAquariumMoveDecoration.Build(id(decorationID), id(from), id(to))
}

// Aquarium is the aquarium façade.
type Aquarium struct {
	backend *Backend
}

// NewAquarium creates a new aquarium façade.
func NewAquarium(backend *Backend) *Aquarium {
	return &Aquarium{backend: backend}
}

// NewAquarium creates an aquarium owned by owner.
func (a *Aquarium) NewAquarium(ctx context.Context, signer api.Signer, owner string, maxCapacity, maxDecorations uint64) (*api.TransactionHandle, error) {
	return a.backend.mutate(ctx, signer, methodAquariumNew, func() (*api.Descriptor, error) {
		return BuildAquariumNewAquarium(owner, maxCapacity, maxDecorations)
	})
}

// GetAquarium returns an aquarium.
func (a *Aquarium) GetAquarium(ctx context.Context, aquariumID uint64) (api.ResultSet, error) {
	return a.backend.query(ctx, methodAquariumGet, func() (*api.Descriptor, error) {
		return BuildAquariumGetAquarium(aquariumID)
	})
}

// GetAquariumOwner returns the owner of an aquarium.
func (a *Aquarium) GetAquariumOwner(ctx context.Context, aquariumID uint64) (api.ResultSet, error) {
	return a.backend.query(ctx, methodAquariumGetOwner, func() (*api.Descriptor, error) {
		return BuildAquariumGetAquariumOwner(aquariumID)
	})
}

// AddFishToAquarium places a fish into an aquarium.
func (a *Aquarium) AddFishToAquarium(ctx context.Context, signer api.Signer, fishID, aquariumID uint64) (*api.TransactionHandle, error) {
	return a.backend.mutate(ctx, signer, methodAquariumAddFish, func() (*api.Descriptor, error) {
		return BuildAquariumAddFishToAquarium(fishID, aquariumID)
	})
}

// AddDecorationToAquarium places a decoration into an aquarium.
func (a *Aquarium) AddDecorationToAquarium(ctx context.Context, signer api.Signer, decorationID, aquariumID uint64) (*api.TransactionHandle, error) {
	return a.backend.mutate(ctx, signer, methodAquariumAddDecoration, func() (*api.Descriptor, error) {
		return BuildAquariumAddDecorationToAquarium(decorationID, aquariumID)
	})
}

// MoveFishToAquarium moves a fish between two aquariums.
func (a *Aquarium) MoveFishToAquarium(ctx context.Context, signer api.Signer, fishID, from, to uint64) (*api.TransactionHandle, error) {
	return a.backend.mutate(ctx, signer, methodAquariumMoveFish, func() (*api.Descriptor, error) {
		return BuildAquariumMoveFishToAquarium(fishID, from, to)
	})
}

// MoveDecorationToAquarium moves a decoration between two aquariums.
func (a *Aquarium) MoveDecorationToAquarium(ctx context.Context, signer api.Signer, decorationID, from, to uint64) (*api.TransactionHandle, error) {
	return a.backend.mutate(ctx, signer, methodAquariumMoveDecoration, func() (*api.Descriptor, error) {
		return BuildAquariumMoveDecorationToAquarium(decorationID, from, to)
	})
}
