package facade

import (
	"context"

	"github.com/aqua-stark/world-binding/binding/api"
)

var (
	methodFishNew = TargetAquaStark.NewMethod("new_fish", api.Mutation,
		api.P("aquarium_id", idShape),
		api.P("species", SpeciesShape),
	)
	methodFishGet         = TargetAquaStark.NewMethod("get_fish", api.View, api.P("id", idShape))
	methodFishGetOwner    = TargetAquaStark.NewMethod("get_fish_owner", api.View, api.P("id", idShape))
	methodFishBreedFishes = TargetAquaStark.NewMethod("breed_fishes", api.Mutation,
		api.P("parent1_id", idShape),
		api.P("parent2_id", idShape),
	)
	methodFishGetParents      = TargetAquaStark.NewMethod("get_parents", api.View, api.P("fish_id", idShape))
	methodFishGetOffspring    = TargetAquaStark.NewMethod("get_fish_offspring", api.View, api.P("fish_id", idShape))
	methodFishGetFamilyTree   = TargetAquaStark.NewMethod("get_fish_family_tree", api.View, api.P("fish_id", idShape))
	methodFishGetFishAncestor = TargetAquaStark.NewMethod("get_fish_ancestor", api.View,
		api.P("fish_id", idShape),
		api.P("generation", idShape),
	)
)

// BuildFishNewFish builds a new_fish call.
func BuildFishNewFish(aquariumID uint64, species Species) (*api.Descriptor, error) {
	s, err := species.Encode()
	if err != nil {
		return nil, err
	}
	return methodFishNew.Build(id(aquariumID), s)
}

// BuildFishGetFish builds a get_fish call.
func BuildFishGetFish(fishID uint64) (*api.Descriptor, error) {
	return methodFishGet.Build(id(fishID))
}

// BuildFishGetFishOwner builds a get_fish_owner call.
func BuildFishGetFishOwner(fishID uint64) (*api.Descriptor, error) {
	return methodFishGetOwner.Build(id(fishID))
}

// BuildFishBreedFishes builds a breed_fishes call.
func BuildFishBreedFishes(parent1, parent2 uint64) (*api.Descriptor, error) {
	return methodFishBreedFishes.Build(id(parent1), id(parent2))
}

// BuildFishGetParents builds a get_parents call.
func BuildFishGetParents(fishID uint64) (*api.Descriptor, error) {
	return methodFishGetParents.Build(id(fishID))
}

// BuildFishGetFishOffspring builds a get_fish_offspring call.
func BuildFishGetFishOffspring(fishID uint64) (*api.Descriptor, error) {
	return methodFishGetOffspring.Build(id(fishID))
}

// BuildFishGetFishFamilyTree builds a get_fish_family_tree call.
func BuildFishGetFishFamilyTree(fishID uint64) (*api.Descriptor, error) {
	return methodFishGetFamilyTree.Build(id(fishID))
}

// BuildFishGetFishAncestor builds a get_fish_ancestor call.
func BuildFishGetFishAncestor(fishID, generation uint64) (*api.Descriptor, error) {
	return methodFishGetFishAncestor.Build(id(fishID), id(generation))
}

// Fish is the fish façade.
type Fish struct {
	backend *Backend
}

// NewFish creates a new fish façade.
func NewFish(backend *Backend) *Fish {
	return &Fish{backend: backend}
}

// NewFish mints a fish of the given species into an aquarium.
func (f *Fish) NewFish(ctx context.Context, signer api.Signer, aquariumID uint64, species Species) (*api.TransactionHandle, error) {
	return f.backend.mutate(ctx, signer, methodFishNew, func() (*api.Descriptor, error) {
		return BuildFishNewFish(aquariumID, species)
	})
}

// GetFish returns a fish.
func (f *Fish) GetFish(ctx context.Context, fishID uint64) (api.ResultSet, error) {
	return f.backend.query(ctx, methodFishGet, func() (*api.Descriptor, error) {
		return BuildFishGetFish(fishID)
	})
}

// GetFishOwner returns the owner of a fish.
func (f *Fish) GetFishOwner(ctx context.Context, fishID uint64) (api.ResultSet, error) {
	return f.backend.query(ctx, methodFishGetOwner, func() (*api.Descriptor, error) {
		return BuildFishGetFishOwner(fishID)
	})
}

// BreedFishes breeds two fish.
func (f *Fish) BreedFishes(ctx context.Context, signer api.Signer, parent1, parent2 uint64) (*api.TransactionHandle, error) {
	return f.backend.mutate(ctx, signer, methodFishBreedFishes, func() (*api.Descriptor, error) {
		return BuildFishBreedFishes(parent1, parent2)
	})
}

// GetParents returns the parents of a fish.
func (f *Fish) GetParents(ctx context.Context, fishID uint64) (api.ResultSet, error) {
	return f.backend.query(ctx, methodFishGetParents, func() (*api.Descriptor, error) {
		return BuildFishGetParents(fishID)
	})
}

// GetFishOffspring returns the offspring of a fish.
func (f *Fish) GetFishOffspring(ctx context.Context, fishID uint64) (api.ResultSet, error) {
	return f.backend.query(ctx, methodFishGetOffspring, func() (*api.Descriptor, error) {
		return BuildFishGetFishOffspring(fishID)
	})
}

// GetFishFamilyTree returns the family tree of a fish.
func (f *Fish) GetFishFamilyTree(ctx context.Context, fishID uint64) (api.ResultSet, error) {
	return f.backend.query(ctx, methodFishGetFamilyTree, func() (*api.Descriptor, error) {
		return BuildFishGetFishFamilyTree(fishID)
	})
}

// GetFishAncestor returns the ancestor of a fish the given number of
// generations back.
func (f *Fish) GetFishAncestor(ctx context.Context, fishID, generation uint64) (api.ResultSet, error) {
	return f.backend.query(ctx, methodFishGetFishAncestor, func() (*api.Descriptor, error) {
		return BuildFishGetFishAncestor(fishID, generation)
	})
}
