package facade

import (
	"math/big"

	"github.com/aqua-stark/world-binding/codec"
)

var (
	// SpeciesShape is the shape of the fish species enum.
	SpeciesShape = codec.NewUnitEnumShape("Species",
		"AngelFish",
		"GoldFish",
		"Betta",
		"NeonTetra",
		"Corydoras",
		"Hybrid",
	)

	// MatchCriteriaShape is the shape of the trade offer match criteria enum.
	MatchCriteriaShape = codec.NewUnitEnumShape("MatchCriteria",
		"ExactId",
		"Species",
		"SpeciesAndTraits",
		"Traits",
	)

	// SessionActionShape is the shape of the session permission enum.
	SessionActionShape = codec.NewUnitEnumShape("SessionAction",
		"CreateAquarium",
		"NewFish",
		"BreedFishes",
		"MoveFish",
		"AddDecoration",
		"CreateTradeOffer",
		"AcceptTradeOffer",
		"PlaceBid",
		"All",
	)

	idShape     = codec.FeltShape
	amountShape = codec.U256Shape
)

// Species is a fish species variant name.
type Species string

const (
	AngelFish Species = "AngelFish"
	GoldFish  Species = "GoldFish"
	Betta     Species = "Betta"
	NeonTetra Species = "NeonTetra"
	Corydoras Species = "Corydoras"
	Hybrid    Species = "Hybrid"
)

// Encode encodes the species.
func (s Species) Encode() (*codec.Enum, error) {
	return SpeciesShape.Encode(string(s), nil)
}

// MatchCriteria decides which of the requested properties a trade offer
// matches on.
type MatchCriteria string

const (
	MatchExactID          MatchCriteria = "ExactId"
	MatchSpecies          MatchCriteria = "Species"
	MatchSpeciesAndTraits MatchCriteria = "SpeciesAndTraits"
	MatchTraits           MatchCriteria = "Traits"
)

// Encode encodes the match criteria.
func (c MatchCriteria) Encode() (*codec.Enum, error) {
	return MatchCriteriaShape.Encode(string(c), nil)
}

// SessionAction is an action a session key may be permitted to perform.
type SessionAction string

const (
	ActionCreateAquarium   SessionAction = "CreateAquarium"
	ActionNewFish          SessionAction = "NewFish"
	ActionBreedFishes      SessionAction = "BreedFishes"
	ActionMoveFish         SessionAction = "MoveFish"
	ActionAddDecoration    SessionAction = "AddDecoration"
	ActionCreateTradeOffer SessionAction = "CreateTradeOffer"
	ActionAcceptTradeOffer SessionAction = "AcceptTradeOffer"
	ActionPlaceBid         SessionAction = "PlaceBid"
	ActionAll              SessionAction = "All"
)

// Encode encodes the session action.
func (a SessionAction) Encode() (*codec.Enum, error) {
	return SessionActionShape.Encode(string(a), nil)
}

func id(x uint64) codec.Value {
	return codec.NewFelt(x)
}

func amount(x *big.Int) (codec.Value, error) {
	if x == nil {
		x = new(big.Int)
	}
	return codec.EncodeU256(x)
}
