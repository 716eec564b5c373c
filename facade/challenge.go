package facade

import (
	"context"

	"github.com/aqua-stark/world-binding/binding/api"
)

// TargetDailyChallenge is the world contract owning daily challenges.
var TargetDailyChallenge = api.NewTarget("DailyChallenge")

var (
	methodChallengeCreate = TargetDailyChallenge.NewMethod("create_challenge", api.Mutation,
		api.P("realm", idShape),
		api.P("difficulty", idShape),
	)
	methodChallengeJoin     = TargetDailyChallenge.NewMethod("join_challenge", api.Mutation, api.P("challenge_id", idShape))
	methodChallengeComplete = TargetDailyChallenge.NewMethod("complete_challenge", api.Mutation, api.P("challenge_id", idShape))
	methodChallengeClaim    = TargetDailyChallenge.NewMethod("claim_reward", api.Mutation, api.P("challenge_id", idShape))
	methodChallengeGet      = TargetDailyChallenge.NewMethod("get_challenge", api.View, api.P("challenge_id", idShape))
)

// BuildChallengeCreateChallenge builds a create_challenge call.
func BuildChallengeCreateChallenge(realm, difficulty uint64) (*api.Descriptor, error) {
	return methodChallengeCreate.Build(id(realm), id(difficulty))
}

// BuildChallengeJoinChallenge builds a join_challenge call.
func BuildChallengeJoinChallenge(challengeID uint64) (*api.Descriptor, error) {
	return methodChallengeJoin.Build(id(challengeID))
}

// BuildChallengeCompleteChallenge builds a complete_challenge call.
func BuildChallengeCompleteChallenge(challengeID uint64) (*api.Descriptor, error) {
	return methodChallengeComplete.Build(id(challengeID))
}

// BuildChallengeClaimReward builds a claim_reward call.
func BuildChallengeClaimReward(challengeID uint64) (*api.Descriptor, error) {
	return methodChallengeClaim.Build(id(challengeID))
}

// BuildChallengeGetChallenge builds a get_challenge call.
func BuildChallengeGetChallenge(challengeID uint64) (*api.Descriptor, error) {
	return methodChallengeGet.Build(id(challengeID))
}

// Challenge is the daily challenge façade.
type Challenge struct {
	backend *Backend
}

// NewChallenge creates a new daily challenge façade.
func NewChallenge(backend *Backend) *Challenge {
	return &Challenge{backend: backend}
}

// CreateChallenge creates a challenge.
func (c *Challenge) CreateChallenge(ctx context.Context, signer api.Signer, realm, difficulty uint64) (*api.TransactionHandle, error) {
	return c.backend.mutate(ctx, signer, methodChallengeCreate, func() (*api.Descriptor, error) {
		return BuildChallengeCreateChallenge(realm, difficulty)
	})
}

// JoinChallenge joins a challenge.
func (c *Challenge) JoinChallenge(ctx context.Context, signer api.Signer, challengeID uint64) (*api.TransactionHandle, error) {
	return c.backend.mutate(ctx, signer, methodChallengeJoin, func() (*api.Descriptor, error) {
		return BuildChallengeJoinChallenge(challengeID)
	})
}

// CompleteChallenge marks a challenge as completed.
func (c *Challenge) CompleteChallenge(ctx context.Context, signer api.Signer, challengeID uint64) (*api.TransactionHandle, error) {
	return c.backend.mutate(ctx, signer, methodChallengeComplete, func() (*api.Descriptor, error) {
		return BuildChallengeCompleteChallenge(challengeID)
	})
}

// ClaimReward claims the reward of a completed challenge.
func (c *Challenge) ClaimReward(ctx context.Context, signer api.Signer, challengeID uint64) (*api.TransactionHandle, error) {
	return c.backend.mutate(ctx, signer, methodChallengeClaim, func() (*api.Descriptor, error) {
		return BuildChallengeClaimReward(challengeID)
	})
}

// GetChallenge returns a challenge.
func (c *Challenge) GetChallenge(ctx context.Context, challengeID uint64) (api.ResultSet, error) {
	return c.backend.query(ctx, methodChallengeGet, func() (*api.Descriptor, error) {
		return BuildChallengeGetChallenge(challengeID)
	})
}
