package facade

import (
	"context"

	"github.com/aqua-stark/world-binding/binding/api"
	"github.com/aqua-stark/world-binding/codec"
)

// TargetSession is the world contract owning session keys.
var TargetSession = api.NewTarget("session")

var (
	methodSessionCreateKey = TargetSession.NewMethod("create_session_key", api.Mutation,
		api.P("duration", idShape),
		api.P("max_transactions", idShape),
		api.P("session_type", idShape),
		api.P("permissions", codec.ArrayShape{Elem: SessionActionShape}),
	)
	methodSessionValidate = TargetSession.NewMethod("validate_session", api.Mutation, api.P("session_id", idShape))
	methodSessionRenew    = TargetSession.NewMethod("renew_session", api.Mutation,
		api.P("session_id", idShape),
		api.P("new_duration", idShape),
		api.P("new_max_tx", idShape),
	)
	methodSessionRevoke        = TargetSession.NewMethod("revoke_session", api.Mutation, api.P("session_id", idShape))
	methodSessionGetInfo       = TargetSession.NewMethod("get_session_info", api.View, api.P("session_id", idShape))
	methodSessionTimeRemaining = TargetSession.NewMethod("calculate_session_time_remaining", api.View, api.P("session_id", idShape))
	methodSessionNeedsRenewal  = TargetSession.NewMethod("check_session_needs_renewal", api.View, api.P("session_id", idShape))
	methodSessionForAction     = TargetSession.NewMethod("validate_session_for_action", api.Mutation,
		api.P("session_id", idShape),
		api.P("action", SessionActionShape),
	)
)

// SessionKeyArgs are the arguments of create_session_key.
type SessionKeyArgs struct {
	DurationSecs    uint64
	MaxTransactions uint64
	SessionType     uint64
	Permissions     []SessionAction
}

// BuildSessionCreateSessionKey builds a create_session_key call.
func BuildSessionCreateSessionKey(args SessionKeyArgs) (*api.Descriptor, error) {
	permissions := make([]codec.Value, 0, len(args.Permissions))
	for _, p := range args.Permissions {
		e, err := p.Encode()
		if err != nil {
			return nil, err
		}
		permissions = append(permissions, e)
	}
	arr, err := codec.NewArray(permissions...)
	if err != nil {
		return nil, err
	}
	return methodSessionCreateKey.Build(id(args.DurationSecs), id(args.MaxTransactions), id(args.SessionType), arr)
}

// BuildSessionValidateSession builds a validate_session call.
func BuildSessionValidateSession(sessionID uint64) (*api.Descriptor, error) {
	return methodSessionValidate.Build(id(sessionID))
}

// BuildSessionRenewSession builds a renew_session call.
func BuildSessionRenewSession(sessionID, newDurationSecs, newMaxTransactions uint64) (*api.Descriptor, error) {
	return methodSessionRenew.Build(id(sessionID), id(newDurationSecs), id(newMaxTransactions))
}

// BuildSessionRevokeSession builds a revoke_session call.
func BuildSessionRevokeSession(sessionID uint64) (*api.Descriptor, error) {
	return methodSessionRevoke.Build(id(sessionID))
}

// BuildSessionGetSessionInfo builds a get_session_info call.
func BuildSessionGetSessionInfo(sessionID uint64) (*api.Descriptor, error) {
	return methodSessionGetInfo.Build(id(sessionID))
}

// BuildSessionCalculateSessionTimeRemaining builds a
// calculate_session_time_remaining call.
func BuildSessionCalculateSessionTimeRemaining(sessionID uint64) (*api.Descriptor, error) {
	return methodSessionTimeRemaining.Build(id(sessionID))
}

// BuildSessionCheckSessionNeedsRenewal builds a check_session_needs_renewal
// call.
func BuildSessionCheckSessionNeedsRenewal(sessionID uint64) (*api.Descriptor, error) {
	return methodSessionNeedsRenewal.Build(id(sessionID))
}

// BuildSessionValidateSessionForAction builds a validate_session_for_action
// call.
func BuildSessionValidateSessionForAction(sessionID uint64, action SessionAction) (*api.Descriptor, error) {
	a, err := action.Encode()
	if err != nil {
		return nil, err
	}
	return methodSessionForAction.Build(id(sessionID), a)
}

// Session is the session key façade.
type Session struct {
	backend *Backend
}

// NewSession creates a new session façade.
func NewSession(backend *Backend) *Session {
	return &Session{backend: backend}
}

// CreateSessionKey creates a session key for the signer.
func (s *Session) CreateSessionKey(ctx context.Context, signer api.Signer, args SessionKeyArgs) (*api.TransactionHandle, error) {
	return s.backend.mutate(ctx, signer, methodSessionCreateKey, func() (*api.Descriptor, error) {
		return BuildSessionCreateSessionKey(args)
	})
}

// ValidateSession validates a session, consuming one of its transactions.
func (s *Session) ValidateSession(ctx context.Context, signer api.Signer, sessionID uint64) (*api.TransactionHandle, error) {
	return s.backend.mutate(ctx, signer, methodSessionValidate, func() (*api.Descriptor, error) {
		return BuildSessionValidateSession(sessionID)
	})
}

// RenewSession extends a session.
func (s *Session) RenewSession(ctx context.Context, signer api.Signer, sessionID, newDurationSecs, newMaxTransactions uint64) (*api.TransactionHandle, error) {
	return s.backend.mutate(ctx, signer, methodSessionRenew, func() (*api.Descriptor, error) {
		return BuildSessionRenewSession(sessionID, newDurationSecs, newMaxTransactions)
	})
}

// RevokeSession revokes a session.
func (s *Session) RevokeSession(ctx context.Context, signer api.Signer, sessionID uint64) (*api.TransactionHandle, error) {
	return s.backend.mutate(ctx, signer, methodSessionRevoke, func() (*api.Descriptor, error) {
		return BuildSessionRevokeSession(sessionID)
	})
}

// GetSessionInfo returns a session.
func (s *Session) GetSessionInfo(ctx context.Context, sessionID uint64) (api.ResultSet, error) {
	return s.backend.query(ctx, methodSessionGetInfo, func() (*api.Descriptor, error) {
		return BuildSessionGetSessionInfo(sessionID)
	})
}

// CalculateSessionTimeRemaining returns the remaining lifetime of a
// session.
func (s *Session) CalculateSessionTimeRemaining(ctx context.Context, sessionID uint64) (api.ResultSet, error) {
	return s.backend.query(ctx, methodSessionTimeRemaining, func() (*api.Descriptor, error) {
		return BuildSessionCalculateSessionTimeRemaining(sessionID)
	})
}

// CheckSessionNeedsRenewal returns whether a session is close to expiry.
func (s *Session) CheckSessionNeedsRenewal(ctx context.Context, sessionID uint64) (api.ResultSet, error) {
	return s.backend.query(ctx, methodSessionNeedsRenewal, func() (*api.Descriptor, error) {
		return BuildSessionCheckSessionNeedsRenewal(sessionID)
	})
}

// ValidateSessionForAction validates that a session permits action.
func (s *Session) ValidateSessionForAction(ctx context.Context, signer api.Signer, sessionID uint64, action SessionAction) (*api.TransactionHandle, error) {
	return s.backend.mutate(ctx, signer, methodSessionForAction, func() (*api.Descriptor, error) {
		return BuildSessionValidateSessionForAction(sessionID, action)
	})
}
