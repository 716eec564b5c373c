package api

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aqua-stark/world-binding/codec"
	"github.com/aqua-stark/world-binding/common"
	"github.com/aqua-stark/world-binding/common/errors"
)

var (
	testTarget = NewTarget("ApiTest")

	testMethodRename = testTarget.NewMethod("rename", Mutation,
		P("id", codec.FeltShape),
		P("name", codec.ByteArrayShape),
	)
	testMethodGet = testTarget.NewMethod("get_thing", View, P("id", codec.U256Shape))
)

func TestSelector(t *testing.T) {
	expected, ok := new(big.Int).SetString("83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e", 16)
	require.True(t, ok)
	require.Zero(t, expected.Cmp(Selector("transfer")))
	require.LessOrEqual(t, Selector("get_player_aquariums").BitLen(), 250)
}

func TestMethodRegistration(t *testing.T) {
	require := require.New(t)

	require.Panics(func() { testTarget.NewMethod("rename", Mutation) }, "duplicate registration")
	require.Panics(func() { testTarget.NewMethod("CamelCase", View) }, "entrypoints are snake_case")
	require.Panics(func() { testTarget.NewMethod("no_kind", 0) })
	require.Panics(func() { NewTarget("bad target") })

	m, ok := LookupMethod("ApiTest", "rename")
	require.True(ok)
	require.Equal(testMethodRename, m)
	require.Equal("ApiTest::rename", m.FullName())
	require.Equal(ChannelExecute, m.Kind().Channel())
	require.Equal(ChannelCall, testMethodGet.Kind().Channel())

	_, ok = LookupMethod("ApiTest", "missing")
	require.False(ok)

	var found bool
	methods := Methods()
	for i, m := range methods {
		if i > 0 {
			require.Less(methods[i-1].FullName(), m.FullName())
		}
		found = found || m == testMethodGet
	}
	require.True(found)
}

func TestBuild(t *testing.T) {
	require := require.New(t)

	d1, err := testMethodRename.Build(codec.NewFelt(3), codec.EncodeByteArray("nemo"))
	require.NoError(err)
	d2, err := testMethodRename.Build(codec.NewFelt(3), codec.EncodeByteArray("nemo"))
	require.NoError(err)
	require.True(d1.Equal(d2), "builds are deterministic")
	require.NotSame(d1, d2, "descriptors are built fresh")
	require.Equal("ApiTest", d1.Target())
	require.Equal("rename", d1.Entrypoint())
	require.Equal(Mutation, d1.Kind())

	args := d1.Arguments()
	args[0] = codec.NewFelt(99)
	require.True(d1.Equal(d2), "descriptors are immutable")

	d3, err := testMethodRename.Build(codec.NewFelt(4), codec.EncodeByteArray("nemo"))
	require.NoError(err)
	require.False(d1.Equal(d3))

	_, err = testMethodRename.Build(codec.NewFelt(3))
	require.ErrorIs(err, ErrInvalidDescriptor)

	_, err = testMethodRename.Build(codec.EncodeByteArray("nemo"), codec.NewFelt(3))
	require.ErrorIs(err, codec.ErrEncoding, "arguments are never reordered")

	require.Panics(func() { testMethodGet.MustBuild(codec.NewFelt(1)) })
}

func TestInvocation(t *testing.T) {
	require := require.New(t)

	id, err := codec.EncodeU256(7)
	require.NoError(err)
	d := testMethodGet.MustBuild(id)

	inv, err := d.Invocation(common.DefaultNamespace)
	require.NoError(err)
	require.Equal("aqua_stark-ApiTest", inv.Tag())
	require.Equal("get_thing", inv.Entrypoint)
	require.Zero(Selector("get_thing").Cmp(inv.Selector))
	require.Equal("[0x7, 0x0]", codec.FormatCalldata(inv.Calldata))
}

func TestTransactionHandleEvents(t *testing.T) {
	require := require.New(t)

	h := &TransactionHandle{
		TransactionID: "0xabc",
		RawEvents: []RawEvent{
			{Keys: []string{"0x1", "aqua_stark-PlayerEventLogged"}, Data: []*big.Int{big.NewInt(1)}},
			{Keys: []string{"aqua_stark-FishCreated"}, Data: []*big.Int{big.NewInt(12), big.NewInt(5)}},
			{Keys: []string{"aqua_stark-AquariumCreated"}},
		},
	}

	id, ok := h.EventID("FishCreated")
	require.True(ok)
	require.EqualValues(12, id.Int64())

	_, ok = h.EventID("AquariumCreated")
	require.False(ok, "event without data carries no id")

	_, ok = h.EventID("DecorationCreated")
	require.False(ok)
}

func TestDispatchError(t *testing.T) {
	require := require.New(t)

	transportErr := fmt.Errorf("Transaction execution has failed: Failure reason: 0x557365726e616d6520697320746f6f206c6f6e67 ('Username is too long').")
	err := fmt.Errorf("register: %w", NewDispatchError(ChannelExecute, "AquaStark", "register", transportErr))

	require.ErrorIs(err, ErrDispatch)
	require.ErrorIs(err, transportErr)
	require.Contains(err.Error(), transportErr.Error(), "original message is preserved")

	module, code := errors.Code(err)
	require.Equal(ModuleName, module)
	require.EqualValues(2, code)

	require.Equal("Username is too long", RevertReason(err))
	require.Equal("user rejected request", RevertReason(NewDispatchError(ChannelExecute, "A", "b", fmt.Errorf("user rejected request"))))
	require.Equal(`Fish is locked`, RevertReason(fmt.Errorf(`execution reverted: "Fish is locked"`)))
	require.Empty(RevertReason(nil))
}

func TestResultSetDecode(t *testing.T) {
	require := require.New(t)

	rs := ResultSet{big.NewInt(2), big.NewInt(10), big.NewInt(11)}
	values, err := rs.Decode(codec.ArrayShape{Elem: codec.FeltShape})
	require.NoError(err)
	require.Equal(2, values[0].(codec.Array).Len())

	_, err = rs.Decode(codec.FeltShape)
	require.ErrorIs(err, codec.ErrDecoding)
}
