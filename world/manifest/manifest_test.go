package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aqua-stark/world-binding/common"
)

const testManifest = `{
	"world": {"address": "0x0400bf8bd1b35cb4b7bd9e8c3ca1ec8a42cfb7e1bc1c1c5d1b2f9e8a6bd0a001", "name": "Aqua Stark"},
	"contracts": [
		{
			"address": "0x03c4ba4d3d6a5c6bc0c1a3b4a6b1d9c0e7a8f9b0c1d2e3f4a5b6c7d8e9f0a1b2",
			"tag": "aqua_stark-AquaStark",
			"systems": ["register", "new_fish", "get_fish"],
			"abi": []
		},
		{
			"address": "0x0123",
			"tag": "aqua_stark-Trade"
		}
	]
}`

func TestParse(t *testing.T) {
	require := require.New(t)

	m, err := Parse([]byte(testManifest))
	require.NoError(err)
	require.Len(m.Contracts, 2)
	require.Equal("AquaStark", m.Contracts[0].Target())
	require.EqualValues("aqua_stark", m.Contracts[0].Namespace())

	cs, err := m.CapabilitySet(common.DefaultNamespace)
	require.NoError(err)
	require.Equal([]string{"AquaStark", "Trade"}, cs.Targets())
	require.True(cs.Has("Trade"))
	require.False(cs.Has("Auctions"))
	require.Equal(m.World.Address, cs.World())
	require.Equal(common.DefaultNamespace, cs.Namespace())

	c, ok := cs.Contract("AquaStark")
	require.True(ok)
	require.True(c.HasSystem("new_fish"))
	require.False(c.HasSystem("breed_fishes"))
	c, _ = cs.Contract("Trade")
	require.True(c.HasSystem("anything"), "contracts without systems expose everything")

	_, err = Parse([]byte("{"))
	require.ErrorIs(err, ErrMalformedManifest)
}

func TestValidate(t *testing.T) {
	require := require.New(t)

	m := &Manifest{
		World: World{Address: "nope"},
		Contracts: []Contract{
			{Address: "0x1", Tag: "other-AquaStark"},
			{Address: "0x2", Tag: "aqua_stark-Trade"},
			{Address: "0x3", Tag: "aqua_stark-Trade"},
			{Address: "12", Tag: "aqua_stark-Auctions"},
		},
	}
	err := m.Validate(common.DefaultNamespace)
	require.ErrorIs(err, ErrMalformedManifest)
	for _, fragment := range []string{"world: address", "other-AquaStark", "duplicate target Trade", "aqua_stark-Auctions"} {
		require.Contains(err.Error(), fragment)
	}
}

func TestLoad(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "manifest_dev.json")
	require.NoError(os.WriteFile(path, []byte(testManifest), 0o600))

	cs, err := Load(path, common.DefaultNamespace)
	require.NoError(err)
	require.True(cs.Has("AquaStark"))

	_, err = Load(path, "elsewhere")
	require.ErrorIs(err, ErrMalformedManifest)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"), common.DefaultNamespace)
	require.Error(err)
}

func TestNilCapabilitySet(t *testing.T) {
	var cs *CapabilitySet
	require.False(t, cs.Has("AquaStark"))
	require.Empty(t, cs.Targets())
}
