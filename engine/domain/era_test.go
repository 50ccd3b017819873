package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEraByID(t *testing.T) {
	era, ok := EraByID("jurassic")
	require.True(t, ok)
	assert.Equal(t, "Jurassic", era.Name)
	assert.Equal(t, 201.0, era.StartMya)
	assert.Equal(t, 145.0, era.EndMya)

	_, ok = EraByID("holocene")
	assert.False(t, ok)
}

func TestEras_ChronologicalOrder(t *testing.T) {
	all := Eras()
	require.Len(t, all, 13)
	assert.Equal(t, "precambrian", all[0].ID)
	assert.Equal(t, "quaternary", all[len(all)-1].ID)
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i-1].StartMya, all[i].StartMya, "eras must run oldest to newest")
	}
}

func TestEras_ReturnsCopy(t *testing.T) {
	all := Eras()
	all[0].Name = "mutated"
	fresh := Eras()
	assert.Equal(t, "Precambrian", fresh[0].Name)
}

func TestAdjacentEras(t *testing.T) {
	adj := AdjacentEras("jurassic")
	require.Len(t, adj, 2)
	assert.Equal(t, "cretaceous", adj[0].ID)
	assert.Equal(t, "triassic", adj[1].ID)
}

func TestAdjacentEras_Endpoints(t *testing.T) {
	adj := AdjacentEras("precambrian")
	require.Len(t, adj, 1)
	assert.Equal(t, "cambrian", adj[0].ID)

	adj = AdjacentEras("quaternary")
	require.Len(t, adj, 1)
	assert.Equal(t, "neogene", adj[0].ID)
}

func TestAdjacentEras_Unknown(t *testing.T) {
	assert.Nil(t, AdjacentEras("anthropocene"))
}
