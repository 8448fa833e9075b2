package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/zerr"
)

func addr(dir, name string) domain.Address {
	return domain.NewAddress(dir, name)
}

func TestGraph_AddNode_Duplicate(t *testing.T) {
	g := domain.NewGraph()
	n := domain.Node{Address: addr("rust/a", "library")}

	require.NoError(t, g.AddNode(n))

	err := g.AddNode(n)
	require.ErrorContains(t, err, domain.ErrEntityAlreadyExists.Error())

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "rust/a:library", zErr.Metadata()["address"])
}

func TestGraph_Validate_Cycle(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(domain.Node{
		Address:      addr("a", "package"),
		Dependencies: []domain.Address{addr("b", "library")},
	}))
	require.NoError(t, g.AddNode(domain.Node{
		Address:      addr("b", "library"),
		Dependencies: []domain.Address{addr("a", "package")},
	}))

	err := g.Validate()
	require.ErrorContains(t, err, domain.ErrCycleDetected.Error())

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	cycle, _ := zErr.Metadata()["cycle"].(string)
	assert.Equal(t, "a:package -> b:library -> a:package", cycle)
}

func TestGraph_Validate_MissingDependency(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(domain.Node{
		Address:      addr("a", "package"),
		Dependencies: []domain.Address{addr("gone", "library")},
	}))

	err := g.Validate()
	require.ErrorContains(t, err, domain.ErrMissingDependency.Error())

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Equal(t, "gone:library", zErr.Metadata()["dependency"])
	assert.Equal(t, "a:package", zErr.Metadata()["required_by"])
}

func TestGraph_Walk(t *testing.T) {
	g := domain.NewGraph()
	// bin -> package -> sources
	require.NoError(t, g.AddNode(domain.Node{
		Address:      addr("x", "x"),
		Dependencies: []domain.Address{addr("x", "package")},
	}))
	require.NoError(t, g.AddNode(domain.Node{
		Address:      addr("x", "package"),
		Dependencies: []domain.Address{addr("x", "sources")},
	}))
	require.NoError(t, g.AddNode(domain.Node{Address: addr("x", "sources")}))

	require.NoError(t, g.Validate())

	var order []string
	for n := range g.Walk() {
		order = append(order, n.Address.String())
	}
	assert.Equal(t, []string{"x:sources", "x:package", "x:x"}, order)
}

func TestGraph_AddEdges(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(domain.Node{Address: addr("a", "package")}))
	require.NoError(t, g.AddNode(domain.Node{Address: addr("b", "library")}))

	require.NoError(t, g.AddEdges(addr("a", "package"), addr("b", "library"), addr("b", "library")))
	assert.Equal(t, []domain.Address{addr("b", "library")}, g.Dependencies(addr("a", "package")))

	err := g.AddEdges(addr("nope", "package"), addr("b", "library"))
	assert.ErrorContains(t, err, domain.ErrEntityNotFound.Error())
}
