package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcperrors "github.com/modelctx/mcp-go/pkg/errors"
	"github.com/modelctx/mcp-go/pkg/schema"
)

func noopHandler(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return nil, nil
}

func testTool(name string) Tool {
	return Tool{
		Name:    name,
		Schema:  schema.MustNew(),
		Handler: noopHandler,
	}
}

func TestRegisterQualifiesNames(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewToolset("calculator", testTool("add"), testTool("divide"))))

	_, ok := r.Lookup("calculator_add")
	assert.True(t, ok)
	_, ok = r.Lookup("calculator_divide")
	assert.True(t, ok)

	// The unqualified name is not exposed.
	_, ok = r.Lookup("add")
	assert.False(t, ok)

	assert.Equal(t, 2, r.Len())
}

func TestRegisterEmptyNamespace(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewToolset("", testTool("standalone"))))

	_, ok := r.Lookup("standalone")
	assert.True(t, ok)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewToolset("calc", testTool("add"))))

	err := r.Register(NewToolset("calc", testTool("add")))
	require.Error(t, err)
	assert.True(t, mcperrors.IsCategory(err, mcperrors.CategoryConfiguration))
	assert.True(t, mcperrors.IsCode(err, mcperrors.CodeDuplicateTool))

	// Collisions across namespaces on the joined name are also rejected.
	err = r.Register(NewToolset("calc_add", testTool("")))
	assert.Error(t, err)
}

func TestRegisterLeavesRegistryUnchangedOnError(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewToolset("calc", testTool("add"))))

	// Second tool collides, so the first tool of this set must not land.
	err := r.Register(NewToolset("calc", testTool("sub"), testTool("add")))
	require.Error(t, err)

	_, ok := r.Lookup("calc_sub")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegisterRejectsMalformedTools(t *testing.T) {
	tests := []struct {
		name string
		tool Tool
	}{
		{"empty name", Tool{Schema: schema.MustNew(), Handler: noopHandler}},
		{"nil handler", Tool{Name: "x", Schema: schema.MustNew()}},
		{"nil schema", Tool{Name: "x", Handler: noopHandler}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.Register(NewToolset("ns", tt.tool))
			require.Error(t, err)
			assert.True(t, mcperrors.IsCategory(err, mcperrors.CategoryConfiguration))
		})
	}
}

func TestListPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewToolset("b", testTool("second"))))
	require.NoError(t, r.Register(NewToolset("a", testTool("third"))))

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b_second", list[0].Name)
	assert.Equal(t, "a_third", list[1].Name)
	assert.NotEmpty(t, list[0].InputSchema)
}
