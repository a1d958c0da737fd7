package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEQ_String(t *testing.T) {
	assert.Equal(t, "tenantId = 'acme'", EQ("tenantId", "acme").String())
}

func TestIntersects_String(t *testing.T) {
	assert.Equal(t, "acl INTERSECTS ('user:u1', 'group:g1')", Intersects("acl", []string{"user:u1", "group:g1"}).String())
}

func TestAnd_SkipsNilOperands(t *testing.T) {
	combined := And(EQ("tenantId", "acme"), nil, Intersects("acl", []string{"user:u1"}))
	assert.Equal(t, "tenantId = 'acme' AND acl INTERSECTS ('user:u1')", combined.String())
}

func TestFlatten_DecomposesConjunction(t *testing.T) {
	combined := And(EQ("tenantId", "acme"), Intersects("acl", []string{"user:u1", "group:g1"}))
	leaves := Flatten(combined)

	require := assert.New(t)
	require.Len(leaves, 2)
	require.Equal("tenantId", leaves[0].Field)
	require.Equal(OpEQ, leaves[0].Op)
	require.Equal("acme", leaves[0].Value)
	require.Equal("acl", leaves[1].Field)
	require.Equal(OpIntersects, leaves[1].Op)
	require.Equal([]string{"user:u1", "group:g1"}, leaves[1].Value)
}

func TestFlatten_SingleLeaf(t *testing.T) {
	leaves := Flatten(EQ("tenantId", "acme"))
	assert.Len(t, leaves, 1)
	assert.Equal(t, OpEQ, leaves[0].Op)
}

func TestFlatten_NilExpr(t *testing.T) {
	assert.Nil(t, Flatten(nil))
}

func TestFlatten_UnsupportedDisjunction(t *testing.T) {
	leaves := Flatten(Or(EQ("tenantId", "acme"), EQ("tenantId", "other")))
	assert.Len(t, leaves, 1)
	assert.Equal(t, OpUnsupported, leaves[0].Op)
}
