package qdrant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragforge/queryengine/vectorstore/filter"
)

func TestLeafToCondition_EQ(t *testing.T) {
	cond, err := leafToCondition(filter.Leaf{Field: "tenantId", Op: filter.OpEQ, Value: "acme"})
	require.NoError(t, err)
	assert.NotNil(t, cond)
}

func TestLeafToCondition_EQWrongTypeErrors(t *testing.T) {
	_, err := leafToCondition(filter.Leaf{Field: "tenantId", Op: filter.OpEQ, Value: 42})
	assert.Error(t, err)
}

func TestLeafToCondition_Intersects(t *testing.T) {
	cond, err := leafToCondition(filter.Leaf{Field: "acl", Op: filter.OpIntersects, Value: []string{"user:u1", "group:g1"}})
	require.NoError(t, err)
	assert.NotNil(t, cond)
}

func TestLeafToCondition_InWrongTypeErrors(t *testing.T) {
	_, err := leafToCondition(filter.Leaf{Field: "acl", Op: filter.OpIn, Value: "not-a-slice"})
	assert.Error(t, err)
}

func TestLeafToCondition_UnsupportedOpErrors(t *testing.T) {
	_, err := leafToCondition(filter.Leaf{Field: "acl", Op: filter.OpUnsupported})
	assert.Error(t, err)
}

func TestBuildFilter_FlattensMultipleLeaves(t *testing.T) {
	combined := filter.And(filter.EQ("tenantId", "acme"), filter.Intersects("acl", []string{"user:u1"}))
	qf, err := buildFilter(combined)
	require.NoError(t, err)
	assert.Len(t, qf.Must, 2)
}

func TestBuildFilter_PropagatesLeafError(t *testing.T) {
	_, err := buildFilter(filter.Or(filter.EQ("tenantId", "acme"), filter.EQ("tenantId", "other")))
	assert.Error(t, err)
}

func TestPointIDString_NilIsEmpty(t *testing.T) {
	assert.Equal(t, "", pointIDString(nil))
}
