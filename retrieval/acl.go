package retrieval

import (
	"github.com/ragforge/queryengine/domain"
	"github.com/ragforge/queryengine/vectorstore/filter"
)

// BuildACLFilter combines the mandatory tenant + ACL predicate with any
// caller-supplied filter. The ACL predicate is: tenantId == user.TenantID
// AND acl intersects {userId} ∪ groupIds. This is always evaluated inside
// the backend query — callers never see documents outside their scope.
func BuildACLFilter(user domain.UserContext, caller domain.Filter) filter.Expr {
	acl := filter.And(
		filter.EQ("tenantId", user.TenantID),
		filter.Intersects("acl", user.Principals()),
	)

	if caller == nil {
		return acl
	}
	if expr, ok := caller.(filter.Expr); ok {
		return filter.And(acl, expr)
	}
	return acl
}
