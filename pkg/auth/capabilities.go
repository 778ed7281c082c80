package auth

import "github.com/freshkart/orders-backend/pkg/enums"

// Capability is a discrete permission checked at the service boundary.
// Authorization decisions are made against capabilities, not raw role
// comparisons, so a role's grant set can change without touching call sites.
type Capability string

const (
	// CapabilityOrderCreate allows placing new orders.
	CapabilityOrderCreate Capability = "order:create"
	// CapabilityOrderAdvance allows forward lifecycle transitions
	// (confirmed -> out_for_delivery -> delivered).
	CapabilityOrderAdvance Capability = "order:advance"
	// CapabilityOrderCancel allows canceling a non-terminal order.
	CapabilityOrderCancel Capability = "order:cancel"
	// CapabilityOrderListAll allows reading every buyer's orders.
	CapabilityOrderListAll Capability = "order:list_all"
)

var roleCapabilities = map[enums.MemberRole][]Capability{
	enums.MemberRoleCustomer: {
		CapabilityOrderCreate,
		CapabilityOrderCancel,
	},
	enums.MemberRoleOperator: {
		CapabilityOrderAdvance,
		CapabilityOrderCancel,
		CapabilityOrderListAll,
	},
}

// RoleHas reports whether the role's grant set includes the capability.
func RoleHas(role enums.MemberRole, cap Capability) bool {
	for _, granted := range roleCapabilities[role] {
		if granted == cap {
			return true
		}
	}
	return false
}
