package cache

import (
	"strings"

	"github.com/google/uuid"
)

// Cache key namespaces, one per aggregate family
const (
	NamespaceCosts     = "costs"
	NamespaceSales     = "sales"
	NamespaceSuppliers = "suppliers"
)

// Keys builds tenant-scoped cache keys of the form {prefix}:{tenant}:{namespace}:{parts...}
type Keys struct {
	Prefix string
}

// Namespace returns the key prefix covering every key of one namespace for a tenant,
// used for invalidation after writes.
func (k Keys) Namespace(tenantID uuid.UUID, namespace string) string {
	return k.prefix() + ":" + tenantID.String() + ":" + namespace + ":"
}

// Key returns a full cache key
func (k Keys) Key(tenantID uuid.UUID, namespace string, parts ...string) string {
	return k.Namespace(tenantID, namespace) + strings.Join(parts, ":")
}

func (k Keys) prefix() string {
	if k.Prefix == "" {
		return "farm"
	}
	return k.Prefix
}
