// internal/domain/resource.go
package domain

// Resource is one (collection, file) pair processed by the seeder.
type Resource struct {
	Collection string `yaml:"collection"`
	Path       string `yaml:"path"`
}

// DefaultResources is the fixed seed mapping, processed in order.
func DefaultResources() []Resource {
	return []Resource{
		{Collection: "users", Path: "data/users.json"},
		{Collection: "listings", Path: "data/listings.json"},
		{Collection: "agreements", Path: "data/agreements.json"},
	}
}
