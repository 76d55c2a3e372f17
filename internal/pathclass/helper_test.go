package pathclass

import "github.com/domelive/vfs2db/internal/schema"

// buildCacheForTest hand-builds a Cache shaped like the customers/orders
// fixture, using only schema.Table's exported fields — everything
// pathclass reads does not depend on the FK-grouping cache that
// schema.Build additionally populates.
func buildCacheForTest() *schema.Cache {
	return &schema.Cache{
		Tables: []schema.Table{
			{
				Name: "customers",
				PK:   []string{"id"},
				Attr: []string{"name"},
			},
			{
				Name: "orders",
				PK:   []string{"id"},
				Attr: []string{"item"},
				FKs: []schema.ForeignKey{
					{From: "customer_id", ReferencedTable: "customers", ReferencedColumn: "id"},
				},
			},
		},
	}
}
