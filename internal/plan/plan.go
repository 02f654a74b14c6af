package plan

// Plan describes a sellable subscription plan.
type Plan struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ProductPath string `json:"product_path"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `json:"currency"`
	Interval    string `json:"interval"`
}

// DefaultPlanID is assigned when a tenant is created from an order whose
// product path has no catalog mapping.
const DefaultPlanID = "modulyn-one"

// Catalog is static: the billing provider is the source of truth for pricing,
// this table only maps its product paths onto internal plan ids.
var catalog = []Plan{
	{
		ID:          "modulyn-one",
		Name:        "Modulyn One",
		ProductPath: "modulyn-one",
		PriceCents:  2900,
		Currency:    "USD",
		Interval:    "month",
	},
	{
		ID:          "modulyn-one-plus",
		Name:        "Modulyn One Plus",
		ProductPath: "modulyn-one-plus",
		PriceCents:  5900,
		Currency:    "USD",
		Interval:    "month",
	},
	{
		ID:          "modulyn-one-pro",
		Name:        "Modulyn One Pro",
		ProductPath: "modulyn-one-pro",
		PriceCents:  9900,
		Currency:    "USD",
		Interval:    "month",
	},
}

var byProductPath = func() map[string]string {
	m := make(map[string]string, len(catalog))
	for _, p := range catalog {
		m[p.ProductPath] = p.ID
	}
	return m
}()

// List returns the full plan catalog.
func List() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// Resolve maps a provider product path to a plan id. The second return
// reports whether the product was recognized.
func Resolve(productPath string) (string, bool) {
	id, ok := byProductPath[productPath]
	if !ok {
		return DefaultPlanID, false
	}
	return id, true
}
