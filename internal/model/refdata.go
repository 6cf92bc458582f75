package model

// RefEntity is one row of reference data (category, merchant, payment method
// or tag). The ledger service names the id field differently per kind
// ("categoryId", "merchantId", ...); the client normalizes all of them into
// this shape using a RefKind descriptor instead of guessing from titles.
type RefEntity struct {
	ID   string
	Name string
	Type string // category type (EXPENSE/INCOME) where the kind carries one
}

// RefKind describes one reference-data collection: its endpoint path, the
// name of its id field on the wire, and whether rows are type-scoped.
type RefKind struct {
	Name    string // singular, for messages
	Path    string // request path, e.g. "/categories"
	IDField string // wire id field, e.g. "categoryId"
	Typed   bool   // true if rows carry a category type
}

var (
	KindCategory      = RefKind{Name: "category", Path: "/categories", IDField: "categoryId", Typed: true}
	KindMerchant      = RefKind{Name: "merchant", Path: "/merchants", IDField: "merchantId"}
	KindPaymentMethod = RefKind{Name: "payment method", Path: "/payment-methods", IDField: "paymentMethodId"}
	KindTag           = RefKind{Name: "tag", Path: "/tags", IDField: "tagId"}
)

// RefKinds lists every reference-data collection the client consumes.
func RefKinds() []RefKind {
	return []RefKind{KindCategory, KindMerchant, KindPaymentMethod, KindTag}
}
