package enum

// ── Group A: State machines ──

// OrderStatus is strictly ordered: PENDING < PROCESSING < DELIVERING < COMPLETED.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusDelivering OrderStatus = "DELIVERING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
)

// OrderStatuses lists every status in progression order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusDelivering,
	OrderStatusCompleted,
}

// Rank returns the position of s in the status progression, or -1 if unknown.
func (s OrderStatus) Rank() int {
	for i, st := range OrderStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool { return s.Rank() >= 0 }

// TransactionKind is the direction of a loyalty transaction.
type TransactionKind string

const (
	TransactionEarn   TransactionKind = "EARN"
	TransactionRedeem TransactionKind = "REDEEM"
)

// ── Group B: Catalog labels ──

// PricingMode decides how a catalog entry's unit price scales.
type PricingMode string

const (
	PricingPerPax  PricingMode = "PER_PAX"
	PricingFixed   PricingMode = "FIXED"
	PricingPerUnit PricingMode = "PER_UNIT"
)

// Valid reports whether m is a known pricing mode.
func (m PricingMode) Valid() bool {
	switch m {
	case PricingPerPax, PricingFixed, PricingPerUnit:
		return true
	}
	return false
}

// Category is a menu category or a build-your-own category.
type Category string

// Menu categories.
const (
	CategoryNasiKotak Category = "Nasi Kotak"
	CategoryTumpeng   Category = "Tumpeng"
	CategoryPrasmanan Category = "Prasmanan"
	CategoryAqiqah    Category = "Aqiqah"
	CategorySnackBox  Category = "Snack Box"
	CategoryKue       Category = "Kue"
	CategorySyukuran  Category = "Syukuran"
	CategoryWedding   Category = "Wedding"
	CategoryMinuman   Category = "Minuman"
	CategoryLainnya   Category = "Lainnya"
)

// Build-your-own categories.
const (
	CategoryKarbo      Category = "Karbo"
	CategoryAyam       Category = "Ayam"
	CategoryDaging     Category = "Daging"
	CategorySeafood    Category = "Seafood"
	CategorySayur      Category = "Sayur"
	CategoryPendamping Category = "Pendamping"
	CategoryDessert    Category = "Dessert"
)

var categories = map[Category]bool{
	CategoryNasiKotak: true, CategoryTumpeng: true, CategoryPrasmanan: true,
	CategoryAqiqah: true, CategorySnackBox: true, CategoryKue: true,
	CategorySyukuran: true, CategoryWedding: true, CategoryMinuman: true,
	CategoryLainnya: true, CategoryKarbo: true, CategoryAyam: true,
	CategoryDaging: true, CategorySeafood: true, CategorySayur: true,
	CategoryPendamping: true, CategoryDessert: true,
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool { return categories[c] }

// DateRange restricts order history listings.
type DateRange string

const (
	RangeLastMonth   DateRange = "LAST_MONTH"
	RangeLast3Months DateRange = "LAST_3_MONTHS"
	RangeAllTime     DateRange = "ALL_TIME"
)

// Valid reports whether r is a known date range.
func (r DateRange) Valid() bool {
	switch r {
	case RangeLastMonth, RangeLast3Months, RangeAllTime:
		return true
	}
	return false
}

// ── Group C: Session roles ──

const (
	RoleMember = "MEMBER"
	RoleStaff  = "STAFF"
)
