package globals

type ContextKey string

const (
	UserIDKey ContextKey = "userId"
	ClaimsKey ContextKey = "claims"
)

// Account roles
const (
	RoleCustomer  = "customer"
	RoleOrganizer = "eo"
	RoleAdmin     = "admin"
)

// Ticket purchase statuses
const (
	PurchaseActive = "active"
	PurchaseDone   = "done"
)
