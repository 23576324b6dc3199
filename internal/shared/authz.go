package shared

// Role is the closed set of user roles.
type Role string

const (
	// RoleAdmin may manage master data, settings, users and all transactions.
	RoleAdmin Role = "admin"
	// RoleCashier may create sales and return their own sales.
	RoleCashier Role = "cashier"
)

// Valid reports whether the role is a known one.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCashier
}

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	ID       string
	Username string
	Role     Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanApplyDiscount decides whether the actor may apply a sale discount.
// Admins always may; cashiers only when the store setting allows it.
func CanApplyDiscount(actor Actor, cashierDiscountAllowed bool) bool {
	if actor.IsAdmin() {
		return true
	}
	return cashierDiscountAllowed
}

// CanAccessSale decides whether the actor may view or return the given sale.
// Admins may access any sale; cashiers only their own.
func CanAccessSale(actor Actor, saleCashierID string) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.ID == saleCashierID
}
