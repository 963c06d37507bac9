package sales

// SaleStatus is the lifecycle state of a sale.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDIENTE"
	SaleStatusConfirmed SaleStatus = "CONFIRMADO"
	SaleStatusAbandoned SaleStatus = "ABANDONADO"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusPending, SaleStatusConfirmed, SaleStatusAbandoned:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is possible.
func (s SaleStatus) IsTerminal() bool {
	return s == SaleStatusConfirmed || s == SaleStatusAbandoned
}

// CanTransitionTo checks if the status can transition to the target status
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	if s != SaleStatusPending {
		return false
	}
	return target == SaleStatusConfirmed || target == SaleStatusAbandoned
}

// ItemStatus tags a cart line. Lines are never deleted by the merge path;
// they are relabelled instead.
type ItemStatus string

const (
	ItemStatusActive    ItemStatus = "ACTIVO"
	ItemStatusRemoved   ItemStatus = "ELIMINADO"
	ItemStatusSold      ItemStatus = "VENTA"
	ItemStatusAbandoned ItemStatus = "ABANDONADO"
)

// IsValid checks if the status is a valid ItemStatus
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusActive, ItemStatusRemoved, ItemStatusSold, ItemStatusAbandoned:
		return true
	}
	return false
}

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the item status can transition to the target status
func (s ItemStatus) CanTransitionTo(target ItemStatus) bool {
	switch s {
	case ItemStatusActive:
		return target == ItemStatusRemoved || target == ItemStatusSold || target == ItemStatusAbandoned
	case ItemStatusRemoved:
		return target == ItemStatusAbandoned
	case ItemStatusSold, ItemStatusAbandoned:
		return false
	}
	return false
}
