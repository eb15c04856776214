package model

// Table statuses. A table moves between available and occupied as
// orders are opened and settled; reserved is set manually by staff.
const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
	TableReserved  = "reserved"
)

// Table types as shown on the floor plan.
const (
	TableRegular = "regular"
	TableVIP     = "vip"
	TableSpecial = "special"
)

// Table represents one physical table (or a virtual one such as
// takeaway).  Status is the only mutable field after creation.
//
// Fields:
//  ID     – primary key identifier.
//  Name   – display name, e.g. "Bàn 1".
//  Type   – regular, vip or special.
//  Status – available, occupied or reserved.
type Table struct {
	ID     uint64 `json:"id"`     // tables.id
	Name   string `json:"name"`   // tables.name
	Type   string `json:"type"`   // tables.type
	Status string `json:"status"` // tables.status
}

// ValidTableStatus reports whether s is one of the accepted table statuses.
func ValidTableStatus(s string) bool {
	return s == TableAvailable || s == TableOccupied || s == TableReserved
}

// ValidTableType reports whether t is one of the accepted table types.
func ValidTableType(t string) bool {
	return t == TableRegular || t == TableVIP || t == TableSpecial
}
