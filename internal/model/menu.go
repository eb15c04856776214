package model

// MenuCollection groups menu items into a named, toggleable menu
// (e.g. the main menu or a seasonal holiday menu).  Collections
// cannot be deleted while menu items still reference them.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique collection name.
//  Description – optional free-text description.
//  IsActive    – whether the collection is currently shown.
//  CreatedAt   – creation timestamp (ISO-8601 string).
type MenuCollection struct {
	ID          uint64  `json:"id"`          // menu_collections.id
	Name        string  `json:"name"`        // menu_collections.name
	Description *string `json:"description"` // menu_collections.description (nullable)
	IsActive    bool    `json:"isActive"`    // menu_collections.is_active
	CreatedAt   string  `json:"createdAt"`   // menu_collections.created_at
}

// MenuItem is one orderable dish or drink.  Price is stored in minor
// currency units and acts as a snapshot source: once copied onto an
// order line it is immutable history, so repricing a menu item never
// changes past orders or bills.
//
// Fields:
//  ID               – primary key identifier.
//  Name             – item name.
//  Price            – price in minor currency units.
//  Category         – grouping for search/filtering, e.g. "coffee".
//  ImageURL         – optional image for the UI.
//  Available        – whether the item can currently be ordered.
//  MenuCollectionID – collection the item belongs to.
type MenuItem struct {
	ID               uint64  `json:"id"`               // menu_items.id
	Name             string  `json:"name"`             // menu_items.name
	Price            int64   `json:"price"`            // menu_items.price
	Category         string  `json:"category"`         // menu_items.category
	ImageURL         *string `json:"imageUrl"`         // menu_items.image_url (nullable)
	Available        bool    `json:"available"`        // menu_items.available
	MenuCollectionID uint64  `json:"menuCollectionId"` // menu_items.menu_collection_id
}
