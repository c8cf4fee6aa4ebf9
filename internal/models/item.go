package models

import "time"

type Item struct {
	ID          int64  `json:"id" db:"id" yaml:"id"`
	Name        string `json:"name" db:"name" yaml:"name"`
	Description string `json:"description" db:"description" yaml:"description"`
	Available   bool   `json:"available" db:"available" yaml:"available"`
	OwnerID     int64  `json:"ownerId" db:"owner_id" yaml:"owner_id"`
	RequestID   *int64 `json:"requestId,omitempty" db:"request_id" yaml:"request_id"`
}

// ItemPatch carries a partial item update. Blank strings and a nil Available are ignored.
type ItemPatch struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
}

// ItemInfo is an item as seen by a particular caller: the owner additionally
// gets the last and next approved bookings.
type ItemInfo struct {
	Item
	LastBooking *Booking  `json:"lastBooking"`
	NextBooking *Booking  `json:"nextBooking"`
	Comments    []Comment `json:"comments"`
}

type Comment struct {
	ID         int64     `json:"id" db:"id"`
	Text       string    `json:"text" db:"text"`
	ItemID     int64     `json:"itemId" db:"item_id"`
	AuthorID   int64     `json:"authorId" db:"author_id"`
	AuthorName string    `json:"authorName" db:"author_name"`
	Created    time.Time `json:"created" db:"created_at"`
}
