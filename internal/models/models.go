package models

import "time"

// ItemRequest is an open ask for an item nobody has listed yet.
type ItemRequest struct {
	ID          int64     `json:"id" db:"id"`
	Description string    `json:"description" db:"description"`
	RequestorID int64     `json:"requestorId" db:"requestor_id"`
	Created     time.Time `json:"created" db:"created_at"`
}

// RequestResponse is an item listed against a request.
type RequestResponse struct {
	ItemID  int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"ownerId"`
}

type RequestWithResponses struct {
	ItemRequest
	Items []RequestResponse `json:"items"`
}
