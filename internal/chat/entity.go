// AngelaMos | 2026
// entity.go

package chat

import (
	"time"
)

type Room struct {
	ID            string    `db:"id"              json:"id"`
	ListingID     *string   `db:"listing_id"      json:"listing_id,omitempty"`
	BuyerID       string    `db:"buyer_id"        json:"buyer_id"`
	SellerID      string    `db:"seller_id"       json:"seller_id"`
	LastMessage   string    `db:"last_message"    json:"last_message"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`
	BuyerSeenAt   time.Time `db:"buyer_seen_at"   json:"-"`
	SellerSeenAt  time.Time `db:"seller_seen_at"  json:"-"`
	CreatedAt     time.Time `db:"created_at"      json:"created_at"`
}

func (r *Room) HasParticipant(userID string) bool {
	return userID != "" && (r.BuyerID == userID || r.SellerID == userID)
}

// Counterpart returns the other participant.
func (r *Room) Counterpart(userID string) string {
	if r.BuyerID == userID {
		return r.SellerID
	}
	return r.BuyerID
}

// RoomSummary is a room as listed for one participant.
type RoomSummary struct {
	Room
	Unread            int    `db:"unread"             json:"unread"`
	CounterpartID     string `db:"counterpart_id"     json:"counterpart_id"`
	CounterpartName   string `db:"counterpart_name"   json:"counterpart_name"`
	CounterpartAvatar string `db:"counterpart_avatar" json:"counterpart_avatar"`
	ListingTitle      string `db:"listing_title"      json:"listing_title"`
}

type Message struct {
	ID        string    `db:"id"         json:"id"`
	RoomID    string    `db:"room_id"    json:"room_id"`
	SenderID  string    `db:"sender_id"  json:"sender_id"`
	Body      string    `db:"body"       json:"body"`
	ImageURL  string    `db:"image_url"  json:"image_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type OpenRoomRequest struct {
	ListingID string `json:"listing_id" validate:"required_without=SellerID,omitempty,uuid"`
	SellerID  string `json:"seller_id"  validate:"required_without=ListingID,omitempty,uuid"`
}

type SendMessageRequest struct {
	Body     string `json:"body"      validate:"max=4000"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

type UnreadResponse struct {
	Unread int `json:"unread"`
}

// UnreadEvent is the payload of unread.updated.
type UnreadEvent struct {
	RoomID     string `json:"room_id"`
	RoomUnread int    `json:"room_unread"`
	Total      int    `json:"total"`
}
