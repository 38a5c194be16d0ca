// AngelaMos | 2026
// repository.go

package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/classifieds/internal/core"
)

type Repository interface {
	OpenRoom(ctx context.Context, room *Room) (*Room, error)
	GetRoom(ctx context.Context, id string) (*Room, error)
	ListRooms(ctx context.Context, userID string) ([]RoomSummary, error)
	Messages(
		ctx context.Context,
		roomID string,
		before *core.Cursor,
		limit int,
	) ([]Message, error)
	InsertMessage(ctx context.Context, m *Message) error
	TouchRoom(ctx context.Context, roomID, preview string, at time.Time) error
	MarkSeen(ctx context.Context, roomID, userID string, at time.Time) error
	RoomUnread(ctx context.Context, roomID, userID string) (int, error)
	TotalUnread(ctx context.Context, userID string) (int, error)
}

const roomColumns = `
	id, listing_id, buyer_id, seller_id, last_message, last_message_at,
	buyer_seen_at, seller_seen_at, created_at`

// unreadExpr counts messages in room r sent by the other participant
// after the reader's seen marker. $1 is the reader.
const unreadExpr = `(
	SELECT COUNT(*) FROM chat_messages m
	WHERE m.room_id = r.id
	  AND m.sender_id <> $1
	  AND m.created_at > CASE WHEN r.buyer_id = $1
	                          THEN r.buyer_seen_at ELSE r.seller_seen_at END
)`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// OpenRoom returns the existing room for the same listing and pair, or
// creates it.
func (r *repository) OpenRoom(ctx context.Context, room *Room) (*Room, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_rooms (id, listing_id, buyer_id, seller_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (
			COALESCE(listing_id, '00000000-0000-0000-0000-000000000000'::uuid),
			buyer_id, seller_id
		) DO NOTHING`,
		room.ID, room.ListingID, room.BuyerID, room.SellerID)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return nil, fmt.Errorf("open room: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("open room: %w", err)
	}

	var out Room
	err = r.db.GetContext(ctx, &out, `SELECT `+roomColumns+`
		FROM chat_rooms
		WHERE listing_id IS NOT DISTINCT FROM $1
		  AND buyer_id = $2 AND seller_id = $3`,
		room.ListingID, room.BuyerID, room.SellerID)
	if err != nil {
		return nil, fmt.Errorf("open room: %w", err)
	}
	return &out, nil
}

func (r *repository) GetRoom(ctx context.Context, id string) (*Room, error) {
	var room Room
	err := r.db.GetContext(ctx, &room,
		`SELECT `+roomColumns+` FROM chat_rooms WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return &room, nil
}

func (r *repository) ListRooms(ctx context.Context, userID string) ([]RoomSummary, error) {
	query := `
		SELECT r.id, r.listing_id, r.buyer_id, r.seller_id, r.last_message,
		       r.last_message_at, r.buyer_seen_at, r.seller_seen_at, r.created_at,
		       ` + unreadExpr + ` AS unread,
		       u.id AS counterpart_id,
		       COALESCE(u.name, '') AS counterpart_name,
		       COALESCE(u.avatar_url, '') AS counterpart_avatar,
		       COALESCE(l.title, '') AS listing_title
		FROM chat_rooms r
		JOIN users u ON u.id = CASE WHEN r.buyer_id = $1
		                            THEN r.seller_id ELSE r.buyer_id END
		LEFT JOIN listings l ON l.id = r.listing_id
		WHERE r.buyer_id = $1 OR r.seller_id = $1
		ORDER BY r.last_message_at DESC, r.id DESC`

	var rooms []RoomSummary
	if err := r.db.SelectContext(ctx, &rooms, query, userID); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// Messages pages backwards from before, newest first.
func (r *repository) Messages(
	ctx context.Context,
	roomID string,
	before *core.Cursor,
	limit int,
) ([]Message, error) {
	query := `
		SELECT id, room_id, sender_id, body, image_url, created_at
		FROM chat_messages
		WHERE room_id = $1`
	args := []any{roomID}

	if before != nil {
		query += ` AND (created_at, id) < ($2, $3)`
		args = append(args, before.At, before.ID)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT %d`, limit)

	var msgs []Message
	if err := r.db.SelectContext(ctx, &msgs, query, args...); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func (r *repository) InsertMessage(ctx context.Context, m *Message) error {
	err := r.db.GetContext(ctx, &m.CreatedAt, `
		INSERT INTO chat_messages (id, room_id, sender_id, body, image_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		m.ID, m.RoomID, m.SenderID, m.Body, m.ImageURL)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *repository) TouchRoom(
	ctx context.Context,
	roomID, preview string,
	at time.Time,
) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE chat_rooms
		SET last_message = $2, last_message_at = $3
		WHERE id = $1`, roomID, preview, at)
	if err != nil {
		return fmt.Errorf("touch room: %w", err)
	}
	return core.RequireAffected(result, "touch room")
}

// MarkSeen moves the caller's seen marker forward; it never moves back.
func (r *repository) MarkSeen(
	ctx context.Context,
	roomID, userID string,
	at time.Time,
) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE chat_rooms
		SET buyer_seen_at = CASE WHEN buyer_id = $2
		                         THEN GREATEST(buyer_seen_at, $3) ELSE buyer_seen_at END,
		    seller_seen_at = CASE WHEN seller_id = $2
		                          THEN GREATEST(seller_seen_at, $3) ELSE seller_seen_at END
		WHERE id = $1 AND (buyer_id = $2 OR seller_id = $2)`, roomID, userID, at)
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return core.RequireAffected(result, "mark seen")
}

func (r *repository) RoomUnread(ctx context.Context, roomID, userID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT `+unreadExpr+` FROM chat_rooms r WHERE r.id = $2`, userID, roomID)
	if err != nil {
		return 0, fmt.Errorf("room unread: %w", err)
	}
	return n, nil
}

func (r *repository) TotalUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `
		SELECT COALESCE(SUM(`+unreadExpr+`), 0)
		FROM chat_rooms r
		WHERE r.buyer_id = $1 OR r.seller_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("total unread: %w", err)
	}
	return n, nil
}
