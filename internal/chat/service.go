// AngelaMos | 2026
// service.go

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/carterperez-dev/classifieds/internal/core"
	"github.com/carterperez-dev/classifieds/internal/listing"
	"github.com/carterperez-dev/classifieds/internal/realtime"
)

const (
	defaultPageSize = 30
	maxPageSize     = 100
	previewRunes    = 120
)

type ListingLookup interface {
	Lookup(ctx context.Context, id string) (*listing.Listing, error)
}

type Service struct {
	db       core.TxRunner
	repo     Repository
	repoFor  func(core.DBTX) Repository
	listings ListingLookup
	broker   realtime.Broker
	logger   *slog.Logger
}

func NewService(
	db core.TxRunner,
	repo Repository,
	listings ListingLookup,
	broker realtime.Broker,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		repo:     repo,
		repoFor:  NewRepository,
		listings: listings,
		broker:   broker,
		logger:   logger,
	}
}

// OpenRoom returns the buyer's room about a listing, or with a seller
// directly when no listing is given.
func (s *Service) OpenRoom(ctx context.Context, buyerID string, req OpenRoomRequest) (*Room, error) {
	room := &Room{ID: uuid.New().String(), BuyerID: buyerID, SellerID: req.SellerID}

	if req.ListingID != "" {
		l, err := s.listings.Lookup(ctx, req.ListingID)
		if err != nil {
			return nil, err
		}
		if l.Status != listing.StatusApproved && l.Status != listing.StatusSold {
			return nil, core.ErrNotFound
		}
		room.ListingID = &l.ID
		room.SellerID = l.SellerID
	}

	if room.SellerID == "" {
		return nil, fmt.Errorf("seller is required: %w", core.ErrInvalidInput)
	}
	if room.SellerID == buyerID {
		return nil, fmt.Errorf("cannot open a chat with yourself: %w", core.ErrInvalidInput)
	}

	return s.repo.OpenRoom(ctx, room)
}

func (s *Service) participantRoom(ctx context.Context, roomID, userID string) (*Room, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		// Non-participants cannot learn the room exists.
		return nil, core.ErrNotFound
	}
	return room, nil
}

func (s *Service) GetRoom(ctx context.Context, roomID, userID string) (*Room, error) {
	return s.participantRoom(ctx, roomID, userID)
}

func (s *Service) ListRooms(ctx context.Context, userID string) ([]RoomSummary, error) {
	return s.repo.ListRooms(ctx, userID)
}

func (s *Service) Messages(
	ctx context.Context,
	roomID, userID, cursor string,
	limit int,
) ([]Message, string, error) {
	if _, err := s.participantRoom(ctx, roomID, userID); err != nil {
		return nil, "", err
	}

	before, err := core.DecodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	limit = core.ClampLimit(limit, defaultPageSize, maxPageSize)

	msgs, err := s.repo.Messages(ctx, roomID, before, limit+1)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(msgs) > limit {
		msgs = msgs[:limit]
		last := msgs[len(msgs)-1]
		next = core.EncodeCursor(core.Cursor{At: last.CreatedAt, ID: last.ID})
	}

	return msgs, next, nil
}

// Send stores a message and moves the room preview forward atomically,
// then pushes it to both participants.
func (s *Service) Send(
	ctx context.Context,
	roomID, senderID string,
	req SendMessageRequest,
) (*Message, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" && req.ImageURL == "" {
		return nil, fmt.Errorf("message needs text or an image: %w", core.ErrInvalidInput)
	}

	room, err := s.participantRoom(ctx, roomID, senderID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		ID:       uuid.New().String(),
		RoomID:   room.ID,
		SenderID: senderID,
		Body:     body,
		ImageURL: req.ImageURL,
	}

	err = s.db.InTx(ctx, func(dbtx core.DBTX) error {
		repo := s.repoFor(dbtx)
		if err := repo.InsertMessage(ctx, msg); err != nil {
			return err
		}
		if err := repo.TouchRoom(ctx, room.ID, preview(msg), msg.CreatedAt); err != nil {
			return err
		}
		// The sender has seen everything up to their own message.
		return repo.MarkSeen(ctx, room.ID, senderID, msg.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.fanOut(ctx, room, msg)
	return msg, nil
}

func (s *Service) fanOut(ctx context.Context, room *Room, msg *Message) {
	if s.broker == nil {
		return
	}

	recipient := room.Counterpart(msg.SenderID)

	for _, userID := range []string{msg.SenderID, recipient} {
		err := realtime.PublishJSON(ctx, s.broker,
			realtime.UserTopic(userID), realtime.EventMessageCreated, msg)
		if err != nil {
			s.logger.Warn("publish message", "room_id", room.ID, "user_id", userID, "error", err)
		}
	}

	s.publishUnread(ctx, room.ID, recipient)
}

func (s *Service) publishUnread(ctx context.Context, roomID, userID string) {
	if s.broker == nil {
		return
	}

	roomUnread, err := s.repo.RoomUnread(ctx, roomID, userID)
	if err != nil {
		s.logger.Warn("count room unread", "room_id", roomID, "error", err)
		return
	}
	total, err := s.repo.TotalUnread(ctx, userID)
	if err != nil {
		s.logger.Warn("count total unread", "user_id", userID, "error", err)
		return
	}

	err = realtime.PublishJSON(ctx, s.broker,
		realtime.UserTopic(userID),
		realtime.EventUnreadUpdated,
		UnreadEvent{RoomID: roomID, RoomUnread: roomUnread, Total: total},
	)
	if err != nil {
		s.logger.Warn("publish unread", "user_id", userID, "error", err)
	}
}

func (s *Service) MarkSeen(ctx context.Context, roomID, userID string) error {
	if _, err := s.participantRoom(ctx, roomID, userID); err != nil {
		return err
	}
	if err := s.repo.MarkSeen(ctx, roomID, userID, time.Now().UTC()); err != nil {
		return err
	}

	s.publishUnread(ctx, roomID, userID)
	return nil
}

func (s *Service) TotalUnread(ctx context.Context, userID string) (int, error) {
	return s.repo.TotalUnread(ctx, userID)
}

func preview(m *Message) string {
	if m.Body == "" {
		return "[image]"
	}
	if utf8.RuneCountInString(m.Body) <= previewRunes {
		return m.Body
	}
	return string([]rune(m.Body)[:previewRunes]) + "…"
}
