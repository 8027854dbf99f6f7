package handlers

import (
	"context"

	"byte_battle/internal/battle"
	"byte_battle/internal/domain"
)

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type XPHistory interface {
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.XPTransaction, error)
}

type RoomDirectory interface {
	Summary(ctx context.Context, code string) (battle.RoomSummary, bool)
	ActiveRooms() int
}

// Handler serves the REST and websocket endpoints. Users and XP are nil
// when the server runs without a database.
type Handler struct {
	Users         UserStore
	XP            XPHistory
	Rooms         RoomDirectory
	AllowedOrigin string
}

func NewHandler(rooms RoomDirectory, allowedOrigin string) *Handler {
	return &Handler{Rooms: rooms, AllowedOrigin: allowedOrigin}
}

// WithStore attaches the database-backed lookups.
func (h *Handler) WithStore(users UserStore, xp XPHistory) *Handler {
	h.Users = users
	h.XP = xp
	return h
}
