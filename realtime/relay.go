package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// ChangeChannel is the Postgres NOTIFY channel fed by the notify_change trigger.
const ChangeChannel = "interclasses_changes"

// ChangeEvent is the trigger payload: the table written, the operation and
// the affected row id.
type ChangeEvent struct {
	Table     string `json:"table"`
	Operation string `json:"op"`
	ID        string `json:"id"`
}

// Broadcaster is the part of Hub the relay needs.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message Message)
}

// Relay forwards store change notifications to display rooms. It never
// originates events: writers only perform plain writes and the database
// trigger publishes them.
type Relay struct {
	listener *pq.Listener
	hub      Broadcaster
	logger   *slog.Logger
}

func NewRelay(dsn string, hub Broadcaster, logger *slog.Logger) *Relay {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("change listener event", slog.Int("event", int(ev)), slog.Any("error", err))
		}
	}
	return &Relay{
		listener: pq.NewListener(dsn, 10*time.Second, time.Minute, reportProblem),
		hub:      hub,
		logger:   logger,
	}
}

// Run listens until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	if err := r.listener.Listen(ChangeChannel); err != nil {
		return err
	}
	defer r.listener.Close()

	r.logger.Info("change relay listening", slog.String("channel", ChangeChannel))
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-r.listener.Notify:
			// nil after a reconnect; displays refetch on the next event
			if n == nil {
				continue
			}
			r.Dispatch(n.Extra)
		case <-time.After(90 * time.Second):
			if err := r.listener.Ping(); err != nil {
				r.logger.Warn("change listener ping failed", slog.Any("error", err))
			}
		}
	}
}

// Dispatch routes one raw notification payload.
func (r *Relay) Dispatch(payload string) {
	var ev ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		r.logger.Warn("malformed change payload", slog.String("payload", payload), slog.Any("error", err))
		return
	}
	Route(r.hub, ev)
}

// Route sends ev to the scoreboard room, and bracket changes also to the
// bracket's own room.
func Route(hub Broadcaster, ev ChangeEvent) {
	msg := Message{Type: ev.Table + "_" + ev.Operation, Payload: ev}
	hub.BroadcastToRoom(RoomScoreboard, msg)
	if ev.Table == "chaves_torneio" && ev.ID != "" {
		hub.BroadcastToRoom(BracketRoom(ev.ID), msg)
	}
}
