package ws

import (
	"encoding/json"

	"log/slog"
)

// Subscriber abstracts a streaming client.
type Subscriber interface {
	Send([]byte) error
	Close()
}

// Hub manages subscription groups and fans events out to them. Delivery
// is fire-and-forget: nothing is persisted, and a client that is offline
// at publish time re-derives state through the read API on reconnect.
// A single goroutine owns the group table, so deliveries within one group
// arrive in publish order.
type Hub struct {
	logger  *slog.Logger
	groups  map[string]map[Subscriber]struct{}
	joined  map[Subscriber]map[string]struct{}
	join    chan subscription
	leave   chan subscription
	drop    chan Subscriber
	publish chan message
}

// message couples a payload with its target group.
type message struct {
	group   string
	payload []byte
}

// subscription defines join/leave requests.
type subscription struct {
	group  string
	client Subscriber
}

// envelope is the wire shape of a published event.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// NewHub creates an initialized Hub.
func NewHub(logger *slog.Logger) *Hub {
	h := &Hub{
		logger:  logger,
		groups:  make(map[string]map[Subscriber]struct{}),
		joined:  make(map[Subscriber]map[string]struct{}),
		join:    make(chan subscription),
		leave:   make(chan subscription),
		drop:    make(chan Subscriber),
		publish: make(chan message),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.join:
			h.addToGroup(sub.group, sub.client)
		case sub := <-h.leave:
			h.removeFromGroup(sub.group, sub.client)
		case client := <-h.drop:
			for group := range h.joined[client] {
				h.removeFromGroup(group, client)
			}
			client.Close()
		case msg := <-h.publish:
			for client := range h.groups[msg.group] {
				if err := client.Send(msg.payload); err != nil {
					for group := range h.joined[client] {
						h.removeFromGroup(group, client)
					}
					client.Close()
				}
			}
		}
	}
}

func (h *Hub) addToGroup(group string, client Subscriber) {
	if _, ok := h.groups[group]; !ok {
		h.groups[group] = make(map[Subscriber]struct{})
	}
	h.groups[group][client] = struct{}{}
	if _, ok := h.joined[client]; !ok {
		h.joined[client] = make(map[string]struct{})
	}
	h.joined[client][group] = struct{}{}
}

func (h *Hub) removeFromGroup(group string, client Subscriber) {
	if clients, ok := h.groups[group]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.groups, group)
		}
	}
	if groups, ok := h.joined[client]; ok {
		delete(groups, group)
		if len(groups) == 0 {
			delete(h.joined, client)
		}
	}
}

// Join subscribes a client to a group. Joining twice is a no-op.
func (h *Hub) Join(group string, client Subscriber) {
	h.join <- subscription{group: group, client: client}
}

// Leave unsubscribes a client from a group. Leaving a group the client
// never joined is a no-op.
func (h *Hub) Leave(group string, client Subscriber) {
	h.leave <- subscription{group: group, client: client}
}

// Drop removes a client from every group and closes it. Called when the
// underlying connection goes away.
func (h *Hub) Drop(client Subscriber) {
	h.drop <- client
}

// Publish broadcasts a typed event to all clients currently joined to a
// group. Clients whose send fails are dropped.
func (h *Hub) Publish(group, event string, data any) {
	payload, err := json.Marshal(envelope{Event: event, Data: data})
	if err != nil {
		h.logger.Warn("event payload marshal failed", "group", group, "event", event, "error", err)
		return
	}
	h.publish <- message{group: group, payload: payload}
}
