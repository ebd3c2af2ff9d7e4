// Package queue defines message payloads exchanged over the message broker.
package queue

// Exchange is the durable topic exchange carrying booking lifecycle
// events.  Routing keys are "restaurant.<id>" so consumers can subscribe
// to one venue or to everything via "restaurant.#".
const Exchange = "booking.events"

// RoutingKeyAll matches booking events from every restaurant.
const RoutingKeyAll = "restaurant.#"

// BookingEvent is published on every booking lifecycle transition.  It
// carries enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.
type BookingEvent struct {
    Event        string `json:"event"`
    BookingID    uint64 `json:"booking_id"`
    BookingRef   string `json:"booking_ref"`
    RestaurantID uint64 `json:"restaurant_id"`
    UserID       uint64 `json:"user_id"`
    SeatNumber   string `json:"seat_number"`
    SeatType     string `json:"seat_type"`
    PartySize    int    `json:"party_size"`
    BookingDate  string `json:"booking_date"`
    BookingTime  string `json:"booking_time"`
    Status       string `json:"status"`
    IsWalkIn     bool   `json:"is_walk_in"`
    CancelReason string `json:"cancel_reason,omitempty"`
    OccurredAt   string `json:"occurred_at"`
}
