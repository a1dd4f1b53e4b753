package models

// Message types exchanged over the realtime connection. Inbound types come
// from the client, outbound types are pushed by the server. The full set is
// enumerated here so the lifecycle handler can switch exhaustively.
const (
	// Inbound
	TypeSubscribe          = "subscribe"
	TypeSubscribeDashboard = "subscribe_dashboard"
	TypeSubscribeUser      = "subscribe_user"
	TypePing               = "ping"

	// Outbound
	TypeRsvpUpdate          = "rsvp_update"
	TypeEventUpdate         = "event_update"
	TypeInviteAccepted      = "invite_accepted"
	TypeSubscribed          = "subscribed"
	TypeDashboardSubscribed = "dashboard_subscribed"
	TypeUserSubscribed      = "user_subscribed"
	TypePong                = "pong"
	TypeError               = "error"
)

// ClientMessage is the inbound envelope. Only Type is always present; the
// remaining fields depend on the message kind.
type ClientMessage struct {
	Type       string   `json:"type"`
	EventSlug  string   `json:"eventSlug,omitempty"`
	EventSlugs []string `json:"eventSlugs,omitempty"`
	UserID     string   `json:"userId,omitempty"`
	Token      string   `json:"token,omitempty"`
}

// Activity is a denormalized activity-log entry shipped alongside updates
// for client display.
type Activity struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Message   string  `json:"message"`
	Comment   *string `json:"comment"`
	CreatedAt string  `json:"createdAt"`
}

type RsvpInfo struct {
	ID      string  `json:"id"`
	UserID  *string `json:"userId"`
	Status  string  `json:"status"`
	Comment *string `json:"comment"`
	Name    string  `json:"name"`
}

type RsvpCounts struct {
	RsvpCount     int `json:"rsvpCount"`
	WaitlistCount int `json:"waitlistCount"`
}

// RsvpUpdatePayload is broadcast on an event topic when an RSVP changes.
type RsvpUpdatePayload struct {
	Type       string     `json:"type"`
	EventSlug  string     `json:"eventSlug"`
	Rsvp       RsvpInfo   `json:"rsvp"`
	Counts     RsvpCounts `json:"counts"`
	Activities []Activity `json:"activities"`
}

type EventInfo struct {
	Location     string  `json:"location"`
	Datetime     string  `json:"datetime"`
	EndDatetime  string  `json:"endDatetime"`
	MinPlayers   int     `json:"minPlayers"`
	MaxPlayers   int     `json:"maxPlayers"`
	Description  *string `json:"description"`
	AllowSharing bool    `json:"allowSharing"`
}

// EventUpdatePayload is broadcast on an event topic when event details change.
type EventUpdatePayload struct {
	Type      string    `json:"type"`
	EventSlug string    `json:"eventSlug"`
	Event     EventInfo `json:"event"`
	Activity  *Activity `json:"activity"`
}

// InviteAcceptedPayload is broadcast on a user topic when someone accepts
// that user's invite.
type InviteAcceptedPayload struct {
	Type          string   `json:"type"`
	AcceptorName  string   `json:"acceptorName"`
	AcceptorPhone string   `json:"acceptorPhone"`
	GroupNames    []string `json:"groupNames"`
	AddedGroupIDs []string `json:"addedGroupIds"`
}

type SubscribedPayload struct {
	Type          string `json:"type"`
	Channel       string `json:"channel"`
	Authenticated bool   `json:"authenticated"`
}

type DashboardSubscribedPayload struct {
	Type       string   `json:"type"`
	EventSlugs []string `json:"eventSlugs"`
}

type UserSubscribedPayload struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type PongPayload struct {
	Type string `json:"type"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
