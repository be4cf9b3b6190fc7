// Package domain contains core concepts of the chat client.
// This file defines locally authored or received chat messages.
// Messages are immutable once appended; only the delivery state moves.
package domain

import "time"

type Sender string

const (
	SenderMe    Sender = "me"
	SenderOther Sender = "other"
)

// DeliveryState tracks confirmation by a remote counterpart.
// Without a transport every local echo is Sent on append.
type DeliveryState string

const (
	DeliveryPending DeliveryState = "pending"
	DeliverySent    DeliveryState = "sent"
	DeliveryFailed  DeliveryState = "failed"
)

// Message represents a single entry of the chat timeline.
// Timestamp is metadata captured on append, never a sort key.
type Message struct {
	ID            string
	Text          string
	Sender        Sender
	Timestamp     time.Time
	DeliveryState DeliveryState
}

func (m Message) IsMine() bool { return m.Sender == SenderMe }
