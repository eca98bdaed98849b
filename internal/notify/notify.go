// Package notify fans out change events so open read views can refresh.
// Delivery is best effort: slow subscribers drop events.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event kinds
const (
	KindPortfolioSubmitted = "portfolio.submitted"
	KindPortfolioReviewed  = "portfolio.reviewed"
	KindApplicationCreated = "application.created"
	KindApplicationStatus  = "application.status"
	KindMessageCreated     = "message.created"
)

// ApproversTopic receives events every portfolio reviewer is interested in.
const ApproversTopic = "approvers"

// Event is pushed to subscribers of a topic.
type Event struct {
	Kind  string    `json:"kind"`
	RefID uint      `json:"ref_id"`
	At    time.Time `json:"at"`
}

// Broker publishes events to topics and hands out subscriptions.
type Broker interface {
	Publish(ctx context.Context, topic string, ev Event) error
	// Subscribe returns a channel of events for the topics and a function that ends
	// the subscription and closes the channel.
	Subscribe(ctx context.Context, topics ...string) (<-chan Event, func())
}

// UserTopic is the topic of a single principal.
func UserTopic(id uuid.UUID) string {
	return "user:" + id.String()
}

const subscriberBuffer = 16
