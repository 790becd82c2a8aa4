// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// SubscriptionTable represents the 'subscriptions' table
type SubscriptionTable struct {
	Table        string
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    string
	UpdatedAt    string
}

// Subscription is the schema definition for subscriptions
var Subscription = SubscriptionTable{
	Table:        "subscriptions",
	ID:           "id",
	SubscriberID: "subscriber_id",
	ChannelID:    "channel_id",
	CreatedAt:    "created_at",
	UpdatedAt:    "updated_at",
}

// Columns returns all standard column names
func (t SubscriptionTable) Columns() []string {
	return []string{t.ID, t.SubscriberID, t.ChannelID, t.CreatedAt, t.UpdatedAt}
}
