// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// TweetTable represents the 'tweets' table
type TweetTable struct {
	Table     string
	ID        string
	OwnerID   string
	Content   string
	CreatedAt string
	UpdatedAt string
}

// Tweet is the schema definition for tweets
var Tweet = TweetTable{
	Table:     "tweets",
	ID:        "id",
	OwnerID:   "owner_id",
	Content:   "content",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
}

// Columns returns all standard column names
func (t TweetTable) Columns() []string {
	return []string{t.ID, t.OwnerID, t.Content, t.CreatedAt, t.UpdatedAt}
}
