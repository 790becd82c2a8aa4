// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/tubely/internal/platform/apperr"
	"github.com/taibuivan/tubely/internal/platform/database/schema"
	"github.com/taibuivan/tubely/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
//
// The (subscriber_id, channel_id) UNIQUE constraint backs the one-edge-per-pair rule.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var subscriptionColumns = schema.List("", schema.Subscription.Columns()...)

func scanSubscription(row pgx.Row, notFound string) (*Subscription, error) {
	edge := &Subscription{}
	if err := row.Scan(&edge.ID, &edge.Subscriber, &edge.Channel, &edge.CreatedAt, &edge.UpdatedAt); err != nil {
		return nil, dberr.Wrap(err, notFound)
	}
	return edge, nil
}

/*
Create inserts a new edge.

Description: ON CONFLICT DO NOTHING turns a racing duplicate into an empty
RETURNING set, reported as CONFLICT. A dangling user reference (SQLSTATE 23503)
is reported as NOT_FOUND.
*/
func (repository *PostgresRepository) Create(context context.Context, edge *Subscription) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s, %s) DO NOTHING
		RETURNING %s`,
		schema.Subscription.Table, subscriptionColumns,
		schema.Subscription.SubscriberID, schema.Subscription.ChannelID,
		schema.Subscription.ID,
	)

	var id string
	err := repository.pool.QueryRow(context, query,
		edge.ID, edge.Subscriber, edge.Channel, edge.CreatedAt, edge.UpdatedAt,
	).Scan(&id)
	if dberr.IsNoRows(err) {
		return apperr.Conflict(MsgConcurrentModification)
	}
	if err != nil {
		return dberr.Wrap(err, MsgChannelNotFound)
	}
	return nil
}

// Delete removes the edge with DELETE ... RETURNING.
func (repository *PostgresRepository) Delete(context context.Context, subscriberID, channelID string) (*Subscription, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 RETURNING %s`,
		schema.Subscription.Table,
		schema.Subscription.SubscriberID, schema.Subscription.ChannelID,
		subscriptionColumns,
	)
	return scanSubscription(repository.pool.QueryRow(context, query, subscriberID, channelID), MsgSubscriptionNotFound)
}

// ListSubscribers joins the edges of channelID to the subscribing users.
func (repository *PostgresRepository) ListSubscribers(context context.Context, channelID string) ([]Member, error) {
	return repository.listMembers(context, schema.Subscription.ChannelID, schema.Subscription.SubscriberID, channelID)
}

// ListSubscriptions joins the edges of subscriberID to the followed channels.
func (repository *PostgresRepository) ListSubscriptions(context context.Context, subscriberID string) ([]Member, error) {
	return repository.listMembers(context, schema.Subscription.SubscriberID, schema.Subscription.ChannelID, subscriberID)
}

func (repository *PostgresRepository) listMembers(context context.Context, matchColumn, joinColumn, id string) ([]Member, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s s
		JOIN %s u ON u.%s = s.%s
		WHERE s.%s = $1
		ORDER BY s.%s DESC`,
		schema.List("u", schema.User.ID, schema.User.Username, schema.User.Email),
		schema.Subscription.Table,
		schema.User.Table, schema.User.ID, joinColumn,
		matchColumn,
		schema.Subscription.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, id)
	if err != nil {
		return nil, dberr.Wrap(err, MsgSubscriptionNotFound)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var member Member
		if err := rows.Scan(&member.ID, &member.Username, &member.Email); err != nil {
			return nil, dberr.Wrap(err, MsgSubscriptionNotFound)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, MsgSubscriptionNotFound)
	}
	return members, nil
}

/*
ChannelProfile aggregates the channel view in a single statement.

Description: The correlated sub-selects run under the statement snapshot, so
both counts and the viewer flag observe the same set of edges.
*/
func (repository *PostgresRepository) ChannelProfile(context context.Context, username, viewerID string) (*Channel, error) {
	query := fmt.Sprintf(`
		SELECT %s,
		       (SELECT COUNT(*) FROM %[2]s s WHERE s.%[3]s = u.%[5]s),
		       (SELECT COUNT(*) FROM %[2]s s WHERE s.%[4]s = u.%[5]s),
		       EXISTS (SELECT 1 FROM %[2]s s WHERE s.%[3]s = u.%[5]s AND s.%[4]s = $2)
		FROM %[6]s u
		WHERE u.%[7]s = $1`,
		schema.List("u",
			schema.User.ID, schema.User.Username, schema.User.Fullname, schema.User.Email,
			schema.User.Avatar, schema.User.CoverImage,
		),
		schema.Subscription.Table,
		schema.Subscription.ChannelID,
		schema.Subscription.SubscriberID,
		schema.User.ID,
		schema.User.Table,
		schema.User.Username,
	)

	channel := &Channel{}
	err := repository.pool.QueryRow(context, query, username, viewerID).Scan(
		&channel.ID,
		&channel.Username,
		&channel.Fullname,
		&channel.Email,
		&channel.Avatar,
		&channel.CoverImage,
		&channel.SubscriberCount,
		&channel.SubscribedToCount,
		&channel.IsSubscribed,
	)
	if err != nil {
		return nil, dberr.Wrap(err, MsgChannelNotFound)
	}
	return channel, nil
}
