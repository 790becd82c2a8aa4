// Copyright (c) 2026 Tubely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tweet

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
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var tweetColumns = schema.List("", schema.Tweet.Columns()...)

func scanTweet(row pgx.Row, extra ...any) (*Tweet, error) {
	tweet := &Tweet{}
	targets := append([]any{&tweet.ID, &tweet.Owner, &tweet.Content, &tweet.CreatedAt, &tweet.UpdatedAt}, extra...)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return tweet, nil
}

// Create inserts a new tweet row.
func (repository *PostgresRepository) Create(context context.Context, tweet *Tweet) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5)`, schema.Tweet.Table, tweetColumns)

	_, err := repository.pool.Exec(context, query, tweet.ID, tweet.Owner, tweet.Content, tweet.CreatedAt, tweet.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, MsgUserNotFound)
	}
	return nil
}

// FindByID retrieves a tweet by primary key.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Tweet, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, tweetColumns, schema.Tweet.Table, schema.Tweet.ID)

	tweet, err := scanTweet(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, MsgTweetNotFound)
	}
	return tweet, nil
}

// ListByOwner reads one page and the total count with a COUNT(*) OVER () window.
func (repository *PostgresRepository) ListByOwner(context context.Context, ownerID string, limit, offset int) ([]*Tweet, int, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER ()
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC
		LIMIT $2 OFFSET $3`,
		tweetColumns, schema.Tweet.Table, schema.Tweet.OwnerID, schema.Tweet.CreatedAt, schema.Tweet.ID,
	)

	rows, err := repository.pool.Query(context, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, MsgTweetNotFound)
	}
	defer rows.Close()

	tweets := []*Tweet{}
	total := 0
	for rows.Next() {
		tweet, err := scanTweet(rows, &total)
		if err != nil {
			return nil, 0, dberr.Wrap(err, MsgTweetNotFound)
		}
		tweets = append(tweets, tweet)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, MsgTweetNotFound)
	}

	// An offset past the end yields no rows and therefore no window count.
	if len(tweets) == 0 && offset > 0 {
		countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, schema.Tweet.Table, schema.Tweet.OwnerID)
		if err := repository.pool.QueryRow(context, countQuery, ownerID).Scan(&total); err != nil {
			return nil, 0, dberr.Wrap(err, MsgTweetNotFound)
		}
	}

	return tweets, total, nil
}

// Update persists content and updated_at.
func (repository *PostgresRepository) Update(context context.Context, tweet *Tweet) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.Tweet.Table, schema.Tweet.Content, schema.Tweet.UpdatedAt, schema.Tweet.ID)

	tag, err := repository.pool.Exec(context, query, tweet.ID, tweet.Content, tweet.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, MsgTweetNotFound)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(MsgTweetNotFound)
	}
	return nil
}

// Delete removes a tweet row.
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Tweet.Table, schema.Tweet.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, MsgTweetNotFound)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(MsgTweetNotFound)
	}
	return nil
}
