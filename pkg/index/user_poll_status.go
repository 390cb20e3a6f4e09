package index

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/vocapoll/vocax/pkg/status"
	"github.com/vocapoll/vocax/pkg/utils"
)

const userPollStatusTable = "user_poll_status"

// UserPollStatus is one indexed participant/poll activity row. The platform's
// indexer appends a new row whenever a vote or claim lands; ReplacingMergeTree
// keeps the latest row per (participant, poll) pair.
type UserPollStatus struct {
	Participant string    `ch:"participant"`
	PollID      string    `ch:"poll_id"`
	Voted       uint8     `ch:"voted"`
	Claimed     uint8     `ch:"claimed"`
	UpdatedAt   time.Time `ch:"updated_at"`
}

// InitUserPollStatus creates the status table. Deduplication version is
// updated_at, so the freshest observation per participant/poll wins merges.
func (c *Client) InitUserPollStatus(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."%s" (
			participant String CODEC(ZSTD),
			poll_id     String CODEC(ZSTD),
			voted       UInt8,
			claimed     UInt8,
			updated_at  DateTime64(3) CODEC(Delta, ZSTD)
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY (participant, poll_id)
	`, c.Name, userPollStatusTable)

	if err := c.Db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", userPollStatusTable, err)
	}
	return nil
}

// InsertUserPollStatus appends status observations. Used by the platform's
// index maintainer and by integration tooling; the engine itself only reads.
func (c *Client) InsertUserPollStatus(ctx context.Context, rows []*UserPollStatus) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO "%s"."%s" (participant, poll_id, voted, claimed, updated_at) VALUES`,
		c.Name, userPollStatusTable)

	batch, err := c.Db.PrepareBatch(ctx, query)
	if err != nil {
		return err
	}
	defer func(batch driver.Batch) {
		_ = batch.Abort()
	}(batch)

	for _, row := range rows {
		if err := batch.Append(row.Participant, row.PollID, row.Voted, row.Claimed, row.UpdatedAt); err != nil {
			return err
		}
	}
	return batch.Send()
}

// GetUserPollStatusBatch returns the latest voted/claimed pair for each
// requested poll in one query. Polls with no indexed activity are simply
// absent from the result. Implements status.BatchQuerier.
func (c *Client) GetUserPollStatusBatch(ctx context.Context, participant string, pollIDs []string) (map[string]status.PollStatus, error) {
	if len(pollIDs) == 0 {
		return map[string]status.PollStatus{}, nil
	}

	query := fmt.Sprintf(`
		SELECT poll_id, voted, claimed
		FROM "%s"."%s" FINAL
		WHERE participant = ? AND poll_id IN (?)
	`, c.Name, userPollStatusTable)

	rows, err := c.Db.Query(ctx, query, participant, pollIDs)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", userPollStatusTable, err)
	}
	defer rows.Close()

	out := make(map[string]status.PollStatus, len(pollIDs))
	for rows.Next() {
		var (
			pollID         string
			voted, claimed uint8
		)
		if err := rows.Scan(&pollID, &voted, &claimed); err != nil {
			return nil, err
		}
		out[pollID] = status.PollStatus{Voted: voted != 0, Claimed: claimed != 0}
	}
	return out, rows.Err()
}

// MarkVoted is a convenience writer for a single fresh vote observation.
func (c *Client) MarkVoted(ctx context.Context, participant, pollID string) error {
	return c.InsertUserPollStatus(ctx, []*UserPollStatus{{
		Participant: participant,
		PollID:      pollID,
		Voted:       utils.BoolToUInt8(true),
		UpdatedAt:   time.Now().UTC(),
	}})
}
