// Package index reads the platform's ClickHouse status index: a fast,
// batched, eventually consistent projection of ledger vote/claim activity.
// The index is a read optimization only; the ledger stays authoritative.
package index

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/vocapoll/vocax/pkg/utils"
	"go.uber.org/zap"
)

// Client wraps a ClickHouse connection scoped to the status database.
type Client struct {
	Logger *zap.Logger
	Db     driver.Conn
	Name   string
}

// New connects to ClickHouse using CLICKHOUSE_ADDR (a clickhouse:// DSN,
// comma-separated replicas supported) and verifies the connection.
func New(ctx context.Context, logger *zap.Logger) (*Client, error) {
	dsn := utils.Env("CLICKHOUSE_ADDR", "clickhouse://localhost:9000?sslmode=disable")
	dbName := utils.Env("CLICKHOUSE_DATABASE", "poll_status")

	username, password, replicas, err := parseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse CLICKHOUSE_ADDR: %w", err)
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: replicas,
		Auth: clickhouse.Auth{
			Database: dbName,
			Username: username,
			Password: password,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    utils.EnvInt("CLICKHOUSE_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    utils.EnvInt("CLICKHOUSE_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: time.Hour,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.Ping(connCtx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	logger.Info("Connected to ClickHouse status index",
		zap.Strings("replicas", replicas),
		zap.String("database", dbName))

	return &Client{Logger: logger, Db: conn, Name: dbName}, nil
}

// parseDSN extracts credentials and replica addresses from a clickhouse DSN.
func parseDSN(dsn string) (username, password string, replicas []string, err error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", "", nil, err
	}
	if u.User != nil {
		username = u.User.Username()
		password, _ = u.User.Password()
	}
	if username == "" {
		username = "default"
	}
	replicas = utils.Dedup(strings.Split(u.Host, ","))
	if len(replicas) == 0 || replicas[0] == "" {
		return "", "", nil, fmt.Errorf("no replica addresses in DSN")
	}
	return username, password, replicas, nil
}

// Ping verifies the connection is usable.
func (c *Client) Ping(ctx context.Context) error {
	return c.Db.Ping(ctx)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.Db.Close()
}
