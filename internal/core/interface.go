package core

import (
	"context"

	"github.com/auto-dns/aliyun-ddns-sync/internal/alidns"
)

// Resolver looks up the caller's current public IPv4 address.
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

// Provider is the subset of the DNS provider API a reconciliation
// cycle consumes.
type Provider interface {
	DescribeSubdomainRecords(ctx context.Context, domainName, rr string) ([]alidns.Record, error)
	AddRecord(ctx context.Context, domainName, rr, value string, ttl int) (string, error)
	UpdateRecord(ctx context.Context, recordID, rr, value string, ttl int) error
}

// Notifier reports the outcome of a cycle. Implementations are
// best-effort and must not fail the run.
type Notifier interface {
	Notify(ctx context.Context, result Result)
}
