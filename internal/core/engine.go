package core

import (
	"context"
	"fmt"
	"time"

	"github.com/auto-dns/aliyun-ddns-sync/internal/config"
	"github.com/auto-dns/aliyun-ddns-sync/internal/state"
	"github.com/rs/zerolog"
)

// SyncEngine coordinates one reconciliation cycle: resolve the public
// IP, compare it with the published A record, write when they differ,
// notify, and persist the run state.
type SyncEngine struct {
	logger   zerolog.Logger
	cfg      *config.Config
	resolver Resolver
	provider Provider
	notifier Notifier
	store    *state.Store
}

func NewSyncEngine(logger zerolog.Logger, cfg *config.Config, resolver Resolver, provider Provider, notifier Notifier, store *state.Store) *SyncEngine {
	return &SyncEngine{
		logger:   logger,
		cfg:      cfg,
		resolver: resolver,
		provider: provider,
		notifier: notifier,
		store:    store,
	}
}

// Run performs the cycle and returns a non-nil error exactly when the
// outcome is failed; the notification is sent once per run regardless.
func (se *SyncEngine) Run(ctx context.Context) error {
	se.logger.Info().Str("domain", se.cfg.Domain).Msg("Starting DDNS reconciliation")

	result := se.reconcile(ctx)
	se.notifier.Notify(ctx, result)
	se.persistState(result)

	if result.Outcome == OutcomeFailed {
		se.logger.Error().Err(result.Err).Str("domain", result.Domain).Msg("Reconciliation failed")
		return fmt.Errorf("reconciliation of %s failed: %w", result.Domain, result.Err)
	}

	event := se.logger.Info().
		Str("outcome", string(result.Outcome)).
		Str("domain", result.Domain).
		Str("ip", result.IP)
	if result.OldIP != "" {
		event = event.Str("previous_ip", result.OldIP)
	}
	event.Msg("Reconciliation complete")
	return nil
}

func (se *SyncEngine) reconcile(ctx context.Context) Result {
	result := Result{Outcome: OutcomeFailed, Domain: se.cfg.Domain}

	rr, domainName, err := se.cfg.SplitDomain()
	if err != nil {
		result.Err = err
		return result
	}

	ip, err := se.resolver.Resolve(ctx)
	if err != nil {
		result.Err = err
		return result
	}
	result.IP = ip
	se.logLastRunDelta(ip)

	records, err := se.provider.DescribeSubdomainRecords(ctx, domainName, rr)
	if err != nil {
		result.Err = fmt.Errorf("describing records for %s: %w", se.cfg.Domain, err)
		return result
	}

	if len(records) == 0 {
		recordID, err := se.provider.AddRecord(ctx, domainName, rr, ip, se.cfg.TTL)
		if err != nil {
			result.Err = fmt.Errorf("creating record for %s: %w", se.cfg.Domain, err)
			return result
		}
		se.logger.Info().Str("record_id", recordID).Str("ip", ip).Msg("Created new A record")
		result.Outcome = OutcomeCreated
		return result
	}

	if len(records) > 1 {
		// More than one A record for the subdomain is outside normal
		// operation; reconcile the first returned and leave the rest alone.
		se.logger.Warn().Int("extra_records", len(records)-1).Str("domain", se.cfg.Domain).Msg("Multiple A records found, reconciling the first")
	}
	record := records[0]

	if record.Value == ip {
		se.logger.Info().Str("ip", ip).Msg("Record already up to date")
		result.Outcome = OutcomeUnchanged
		return result
	}

	if err := se.provider.UpdateRecord(ctx, record.RecordID, rr, ip, se.cfg.TTL); err != nil {
		result.Err = fmt.Errorf("updating record %s for %s: %w", record.RecordID, se.cfg.Domain, err)
		return result
	}
	se.logger.Info().Str("record_id", record.RecordID).Str("old_ip", record.Value).Str("ip", ip).Msg("Updated A record")
	result.OldIP = record.Value
	result.Outcome = OutcomeUpdated
	return result
}

// logLastRunDelta compares the freshly resolved IP with the previous
// run's persisted value. Purely informational; the write decision is
// always taken from the provider describe call.
func (se *SyncEngine) logLastRunDelta(ip string) {
	if se.store == nil {
		return
	}
	prev, err := se.store.Load()
	if err != nil {
		se.logger.Warn().Err(err).Msg("Cannot read state file")
		return
	}
	if prev != nil && prev.IP != ip {
		se.logger.Info().Str("previous_ip", prev.IP).Str("ip", ip).Msg("Public IP changed since last recorded run")
	}
}

func (se *SyncEngine) persistState(result Result) {
	if se.store == nil || result.Outcome == OutcomeFailed {
		return
	}
	st := state.RunState{
		IP:        result.IP,
		Outcome:   string(result.Outcome),
		UpdatedAt: time.Now().UTC(),
	}
	if err := se.store.Save(st); err != nil {
		se.logger.Warn().Err(err).Msg("Cannot write state file")
	}
}
