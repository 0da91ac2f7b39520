// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerMetricsProvider implements LedgerMetricsProvider using GORM.
// It queries the monthly_charges table directly for aggregated metrics.
type GormLedgerMetricsProvider struct {
	db *gorm.DB
}

// NewGormLedgerMetricsProvider creates a new GormLedgerMetricsProvider.
func NewGormLedgerMetricsProvider(db *gorm.DB) *GormLedgerMetricsProvider {
	return &GormLedgerMetricsProvider{db: db}
}

// GetOpenChargeCountsByStatus returns open charge counts per status for a community.
func (p *GormLedgerMetricsProvider) GetOpenChargeCountsByStatus(ctx context.Context, communityID uuid.UUID) (map[string]int64, error) {
	type result struct {
		Status    string `gorm:"column:status"`
		OpenCount int64  `gorm:"column:open_count"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("monthly_charges").
		Select("status, COUNT(*) as open_count").
		Where("community_id = ? AND status IN ?", communityID, []string{"PENDING", "PARTIAL"}).
		Group("status").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[string]int64, len(results))
	for _, r := range results {
		m[r.Status] = r.OpenCount
	}

	return m, nil
}

// GetDelinquentUnitCount returns the number of units with at least one overdue open charge.
func (p *GormLedgerMetricsProvider) GetDelinquentUnitCount(ctx context.Context, communityID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("monthly_charges").
		Where("community_id = ? AND status IN ?", communityID, []string{"PENDING", "PARTIAL"}).
		Where("due_date IS NOT NULL AND due_date < ?", time.Now()).
		Distinct("unit_id").
		Count(&count).Error

	return count, err
}

// GormCommunityProvider implements CommunityProvider using GORM.
type GormCommunityProvider struct {
	db *gorm.DB
}

// NewGormCommunityProvider creates a new GormCommunityProvider.
func NewGormCommunityProvider(db *gorm.DB) *GormCommunityProvider {
	return &GormCommunityProvider{db: db}
}

// GetActiveCommunityIDs returns all active community IDs.
func (p *GormCommunityProvider) GetActiveCommunityIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("communities").
		Select("id").
		Where("active = ?", true).
		Find(&ids).Error

	return ids, err
}
