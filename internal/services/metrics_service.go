package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/rmatrack/backend/internal/models"
)

// MetricsService aggregates read-only dashboard numbers. Everything here is
// computed on demand; nothing is cached or persisted.
type MetricsService struct {
	db *gorm.DB
}

// NewMetricsService creates a new metrics service.
func NewMetricsService(db *gorm.DB) *MetricsService {
	return &MetricsService{db: db}
}

// CountRow is one aggregation bucket.
type CountRow struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// Overview is the headline metrics block.
type Overview struct {
	TotalRMAs           int64      `json:"totalRmas"`
	OpenRMAs            int64      `json:"openRmas"`
	ClosedRMAs          int64      `json:"closedRmas"`
	ByStatus            []CountRow `json:"byStatus"`
	ByReturnType        []CountRow `json:"byReturnType"`
	ByDisposition       []CountRow `json:"byDisposition"`
	WithDispositions    int64      `json:"withDispositions"`
	WithoutDispositions int64      `json:"withoutDispositions"`
	TopCustomers        []CountRow `json:"topCustomers"`
	OwnerWorkload       []CountRow `json:"ownerWorkload"`
}

// Overview computes the main metrics block.
func (ms *MetricsService) Overview() (*Overview, error) {
	o := &Overview{}

	if err := ms.db.Model(&models.RMA{}).Count(&o.TotalRMAs).Error; err != nil {
		return nil, fmt.Errorf("failed to count RMAs: %w", err)
	}

	terminal := []models.RMAStatus{models.StatusClosed, models.StatusRejected}
	if err := ms.db.Model(&models.RMA{}).
		Where("status NOT IN ?", terminal).
		Count(&o.OpenRMAs).Error; err != nil {
		return nil, fmt.Errorf("failed to count open RMAs: %w", err)
	}
	o.ClosedRMAs = o.TotalRMAs - o.OpenRMAs

	if err := ms.db.Model(&models.RMA{}).
		Select("status AS label, COUNT(*) AS count").
		Group("status").
		Scan(&o.ByStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to group by status: %w", err)
	}

	if err := ms.db.Model(&models.RMA{}).
		Select("return_type AS label, COUNT(*) AS count").
		Group("return_type").
		Scan(&o.ByReturnType).Error; err != nil {
		return nil, fmt.Errorf("failed to group by return type: %w", err)
	}

	if err := ms.db.Model(&models.Disposition{}).
		Select("disposition AS label, COUNT(*) AS count").
		Group("disposition").
		Scan(&o.ByDisposition).Error; err != nil {
		return nil, fmt.Errorf("failed to group by disposition: %w", err)
	}

	if err := ms.db.Model(&models.RMA{}).
		Where("EXISTS (SELECT 1 FROM rma_lines JOIN dispositions ON dispositions.rma_line_id = rma_lines.id WHERE rma_lines.rma_id = rmas.id)").
		Count(&o.WithDispositions).Error; err != nil {
		return nil, fmt.Errorf("failed to count dispositioned RMAs: %w", err)
	}
	o.WithoutDispositions = o.TotalRMAs - o.WithDispositions

	if err := ms.db.Model(&models.RMA{}).
		Select("customers.customer_name AS label, COUNT(*) AS count").
		Joins("JOIN customers ON customers.id = rmas.customer_id").
		Group("customers.customer_name").
		Order("count DESC").
		Limit(10).
		Scan(&o.TopCustomers).Error; err != nil {
		return nil, fmt.Errorf("failed to rank customers: %w", err)
	}

	if err := ms.db.Model(&models.RMAOwner{}).
		Select("users.full_name AS label, COUNT(*) AS count").
		Joins("JOIN users ON users.id = rma_owners.user_id").
		Joins("JOIN rmas ON rmas.id = rma_owners.rma_id").
		Where("rmas.status NOT IN ?", terminal).
		Group("users.full_name").
		Order("count DESC").
		Scan(&o.OwnerWorkload).Error; err != nil {
		return nil, fmt.Errorf("failed to compute owner workload: %w", err)
	}

	return o, nil
}

// CreditDashboard summarizes where every RMA sits in the credit workflow.
type CreditDashboard struct {
	Pending             int64   `json:"pending"`
	Approved            int64   `json:"approved"`
	Rejected            int64   `json:"rejected"`
	Issued              int64   `json:"issued"`
	TotalApprovedAmount float64 `json:"totalApprovedAmount"`
}

// CreditDashboard computes the credit workflow counts and the sum of
// currently approved amounts.
func (ms *MetricsService) CreditDashboard() (*CreditDashboard, error) {
	d := &CreditDashboard{}

	if err := ms.db.Model(&models.RMA{}).
		Where("credit_approved = ? AND credit_rejected = ?", false, false).
		Count(&d.Pending).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending credits: %w", err)
	}
	if err := ms.db.Model(&models.RMA{}).
		Where("credit_approved = ?", true).
		Count(&d.Approved).Error; err != nil {
		return nil, fmt.Errorf("failed to count approved credits: %w", err)
	}
	if err := ms.db.Model(&models.RMA{}).
		Where("credit_rejected = ?", true).
		Count(&d.Rejected).Error; err != nil {
		return nil, fmt.Errorf("failed to count rejected credits: %w", err)
	}
	if err := ms.db.Model(&models.RMA{}).
		Where("credit_issued_on IS NOT NULL").
		Count(&d.Issued).Error; err != nil {
		return nil, fmt.Errorf("failed to count issued credits: %w", err)
	}

	var total *float64
	if err := ms.db.Model(&models.RMA{}).
		Where("credit_approved = ?", true).
		Select("SUM(credit_amount)").
		Scan(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to sum approved amounts: %w", err)
	}
	if total != nil {
		d.TotalApprovedAmount = *total
	}

	return d, nil
}
