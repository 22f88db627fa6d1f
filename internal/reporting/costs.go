// Package reporting aggregates account-level AWS figures shown on the
// dashboard: monthly spend and counts of deployed resources.
package reporting

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	apperrors "github.com/cloudboard/cloudboard/internal/errors"
)

// costMonths is how far back the spend report reaches. Cost Explorer keeps
// a bit over a year of history at monthly granularity.
const costMonths = 12

// MonthlyCost is one month of unblended spend.
type MonthlyCost struct {
	Month  string  `json:"month"` // first day of the month, YYYY-MM-DD
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// costAPI is the slice of the Cost Explorer client the service uses.
type costAPI interface {
	GetCostAndUsage(ctx context.Context, in *costexplorer.GetCostAndUsageInput, opts ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

// CostService reports monthly account spend.
type CostService struct {
	client costAPI
	now    func() time.Time
}

// NewCostService creates a cost reporter over an already-configured AWS config.
func NewCostService(cfg aws.Config) *CostService {
	return &CostService{
		client: costexplorer.NewFromConfig(cfg),
		now:    time.Now,
	}
}

// MonthlyCosts returns unblended spend per month for the trailing year, the
// current partial month excluded. Months come back oldest first.
func (s *CostService) MonthlyCosts(ctx context.Context) ([]MonthlyCost, error) {
	now := s.now().UTC()
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, -costMonths, 0)

	out, err := s.client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
		Granularity: cetypes.GranularityMonthly,
		Metrics:     []string{"UnblendedCost"},
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(start.Format("2006-01-02")),
			End:   aws.String(end.Format("2006-01-02")),
		},
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeProvider, "get cost and usage")
	}

	costs := make([]MonthlyCost, 0, len(out.ResultsByTime))
	for _, result := range out.ResultsByTime {
		cost := MonthlyCost{}
		if result.TimePeriod != nil {
			cost.Month = aws.ToString(result.TimePeriod.Start)
		}
		if metric, ok := result.Total["UnblendedCost"]; ok {
			amount, err := strconv.ParseFloat(aws.ToString(metric.Amount), 64)
			if err != nil {
				return nil, fmt.Errorf("parse cost amount %q: %w", aws.ToString(metric.Amount), err)
			}
			cost.Amount = amount
			cost.Unit = aws.ToString(metric.Unit)
		}
		costs = append(costs, cost)
	}
	return costs, nil
}
