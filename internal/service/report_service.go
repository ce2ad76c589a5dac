package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/repository"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/apperror"
)

// Report periods
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
)

type SpendingBucket struct {
	Key    string  `json:"key"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

type SpendingReport struct {
	Period        string           `json:"period"`
	StartDate     string           `json:"start_date"`
	EndDate       string           `json:"end_date"`
	TotalSpending float64          `json:"total_spending"`
	RequestTotal  float64          `json:"request_total"`
	OrderTotal    float64          `json:"order_total"`
	ByType        []SpendingBucket `json:"by_type"`
	ByCategory    []SpendingBucket `json:"by_category"`
	ByDepartment  []SpendingBucket `json:"by_department"`
	BySupplier    []SpendingBucket `json:"by_supplier"`
	Monthly       []SpendingBucket `json:"monthly"`
}

// ReportService produces read-only spending aggregations. Rows are fetched
// pre-scoped; all reduction happens here with decimal accumulation so float
// rounding cannot skew the totals.
type ReportService interface {
	Spending(ctx context.Context, actor Actor, period string) (SpendingReport, error)
}

type reportService struct {
	requests repository.RequestRepository
	orders   repository.PurchaseOrderRepository
}

func NewReportService(requests repository.RequestRepository, orders repository.PurchaseOrderRepository) ReportService {
	return &reportService{requests: requests, orders: orders}
}

// periodWindow returns the [start, end] range covered by the report period,
// anchored at now.
func periodWindow(period string, now time.Time) (time.Time, time.Time, error) {
	end := now
	var start time.Time
	switch period {
	case PeriodWeek:
		start = now.AddDate(0, 0, -7)
	case PeriodMonth, "":
		start = now.AddDate(0, -1, 0)
	case PeriodQuarter:
		start = now.AddDate(0, -3, 0)
	case PeriodYear:
		start = now.AddDate(-1, 0, 0)
	default:
		return time.Time{}, time.Time{}, apperror.Validation("period must be one of: week, month, quarter, year")
	}
	return start, end, nil
}

// requestSpending sums a request's lines, falling back to catalog price when
// the denormalized line total is missing.
func requestSpending(r model.Request) decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Items {
		if line.TotalPrice != nil {
			total = total.Add(decimal.NewFromFloat(*line.TotalPrice))
			continue
		}
		if line.Item != nil {
			price := decimal.NewFromFloat(line.Item.Price)
			total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
	}
	return total
}

type bucketAccumulator struct {
	amounts map[string]decimal.Decimal
	counts  map[string]int
}

func newBucketAccumulator() *bucketAccumulator {
	return &bucketAccumulator{
		amounts: map[string]decimal.Decimal{},
		counts:  map[string]int{},
	}
}

func (b *bucketAccumulator) add(key string, amount decimal.Decimal) {
	if key == "" {
		key = "UNKNOWN"
	}
	b.amounts[key] = b.amounts[key].Add(amount)
	b.counts[key]++
}

// buckets returns the accumulated groups sorted by amount descending.
func (b *bucketAccumulator) buckets() []SpendingBucket {
	result := make([]SpendingBucket, 0, len(b.amounts))
	for key, amount := range b.amounts {
		value, _ := amount.Round(2).Float64()
		result = append(result, SpendingBucket{Key: key, Amount: value, Count: b.counts[key]})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Amount != result[j].Amount {
			return result[i].Amount > result[j].Amount
		}
		return result[i].Key < result[j].Key
	})
	return result
}

// monthlyBuckets sorts chronologically instead of by amount.
func (b *bucketAccumulator) monthlyBuckets() []SpendingBucket {
	result := make([]SpendingBucket, 0, len(b.amounts))
	for key, amount := range b.amounts {
		value, _ := amount.Round(2).Float64()
		result = append(result, SpendingBucket{Key: key, Amount: value, Count: b.counts[key]})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

func (s *reportService) Spending(ctx context.Context, actor Actor, period string) (SpendingReport, error) {
	now := time.Now()
	start, end, err := periodWindow(period, now)
	if err != nil {
		return SpendingReport{}, err
	}
	if period == "" {
		period = PeriodMonth
	}

	scope := actor.Scope()
	requests, err := s.requests.ListApprovedBetween(ctx, scope, start, end)
	if err != nil {
		return SpendingReport{}, apperror.Internal(err, "failed to fetch request spending")
	}
	orders, err := s.orders.ListSpendingBetween(ctx, scope, start, end)
	if err != nil {
		return SpendingReport{}, apperror.Internal(err, "failed to fetch order spending")
	}

	byType := newBucketAccumulator()
	byCategory := newBucketAccumulator()
	byDepartment := newBucketAccumulator()
	bySupplier := newBucketAccumulator()
	monthly := newBucketAccumulator()

	requestTotal := decimal.Zero
	for _, r := range requests {
		amount := requestSpending(r)
		requestTotal = requestTotal.Add(amount)

		byType.add("REQUEST", amount)
		byDepartment.add(r.Department, amount)
		monthly.add(r.CreatedAt.Format("2006-01"), amount)

		for _, line := range r.Items {
			lineAmount := decimal.Zero
			if line.TotalPrice != nil {
				lineAmount = decimal.NewFromFloat(*line.TotalPrice)
			} else if line.Item != nil {
				lineAmount = decimal.NewFromFloat(line.Item.Price).
					Mul(decimal.NewFromInt(int64(line.Quantity)))
			}
			if line.Item != nil && line.Item.Category != nil {
				byCategory.add(line.Item.Category.Name, lineAmount)
			} else {
				byCategory.add("", lineAmount)
			}
		}
	}

	orderTotal := decimal.Zero
	for _, o := range orders {
		amount := decimal.NewFromFloat(o.TotalAmount)
		orderTotal = orderTotal.Add(amount)

		byType.add("PURCHASE_ORDER", amount)
		monthly.add(o.CreatedAt.Format("2006-01"), amount)
		if o.Supplier != nil {
			bySupplier.add(o.Supplier.Name, amount)
		} else {
			bySupplier.add("", amount)
		}
		if o.CreatedBy != nil {
			byDepartment.add(o.CreatedBy.Department, amount)
		}
		for _, line := range o.Items {
			if line.Item != nil && line.Item.Category != nil {
				byCategory.add(line.Item.Category.Name, decimal.NewFromFloat(line.TotalPrice))
			}
		}
	}

	total, _ := requestTotal.Add(orderTotal).Round(2).Float64()
	reqTotal, _ := requestTotal.Round(2).Float64()
	ordTotal, _ := orderTotal.Round(2).Float64()

	return SpendingReport{
		Period:        period,
		StartDate:     start.Format(time.RFC3339),
		EndDate:       end.Format(time.RFC3339),
		TotalSpending: total,
		RequestTotal:  reqTotal,
		OrderTotal:    ordTotal,
		ByType:        byType.buckets(),
		ByCategory:    byCategory.buckets(),
		ByDepartment:  byDepartment.buckets(),
		BySupplier:    bySupplier.buckets(),
		Monthly:       monthly.monthlyBuckets(),
	}, nil
}
