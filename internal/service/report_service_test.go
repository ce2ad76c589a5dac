package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramez-krichen/office-supplies-management-sub002/internal/model"
	"github.com/Ramez-krichen/office-supplies-management-sub002/pkg/apperror"
)

func TestPeriodWindow(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		period    string
		wantStart time.Time
	}{
		{PeriodWeek, now.AddDate(0, 0, -7)},
		{PeriodMonth, now.AddDate(0, -1, 0)},
		{"", now.AddDate(0, -1, 0)},
		{PeriodQuarter, now.AddDate(0, -3, 0)},
		{PeriodYear, now.AddDate(-1, 0, 0)},
	}

	for _, tc := range tests {
		start, end, err := periodWindow(tc.period, now)
		require.NoError(t, err, tc.period)
		assert.Equal(t, tc.wantStart, start, tc.period)
		assert.Equal(t, now, end, tc.period)
	}

	_, _, err := periodWindow("decade", now)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestRequestSpendingFallsBackToCatalogPrice(t *testing.T) {
	lineTotal := 30.0
	request := model.Request{
		Items: []model.RequestItem{
			{Quantity: 3, TotalPrice: &lineTotal},
			{Quantity: 4, Item: &model.Item{Price: 2.5}},
			{Quantity: 2}, // no denormalized total and no catalog row
		},
	}

	assert.True(t, requestSpending(request).Equal(decimal.NewFromFloat(40)))
}

func TestBucketAccumulator(t *testing.T) {
	acc := newBucketAccumulator()
	acc.add("IT", decimal.NewFromInt(10))
	acc.add("IT", decimal.NewFromInt(5))
	acc.add("SALES", decimal.NewFromInt(40))
	acc.add("", decimal.NewFromInt(1))

	byAmount := acc.buckets()
	require.Len(t, byAmount, 3)
	assert.Equal(t, SpendingBucket{Key: "SALES", Amount: 40, Count: 1}, byAmount[0])
	assert.Equal(t, SpendingBucket{Key: "IT", Amount: 15, Count: 2}, byAmount[1])
	assert.Equal(t, SpendingBucket{Key: "UNKNOWN", Amount: 1, Count: 1}, byAmount[2])
}

func TestMonthlyBucketsSortChronologically(t *testing.T) {
	acc := newBucketAccumulator()
	acc.add("2025-03", decimal.NewFromInt(5))
	acc.add("2025-01", decimal.NewFromInt(90))
	acc.add("2025-02", decimal.NewFromInt(10))

	monthly := acc.monthlyBuckets()
	require.Len(t, monthly, 3)
	assert.Equal(t, "2025-01", monthly[0].Key)
	assert.Equal(t, "2025-02", monthly[1].Key)
	assert.Equal(t, "2025-03", monthly[2].Key)
}
