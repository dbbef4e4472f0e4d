package reporting

import (
	"testing"
	"time"

	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func supplier(id, country string, quality, delivery, compliance, rating float64, revenue int64) entity.Supplier {
	s := entity.NewSupplier(id, "Fournisseur "+id, time.Now())
	s.Country = country
	s.QualityScore = quality
	s.AvgDeliveryDays = delivery
	s.ComplianceRate = compliance
	s.PerformanceRating = rating
	s.TotalRevenue = decimal.NewFromInt(revenue)
	return s
}

func order(id string, on time.Time, amount string, status entity.OrderStatus, quality float64) entity.Order {
	o := entity.NewOrder(id, "F001", "A001", on)
	o.TotalAmount = decimal.RequireFromString(amount)
	o.Status = status
	o.QualityNote = quality
	return o
}

func TestEmptyInputsProduceZeros(t *testing.T) {
	d := SummarizeDashboard(nil, nil, nil)
	assert.Zero(t, d.SupplierCount)
	assert.True(t, d.TotalOrderAmount.IsZero())
	assert.Empty(t, d.StatusDistribution)
	assert.Empty(t, d.Monthly)

	s := SummarizeSuppliers(nil)
	assert.Zero(t, s.Count)
	assert.Zero(t, s.AvgQualityScore)
	assert.True(t, s.AvgRevenue.IsZero())
	assert.Empty(t, s.TopPerformers)
	require.Len(t, s.QualityDistribution, qualityBins)

	b := SummarizeBuyers(nil)
	assert.Zero(t, b.AvgPerformanceScore)
	assert.Empty(t, b.Buyers)

	assert.Empty(t, GroupByCountry(nil))
	assert.Empty(t, GroupByMonth(nil))

	m, err := Correlate(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultCorrelationFields, m.Fields)
	for _, row := range m.Values {
		for _, v := range row {
			assert.Zero(t, v)
		}
	}
}

func TestSummarizeDashboard(t *testing.T) {
	jan := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)
	orders := []entity.Order{
		order("C0001", jan, "1000.50", entity.OrderStatusDelivered, 8),
		order("C0002", jan, "500", entity.OrderStatusPending, 6),
		order("C0003", feb, "250.25", entity.OrderStatusDelivered, 9),
	}

	d := SummarizeDashboard([]entity.Supplier{supplier("F001", "France", 8, 5, 90, 8, 0)}, nil, orders)

	assert.Equal(t, 1, d.SupplierCount)
	assert.Equal(t, 3, d.OrderCount)
	assert.Equal(t, 2, d.DeliveredOrders)
	assert.True(t, d.TotalOrderAmount.Equal(decimal.RequireFromString("1750.75")), d.TotalOrderAmount.String())
	assert.Equal(t, map[string]int{"Livrée": 2, "En cours": 1}, d.StatusDistribution)
	require.Len(t, d.Monthly, 2)
	assert.Equal(t, "2024-01", d.Monthly[0].Month)
}

func TestSummarizeSuppliers(t *testing.T) {
	var suppliers []entity.Supplier
	for i := 0; i < 12; i++ {
		suppliers = append(suppliers, supplier(
			"F0"+string(rune('A'+i)), "France", float64(i%11), 4, 80, float64(i), 1000))
	}
	suppliers[0].QualityScore = 10

	k := SummarizeSuppliers(suppliers)

	assert.Equal(t, 12, k.Count)
	assert.Equal(t, 4.0, k.AvgDeliveryDays)
	assert.Equal(t, 80.0, k.AvgComplianceRate)
	assert.True(t, k.AvgRevenue.Equal(decimal.NewFromInt(1000)))

	require.Len(t, k.TopPerformers, 10)
	assert.Equal(t, 11.0, k.TopPerformers[0].PerformanceRating)
	assert.Equal(t, 2.0, k.TopPerformers[9].PerformanceRating)

	total := 0
	for _, bin := range k.QualityDistribution {
		total += bin.Count
	}
	assert.Equal(t, 12, total)
	assert.Equal(t, 0.0, k.QualityDistribution[0].Lower)
	assert.Equal(t, 0.5, k.QualityDistribution[0].Upper)
	assert.Equal(t, 10.0, k.QualityDistribution[qualityBins-1].Upper)
	// 10 falls in the closed last bin
	assert.Equal(t, 2, k.QualityDistribution[qualityBins-1].Count)
}

func TestSummarizeBuyers(t *testing.T) {
	now := time.Now()
	over := entity.NewBuyer("A001", "Over", "o@example.com", now)
	over.AllocatedBudget = decimal.NewFromInt(1000)
	over.UsedBudget = decimal.NewFromInt(1250)
	over.SavingsRealized = decimal.NewFromInt(30)
	over.SavingsTarget = decimal.NewFromInt(120)

	empty := entity.NewBuyer("A002", "Empty", "e@example.com", now)
	empty.PerformanceScore = 6
	empty.AvgProcessingDays = 3

	k := SummarizeBuyers([]entity.Buyer{over, empty})

	assert.Equal(t, 2, k.Count)
	assert.True(t, k.TotalAllocatedBudget.Equal(decimal.NewFromInt(1000)))
	assert.True(t, k.TotalSavings.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 7.0, k.AvgPerformanceScore)
	assert.Equal(t, 4.0, k.AvgProcessingDays)

	require.Len(t, k.Buyers, 2)
	assert.Equal(t, 125.0, k.Buyers[0].BudgetUtilization)
	assert.Equal(t, 25.0, k.Buyers[0].SavingsProgress)
	assert.True(t, k.Buyers[0].OverBudget)
	assert.Zero(t, k.Buyers[1].BudgetUtilization)
	assert.Zero(t, k.Buyers[1].SavingsProgress)
	assert.False(t, k.Buyers[1].OverBudget)
}

func TestGroupByCountry(t *testing.T) {
	out := GroupByCountry([]entity.Supplier{
		supplier("F001", "Italie", 7, 10, 90, 0, 100),
		supplier("F002", "France", 8, 4, 95, 0, 200),
		supplier("F003", "France", 9, 5, 85, 0, 300),
	})

	require.Len(t, out, 2)
	assert.Equal(t, "France", out[0].Country)
	assert.Equal(t, 2, out[0].SupplierCount)
	assert.Equal(t, 8.5, out[0].AvgQualityScore)
	assert.Equal(t, 4.5, out[0].AvgDeliveryDays)
	assert.Equal(t, 90.0, out[0].AvgComplianceRate)
	assert.True(t, out[0].TotalRevenue.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "Italie", out[1].Country)
}

func TestCorrelate(t *testing.T) {
	suppliers := []entity.Supplier{
		supplier("F001", "", 2, 9, 70, 5, 0),
		supplier("F002", "", 4, 7, 70, 5, 0),
		supplier("F003", "", 6, 5, 70, 5, 0),
	}

	m, err := Correlate(suppliers, []string{"quality_score", "avg_delivery_days", "compliance_rate"})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, m.Values[0][0], 1e-9)
	assert.InDelta(t, -1.0, m.Values[0][1], 1e-9)
	assert.InDelta(t, -1.0, m.Values[1][0], 1e-9)
	// constant column
	assert.Zero(t, m.Values[0][2])
	assert.Zero(t, m.Values[2][2])

	_, err = Correlate(suppliers, []string{"name"})
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeValidation))
}

func TestPearson_LargeMagnitudes(t *testing.T) {
	x := []float64{1e120, 2e120, 3e120}
	y := []float64{3e120, 2e120, 1e120}

	assert.InDelta(t, 1.0, pearson(x, x), 1e-9)
	assert.InDelta(t, -1.0, pearson(x, y), 1e-9)
}

func TestGroupByMonth(t *testing.T) {
	orders := []entity.Order{
		order("C0003", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), "90", entity.OrderStatusPending, 7),
		order("C0001", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), "100", entity.OrderStatusPending, 8),
		order("C0002", time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC), "50.01", entity.OrderStatusPending, 7),
	}

	out := GroupByMonth(orders)

	require.Len(t, out, 2)
	assert.Equal(t, "2024-01", out[0].Month)
	assert.Equal(t, 2, out[0].OrderCount)
	assert.True(t, out[0].TotalAmount.Equal(decimal.RequireFromString("150.01")))
	assert.True(t, out[0].AverageAmount.Equal(decimal.RequireFromString("75.01")), out[0].AverageAmount.String())
	assert.Equal(t, 7.5, out[0].AverageQuality)
	assert.Equal(t, "2024-03", out[1].Month)
}
