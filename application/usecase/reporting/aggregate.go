package reporting

import (
	"fmt"
	"math"
	"sort"

	"github.com/gudson/kpi/application/port/inbound"
	"github.com/gudson/kpi/domain/entity"
	apperr "github.com/gudson/kpi/domain/error"
	"github.com/shopspring/decimal"
)

const (
	topPerformers  = 10
	qualityBins    = 20
	qualityMax     = 10.0
	monthLayout    = "2006-01"
	amountDecimals = 2
)

// DefaultCorrelationFields are the supplier metrics compared on the
// analytics page.
var DefaultCorrelationFields = []string{"quality_score", "avg_delivery_days", "compliance_rate", "performance_rating"}

// supplierMetrics are the numeric supplier fields usable in a correlation.
var supplierMetrics = map[string]func(entity.Supplier) float64{
	"quality_score":      func(s entity.Supplier) float64 { return s.QualityScore },
	"avg_delivery_days":  func(s entity.Supplier) float64 { return s.AvgDeliveryDays },
	"compliance_rate":    func(s entity.Supplier) float64 { return s.ComplianceRate },
	"performance_rating": func(s entity.Supplier) float64 { return s.PerformanceRating },
	"avg_order_price":    func(s entity.Supplier) float64 { return s.AvgOrderPrice.InexactFloat64() },
	"order_count":        func(s entity.Supplier) float64 { return float64(s.OrderCount) },
	"total_revenue":      func(s entity.Supplier) float64 { return s.TotalRevenue.InexactFloat64() },
	"payment_terms_days": func(s entity.Supplier) float64 { return float64(s.PaymentTermsDays) },
}

func SummarizeDashboard(suppliers []entity.Supplier, buyers []entity.Buyer, orders []entity.Order) inbound.Dashboard {
	d := inbound.Dashboard{
		SupplierCount:      len(suppliers),
		BuyerCount:         len(buyers),
		OrderCount:         len(orders),
		TotalOrderAmount:   decimal.Zero,
		StatusDistribution: make(map[string]int),
		Monthly:            GroupByMonth(orders),
	}
	for _, o := range orders {
		d.TotalOrderAmount = d.TotalOrderAmount.Add(o.TotalAmount)
		d.StatusDistribution[string(o.Status)]++
		if o.Status == entity.OrderStatusDelivered {
			d.DeliveredOrders++
		}
	}
	return d
}

func SummarizeSuppliers(suppliers []entity.Supplier) inbound.SupplierKPIs {
	k := inbound.SupplierKPIs{
		Count:               len(suppliers),
		AvgRevenue:          decimal.Zero,
		TopPerformers:       []inbound.SupplierRank{},
		QualityDistribution: qualityHistogram(suppliers),
	}
	if len(suppliers) == 0 {
		return k
	}

	var quality, delivery, compliance float64
	revenue := decimal.Zero
	for _, s := range suppliers {
		quality += s.QualityScore
		delivery += s.AvgDeliveryDays
		compliance += s.ComplianceRate
		revenue = revenue.Add(s.TotalRevenue)
	}
	n := float64(len(suppliers))
	k.AvgQualityScore = quality / n
	k.AvgDeliveryDays = delivery / n
	k.AvgComplianceRate = compliance / n
	k.AvgRevenue = revenue.Div(decimal.NewFromInt(int64(len(suppliers)))).Round(amountDecimals)

	ranked := append([]entity.Supplier(nil), suppliers...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PerformanceRating > ranked[j].PerformanceRating
	})
	if len(ranked) > topPerformers {
		ranked = ranked[:topPerformers]
	}
	for _, s := range ranked {
		k.TopPerformers = append(k.TopPerformers, inbound.SupplierRank{
			ID:                s.ID,
			Name:              s.Name,
			PerformanceRating: s.PerformanceRating,
		})
	}
	return k
}

// qualityHistogram buckets quality scores into equal bins over [0, 10].
// The last bin is closed so a perfect 10 is counted; scores outside the
// range are ignored.
func qualityHistogram(suppliers []entity.Supplier) []inbound.HistogramBin {
	width := qualityMax / qualityBins
	bins := make([]inbound.HistogramBin, qualityBins)
	for i := range bins {
		bins[i].Lower = float64(i) * width
		bins[i].Upper = float64(i+1) * width
	}
	for _, s := range suppliers {
		v := s.QualityScore
		if v < 0 || v > qualityMax || math.IsNaN(v) {
			continue
		}
		i := int(v / width)
		if i >= qualityBins {
			i = qualityBins - 1
		}
		bins[i].Count++
	}
	return bins
}

func SummarizeBuyers(buyers []entity.Buyer) inbound.BuyerKPIs {
	k := inbound.BuyerKPIs{
		Count:                len(buyers),
		TotalAllocatedBudget: decimal.Zero,
		TotalSavings:         decimal.Zero,
		Buyers:               make([]inbound.BuyerDetail, 0, len(buyers)),
	}
	if len(buyers) == 0 {
		return k
	}

	var perf, processing float64
	for _, b := range buyers {
		k.TotalAllocatedBudget = k.TotalAllocatedBudget.Add(b.AllocatedBudget)
		k.TotalSavings = k.TotalSavings.Add(b.SavingsRealized)
		perf += b.PerformanceScore
		processing += b.AvgProcessingDays
		k.Buyers = append(k.Buyers, inbound.BuyerDetail{
			ID:                b.ID,
			Name:              b.Name,
			BudgetUtilization: percent(b.UsedBudget, b.AllocatedBudget),
			SavingsProgress:   percent(b.SavingsRealized, b.SavingsTarget),
			PerformanceScore:  b.PerformanceScore,
			OverBudget:        b.OverBudget(),
		})
	}
	n := float64(len(buyers))
	k.AvgPerformanceScore = perf / n
	k.AvgProcessingDays = processing / n
	return k
}

// percent returns part/whole*100, or 0 when whole is zero.
func percent(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
}

// GroupByCountry aggregates suppliers per country, sorted by country name.
// Means are rounded to one decimal.
func GroupByCountry(suppliers []entity.Supplier) []inbound.CountryPerformance {
	type acc struct {
		n          int
		quality    float64
		delivery   float64
		compliance float64
		revenue    decimal.Decimal
	}
	groups := make(map[string]*acc)
	for _, s := range suppliers {
		g, ok := groups[s.Country]
		if !ok {
			g = &acc{revenue: decimal.Zero}
			groups[s.Country] = g
		}
		g.n++
		g.quality += s.QualityScore
		g.delivery += s.AvgDeliveryDays
		g.compliance += s.ComplianceRate
		g.revenue = g.revenue.Add(s.TotalRevenue)
	}

	out := make([]inbound.CountryPerformance, 0, len(groups))
	for country, g := range groups {
		n := float64(g.n)
		out = append(out, inbound.CountryPerformance{
			Country:           country,
			SupplierCount:     g.n,
			AvgQualityScore:   round1(g.quality / n),
			AvgDeliveryDays:   round1(g.delivery / n),
			AvgComplianceRate: round1(g.compliance / n),
			TotalRevenue:      g.revenue,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Country < out[j].Country })
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Correlate computes the Pearson matrix of the named supplier metrics. A
// pair involving a constant column, or fewer than two suppliers, yields 0.
func Correlate(suppliers []entity.Supplier, fields []string) (inbound.CorrelationMatrix, error) {
	if len(fields) == 0 {
		fields = DefaultCorrelationFields
	}
	columns := make([][]float64, len(fields))
	for i, f := range fields {
		get, ok := supplierMetrics[f]
		if !ok {
			return inbound.CorrelationMatrix{}, apperr.ErrValidation(fmt.Sprintf("field %q cannot be correlated", f))
		}
		col := make([]float64, len(suppliers))
		for j, s := range suppliers {
			col[j] = get(s)
		}
		columns[i] = col
	}

	values := make([][]float64, len(fields))
	for i := range values {
		values[i] = make([]float64, len(fields))
		for j := range values[i] {
			if j < i {
				values[i][j] = values[j][i]
				continue
			}
			values[i][j] = pearson(columns[i], columns[j])
		}
	}
	return inbound.CorrelationMatrix{
		Fields: append([]string(nil), fields...),
		Values: values,
	}, nil
}

func pearson(x, y []float64) float64 {
	n := len(x)
	if n < 2 {
		return 0
	}
	var mx, my float64
	for i := 0; i < n; i++ {
		mx += x[i]
		my += y[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		dx, dy := x[i]-mx, y[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	r := cov / (math.Sqrt(vx) * math.Sqrt(vy))
	// clamp rounding noise
	return math.Max(-1, math.Min(1, r))
}

// GroupByMonth aggregates orders per calendar month (YYYY-MM), oldest first.
func GroupByMonth(orders []entity.Order) []inbound.MonthlyOrderStat {
	type acc struct {
		total   decimal.Decimal
		count   int
		quality float64
	}
	groups := make(map[string]*acc)
	for _, o := range orders {
		if o.OrderedOn.IsZero() {
			continue
		}
		key := o.OrderedOn.Format(monthLayout)
		g, ok := groups[key]
		if !ok {
			g = &acc{total: decimal.Zero}
			groups[key] = g
		}
		g.total = g.total.Add(o.TotalAmount)
		g.count++
		g.quality += o.QualityNote
	}

	out := make([]inbound.MonthlyOrderStat, 0, len(groups))
	for month, g := range groups {
		out = append(out, inbound.MonthlyOrderStat{
			Month:          month,
			TotalAmount:    g.total,
			OrderCount:     g.count,
			AverageAmount:  g.total.Div(decimal.NewFromInt(int64(g.count))).Round(amountDecimals),
			AverageQuality: math.Round(g.quality/float64(g.count)*100) / 100,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
