package core

import (
	"context"

	"matatucore/pkg/domain"
)

// FilterSum adds value(row) over the rows matching keep.
func FilterSum[T any](rows []T, keep func(T) bool, value func(T) float64) float64 {
	var total float64
	for _, row := range rows {
		if keep(row) {
			total += value(row)
		}
	}
	return total
}

// GroupSum adds value(row) per key(row) over the rows matching keep. Group
// iteration order is unspecified; callers treat the result as a multiset of
// (key, sum) pairs.
func GroupSum[T any, K comparable](rows []T, keep func(T) bool, key func(T) K, value func(T) float64) map[K]float64 {
	out := make(map[K]float64)
	for _, row := range rows {
		if keep(row) {
			out[key(row)] += value(row)
		}
	}
	return out
}

// secondsPerMonth is the coarse 30-day bucket width used for performance
// accrual.
const secondsPerMonth = 30 * 24 * 60 * 60

func monthBucket(unixSeconds int64) uint64 {
	if unixSeconds < 0 {
		return 0
	}
	return uint64(unixSeconds) / secondsPerMonth
}

// accrueDriverPerformance finds or creates the driver's record for the
// current month bucket, then increments trips completed by one and total
// revenue by delta. Compliance starts at 100 for fresh records. Buckets never
// decay.
func accrueDriverPerformance(tx Transaction, driverID ID, delta float64) error {
	month := monthBucket(tx.Now().Unix())

	var existing *DriverPerformance
	for _, perf := range tx.Snapshot().ListDriverPerformance() {
		if perf.DriverID == driverID && perf.Month == month {
			p := perf
			existing = &p
			break
		}
	}

	if existing == nil {
		created, err := tx.CreateDriverPerformance(DriverPerformance{
			DriverID:        driverID,
			Month:           month,
			ComplianceScore: 100,
		})
		if err != nil {
			return err
		}
		existing = &created
	}

	_, err := tx.UpdateDriverPerformance(existing.ID, func(p *DriverPerformance) error {
		p.TripsCompleted++
		p.TotalRevenue += delta
		return nil
	})
	return err
}

// GetDriverPerformance returns the driver's accrual record for the given
// month bucket.
func (s *Service) GetDriverPerformance(ctx context.Context, driverID ID, month uint64) (DriverPerformance, error) {
	var found DriverPerformance
	err := s.view(ctx, "get_driver_performance", func(view TransactionView) error {
		if _, ok := view.FindDriver(driverID); !ok {
			return domain.NotFoundError{Entity: EntityDriver, ID: driverID}
		}
		for _, perf := range view.ListDriverPerformance() {
			if perf.DriverID == driverID && perf.Month == month {
				found = perf
				return nil
			}
		}
		return domain.NotFoundError{Entity: EntityDriverPerformance, ID: driverID}
	})
	return found, err
}

// GetMatatuAnalytics derives trip counts, revenue, and running costs for one
// vehicle. The result is computed on demand and never persisted.
func (s *Service) GetMatatuAnalytics(ctx context.Context, matatuID ID) (MatatuAnalytics, error) {
	var analytics MatatuAnalytics
	err := s.view(ctx, "get_matatu_analytics", func(view TransactionView) error {
		if _, ok := view.FindMatatu(matatuID); !ok {
			return domain.NotFoundError{Entity: EntityMatatu, ID: matatuID}
		}
		forMatatu := func(id ID) bool { return id == matatuID }

		trips := view.ListTrips()
		total := 0
		for _, trip := range trips {
			if trip.MatatuID == matatuID {
				total++
			}
		}
		analytics = MatatuAnalytics{
			TotalTrips: total,
			TotalRevenue: FilterSum(trips,
				func(t Trip) bool { return forMatatu(t.MatatuID) },
				func(t Trip) float64 { return t.Revenue }),
			MaintenanceCosts: FilterSum(view.ListMaintenance(),
				func(m Maintenance) bool { return forMatatu(m.MatatuID) },
				func(m Maintenance) float64 { return m.Cost }),
			FuelCosts: FilterSum(view.ListFuelConsumption(),
				func(f FuelConsumption) bool { return forMatatu(f.MatatuID) },
				func(f FuelConsumption) float64 { return f.Cost }),
		}
		analytics.NetProfit = analytics.TotalRevenue - analytics.MaintenanceCosts - analytics.FuelCosts
		return nil
	})
	return analytics, err
}
