package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"matatucore/internal/blob"
	"matatucore/pkg/domain"
)

// GenerateFinancialReport computes revenue and expense totals with per-source
// breakdowns for a SACCO over the inclusive [start, end] window, persists the
// report as an immutable snapshot, and archives it when a report archive is
// configured.
func (s *Service) GenerateFinancialReport(ctx context.Context, saccoID ID, start, end time.Time) (FinancialReport, Result, error) {
	var report FinancialReport
	res, err := s.run(ctx, "generate_financial_report", &report.ID, func(tx Transaction) error {
		if _, ok := tx.FindSacco(saccoID); !ok {
			return domain.NotFoundError{Entity: EntitySacco, ID: saccoID}
		}
		snapshot := tx.Snapshot()
		inWindow := func(ts time.Time) bool {
			return !ts.Before(start) && !ts.After(end)
		}

		revenues := snapshot.ListRevenues()
		expenses := snapshot.ListExpenses()
		keepRevenue := func(r Revenue) bool { return r.SaccoID == saccoID && inWindow(r.Date) }
		keepExpense := func(e Expense) bool { return e.SaccoID == saccoID && inWindow(e.Date) }

		totalRevenue := FilterSum(revenues, keepRevenue, func(r Revenue) float64 { return r.Amount })
		totalExpenses := FilterSum(expenses, keepExpense, func(e Expense) float64 { return e.Amount })

		revenueBySource := GroupSum(revenues, keepRevenue,
			func(r Revenue) string { return r.Description },
			func(r Revenue) float64 { return r.Amount })
		expenseByCategory := GroupSum(expenses, keepExpense,
			func(e Expense) string { return e.Category },
			func(e Expense) float64 { return e.Amount })

		profitMargin := 0.0
		if totalRevenue != 0 {
			profitMargin = (totalRevenue - totalExpenses) / totalRevenue * 100
		}

		var err error
		report, err = tx.CreateFinancialReport(FinancialReport{
			SaccoID:          saccoID,
			PeriodStart:      start,
			PeriodEnd:        end,
			TotalRevenue:     totalRevenue,
			TotalExpenses:    totalExpenses,
			ExpenseBreakdown: expenseBreakdown(expenseByCategory, totalExpenses),
			RevenueBreakdown: revenueBreakdown(revenueBySource, totalRevenue),
			ProfitMargin:     profitMargin,
		})
		return err
	})
	if err != nil {
		return FinancialReport{}, res, err
	}
	s.archiveReport(ctx, report)
	return report, res, nil
}

// expenseBreakdown converts grouped sums to breakdown rows, sorted by
// category for stable output. Percentages are 0 when the total is 0.
func expenseBreakdown(groups map[string]float64, total float64) []domain.ExpenseCategory {
	rows := make([]domain.ExpenseCategory, 0, len(groups))
	for category, amount := range groups {
		rows = append(rows, domain.ExpenseCategory{
			Category:   category,
			Amount:     amount,
			Percentage: percentage(amount, total),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })
	return rows
}

func revenueBreakdown(groups map[string]float64, total float64) []domain.RevenueSource {
	rows := make([]domain.RevenueSource, 0, len(groups))
	for source, amount := range groups {
		rows = append(rows, domain.RevenueSource{
			Source:     source,
			Amount:     amount,
			Percentage: percentage(amount, total),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Source < rows[j].Source })
	return rows
}

func percentage(amount, total float64) float64 {
	if total == 0 {
		return 0
	}
	return amount / total * 100
}

// archiveReport writes the report JSON to the configured blob store. Archive
// failures are logged, not surfaced: the report is already committed.
func (s *Service) archiveReport(ctx context.Context, report FinancialReport) {
	if s.archive == nil {
		return
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		s.logger.Error("encode report for archive", "report_id", report.ID, "error", err)
		return
	}
	key := fmt.Sprintf("reports/%d/%d.json", report.SaccoID, report.ID)
	if _, err := s.archive.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{
		ContentType: "application/json",
		Metadata: map[string]string{
			"sacco_id":  fmt.Sprintf("%d", report.SaccoID),
			"report_id": fmt.Sprintf("%d", report.ID),
		},
	}); err != nil {
		s.logger.Error("archive report", "report_id", report.ID, "key", key, "error", err)
		return
	}
	s.logger.Info("report archived", "report_id", report.ID, "key", key)
}
