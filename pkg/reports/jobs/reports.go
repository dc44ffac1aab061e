package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/activereport/pkg/models/store"
	"github.com/de-tools/activereport/pkg/report"
	jobstore "github.com/de-tools/activereport/pkg/store/jobs"
	"github.com/rs/zerolog"
)

const (
	JobResource      = "job"
	ActivityResource = "job_activity"
	SummaryResource  = "job_summary"
)

// Definitions returns every job report keyed by resource name.
func Definitions(s jobstore.Store) map[string]*report.Definition {
	return map[string]*report.Definition{
		JobResource:      JobReport(s),
		ActivityResource: ActivityReport(s),
		SummaryResource:  SummaryReport(s),
	}
}

// JobReport lists every job carrying the requested job number.
func JobReport(s jobstore.Store) *report.Definition {
	return report.Define(JobResource).
		DefineAttribute("jobNumber").
		ValidatesPresenceOf("jobNumber").
		BuildReport(func(ctx context.Context, r *report.Report) error {
			jobs, err := s.FindByJobNumber(ctx, r.String("jobNumber"))
			if err != nil {
				return err
			}
			for _, j := range jobs {
				r.Entries.Add(jobEntry(j))
			}
			return nil
		}).
		ExportCSV(report.CSVTable(
			report.Column{Header: "Id", Key: "id"},
			report.Column{Header: "Job Number", Key: "jobNumber"},
			report.Column{Header: "Company", Key: "company"},
			report.Column{Header: "Stage", Key: "stage"},
			report.Column{Header: "Amount", Key: "amount"},
			report.Column{Header: "Currency", Key: "currency"},
			report.Column{Header: "Created At", Key: "created_at"},
		))
}

// periodReport is the base of reports covering a from/to period.
func periodReport(name string) *report.Definition {
	return report.Define(name).
		DefineAttributes("from", "to").
		ValidatesPresenceOf("from", "to").
		Validate(func(_ context.Context, r *report.Report) {
			from, errFrom := r.Time("from")
			to, errTo := r.Time("to")
			if errFrom != nil || errTo != nil {
				if !r.Params.Blank("from") && !r.Params.Blank("to") {
					r.Errors.Add("from and to must be dates")
				}
				return
			}
			if !from.Before(to) {
				r.Errors.Add("from must be before to")
			}
		})
}

// ActivityReport lists jobs created in a period as signed entries: credits
// for positive amounts and debits for refunds.
func ActivityReport(s jobstore.Store) *report.Definition {
	return periodReport(ActivityResource).
		DefineAttribute("stage").
		BuildReport(func(ctx context.Context, r *report.Report) error {
			from, to, err := period(r)
			if err != nil {
				return err
			}
			jobs, err := s.FindCreatedBetween(ctx, from, to, r.String("stage"))
			if err != nil {
				return err
			}
			for _, j := range jobs {
				sign := report.Positive
				if j.Amount < 0 {
					sign = report.Negative
				}
				r.Entries.Add(report.SignedEntry{Object: jobEntry(j), Sign: sign})
			}
			return nil
		}).
		AfterBuild(logBalance).
		ExportCSV(report.CSVColumns("created_at", "jobNumber", "company", "stage", "amount", "sign"))
}

// SummaryReport totals jobs per stage over a period.
func SummaryReport(s jobstore.Store) *report.Definition {
	return periodReport(SummaryResource).
		BuildReport(func(ctx context.Context, r *report.Report) error {
			from, to, err := period(r)
			if err != nil {
				return err
			}
			totals, err := s.TotalsByStage(ctx, from, to)
			if err != nil {
				return err
			}
			for _, t := range totals {
				r.Entries.Add(report.HashEntry{
					"stage":  t.Stage,
					"jobs":   t.Count,
					"amount": t.Amount,
				})
			}
			return nil
		}).
		ExportCSV(report.CSVColumns("stage", "jobs", "amount"))
}

func period(r *report.Report) (time.Time, time.Time, error) {
	from, err := r.Time("from")
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from: %w", err)
	}
	to, err := r.Time("to")
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to: %w", err)
	}
	return from, to, nil
}

// Balance sums the signed amounts of the entries.
func Balance(entries report.Entries) float64 {
	var total float64
	for _, e := range entries {
		signed, ok := e.(report.SignedEntry)
		if !ok {
			continue
		}
		v, _ := signed.Get("amount")
		amount, _ := v.(float64)
		if amount < 0 {
			amount = -amount
		}
		total += float64(signed.Sign) * amount
	}
	return total
}

func logBalance(ctx context.Context, r *report.Report) error {
	zerolog.Ctx(ctx).Info().
		Str("report", r.Name()).
		Int("entries", r.Entries.Len()).
		Float64("balance", Balance(r.Entries)).
		Msg("job activity built")
	return nil
}

func jobEntry(j store.Job) report.HashEntry {
	return report.HashEntry{
		"id":         j.ID,
		"jobNumber":  j.JobNumber,
		"company":    j.Company,
		"stage":      j.Stage,
		"amount":     j.Amount,
		"currency":   j.Currency,
		"created_at": j.CreatedAt,
	}
}
