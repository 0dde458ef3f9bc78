package standardise

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dsih-artpark/epipipeline-v2/internal/linelist"
	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
)

// Run standardises rows on up to Options.Workers goroutines. The output is in
// input order. The only error is the cancellation of ctx.
func (s *Standardiser) Run(ctx context.Context, rows []linelist.Row) ([]Record, error) {
	out := make([]Record, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, row := range rows {
		if gctx.Err() != nil {
			break
		}
		i, row := i, row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.Standardise(row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary tracks the outcome of a batch.
type Summary struct {
	Total               int
	WithPrimaryDate     int
	DistrictResolved    int
	SubdistrictResolved int
	VillageResolved     int
	AddressFallbacks    int
	ByCoarseness        map[regions.Level]int
	Removed             Removed
	ProcessingTime      time.Duration
}

// Summarise counts the outcomes of records. Removed and ProcessingTime are
// left to the caller.
func Summarise(records []Record) Summary {
	sum := Summary{Total: len(records), ByCoarseness: make(map[regions.Level]int)}
	for _, r := range records {
		if r.Primary.Valid {
			sum.WithPrimaryDate++
		}
		if r.Location.District.Matched() {
			sum.DistrictResolved++
		}
		if r.Location.Subdistrict.Matched() {
			sum.SubdistrictResolved++
		}
		if r.Location.Village.Matched() {
			sum.VillageResolved++
		}
		if r.VillageFromAddress {
			sum.AddressFallbacks++
		}
		sum.ByCoarseness[r.Location.Coarseness]++
	}
	return sum
}

// LogArgs returns the summary as slog key-value pairs.
func (s Summary) LogArgs() []any {
	return []any{
		"total", s.Total,
		"with_primary_date", s.WithPrimaryDate,
		"district_resolved", s.DistrictResolved,
		"subdistrict_resolved", s.SubdistrictResolved,
		"village_resolved", s.VillageResolved,
		"address_fallbacks", s.AddressFallbacks,
		"duplicates_dropped", s.Removed.Duplicates,
		"sparse_dropped", s.Removed.Sparse,
		"duration_ms", s.ProcessingTime.Milliseconds(),
	}
}
