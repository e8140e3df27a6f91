package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geonovis/geonovis/internal/ports"
	"golang.org/x/sync/errgroup"
)

// Result is the merged output of one request. Exactly one of Records or
// Table is meaningful, according to Variant.
type Result struct {
	Variant  ports.Variant
	Records  []any
	Table    map[string]any
	Degraded []ports.Degradation
}

// Value returns the merged data in the shape of the variant, ready for JSON
// encoding. It is never nil.
func (r *Result) Value() any {
	if r.Variant == ports.VariantRecords {
		if r.Records == nil {
			return []any{}
		}
		return r.Records
	}
	if r.Table == nil {
		return map[string]any{}
	}
	return r.Table
}

// Options configures a Service.
type Options struct {
	BasePath    string
	Variant     ports.Variant
	UniqueKey   string // records variant only; defaults to "iso"
	MaxParallel int    // 0 = one goroutine per region, no cap
	Audit       ports.AuditLog
	Logger      *slog.Logger
}

// Service fans a Loader out across regions and merges the results.
type Service struct {
	loader      *Loader
	variant     ports.Variant
	uniqueKey   string
	maxParallel int
	audit       ports.AuditLog
	logger      *slog.Logger
	now         func() time.Time
	load        func(region string) LoadResult
}

// NewService validates opts and returns a ready Service.
func NewService(opts Options) (*Service, error) {
	variant, err := ports.ParseVariant(string(opts.Variant))
	if err != nil {
		return nil, err
	}
	if opts.MaxParallel < 0 {
		return nil, fmt.Errorf("max parallel must be >= 0, got %d", opts.MaxParallel)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	key := opts.UniqueKey
	if key == "" {
		key = DefaultUniqueKey
	}
	loader := NewLoader(opts.BasePath, variant, logger)
	return &Service{
		loader:      loader,
		variant:     variant,
		uniqueKey:   key,
		maxParallel: opts.MaxParallel,
		audit:       opts.Audit,
		logger:      logger,
		now:         time.Now,
		load:        loader.Load,
	}, nil
}

// Variant returns the merge variant this service was built with.
func (s *Service) Variant() ports.Variant { return s.variant }

// BasePath returns the directory geocode files are read from.
func (s *Service) BasePath() string { return s.loader.BasePath }

// Merge loads every region concurrently and merges the results in the order
// regions were given. Individual load failures never fail the merge; they
// are reported in Result.Degraded. An error is returned only when ctx is
// cancelled before all loads were scheduled.
func (s *Service) Merge(ctx context.Context, regions []string) (*Result, error) {
	results := make([]LoadResult, len(regions))

	g, gctx := errgroup.WithContext(ctx)
	if s.maxParallel > 0 {
		g.SetLimit(s.maxParallel)
	}
	for i, region := range regions {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.load(region)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load geocodes: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load geocodes: %w", err)
	}

	res := &Result{Variant: s.variant}
	at := s.now().Unix()
	for _, r := range results {
		if r.Status != StatusEmpty {
			continue
		}
		res.Degraded = append(res.Degraded, r.Degradation(at))
	}
	s.record(res.Degraded)

	switch s.variant {
	case ports.VariantRecords:
		tables := make([][]any, len(results))
		for i, r := range results {
			tables[i], _ = r.Value(s.variant).([]any)
		}
		res.Records = MergeRecords(tables, s.uniqueKey)
	default:
		tables := make([]any, len(results))
		for i, r := range results {
			tables[i] = r.Value(s.variant)
		}
		res.Table = MergeTables(tables)
	}
	return res, nil
}

// record writes a request's degradations to the audit log in one batch.
func (s *Service) record(ds []ports.Degradation) {
	if s.audit == nil || len(ds) == 0 {
		return
	}
	if err := s.audit.RecordBatch(ds); err != nil {
		s.logger.Warn("audit record failed", "entries", len(ds), "err", err)
	}
}
