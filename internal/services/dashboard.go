package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mxcollect/cobradash/internal/common"
	"github.com/mxcollect/cobradash/internal/livequery"
	"github.com/mxcollect/cobradash/internal/logging"
	"github.com/mxcollect/cobradash/internal/models"
	"github.com/mxcollect/cobradash/internal/report"
	"github.com/mxcollect/cobradash/internal/repositories/cache"
	"github.com/mxcollect/cobradash/internal/repositories/issues"
	"github.com/mxcollect/cobradash/internal/repositories/settings"
)

const monthlyChartID = "monthly_performance"

// DashboardState is one emission of the dashboard pipeline. Loading is true
// only for the very first emission, before any batch has been computed.
type DashboardState struct {
	Loading bool
	KPIs    []models.KPI
}

// issueStats is the per-batch aggregate every KPI formula reads from. The
// issues table is scanned once per batch, not once per KPI.
type issueStats struct {
	total        int
	closed       int
	openUrgent   int
	blocked      int
	withinSLA    int
	avgResHours  float64
	assignedTo   map[string]struct{}
}

type kpiDef struct {
	key         string
	name        string
	description string
	compute     func(st issueStats) (value string, status models.KPIStatus)
}

// DashboardService derives the KPI set and chart series from the issues
// table, serving each value from the TTL cache when fresh and recomputing
// otherwise.
type DashboardService struct {
	issues  issues.Repository
	cache   cache.Repository
	prefs   settings.Repository
	export  report.Exporter
	log     logging.Logger

	refresh time.Duration
	ttl     time.Duration
	now     func() time.Time

	catalog []kpiDef

	mu   sync.Mutex
	last []models.KPI
}

func NewDashboardService(issueRepo issues.Repository, cacheRepo cache.Repository, prefs settings.Repository, export report.Exporter, log logging.Logger, refresh, ttl time.Duration) *DashboardService {
	return &DashboardService{
		issues:  issueRepo,
		cache:   cacheRepo,
		prefs:   prefs,
		export:  export,
		log:     log,
		refresh: refresh,
		ttl:     ttl,
		now:     time.Now,
		catalog: kpiCatalog(),
	}
}

// Observe emits a loading state immediately, then one batched KPI set per
// preference change or refresh tick. Each batch is emitted as a single state
// transition.
func (s *DashboardService) Observe(ctx context.Context) <-chan DashboardState {
	triggers := livequery.Combine2(ctx,
		s.prefs.ObserveKPIKeys(ctx),
		livequery.Interval(ctx, s.refresh),
		func(keys []string, _ time.Time) []string { return keys },
	)

	out := make(chan DashboardState)
	go func() {
		defer close(out)
		select {
		case out <- DashboardState{Loading: true}:
		case <-ctx.Done():
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case keys, ok := <-triggers:
				if !ok {
					return
				}
				kpis, err := s.computeBatch(ctx, keys)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					s.log.Warn(ctx, "kpi batch failed, keeping previous state", "error", err)
					continue
				}
				s.mu.Lock()
				s.last = kpis
				s.mu.Unlock()
				select {
				case out <- DashboardState{KPIs: kpis}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// computeBatch resolves the visible KPI set for the given selection. An
// empty selection means show the full catalog. Cache failures degrade to
// recomputation; only the underlying issue scan can fail the batch.
func (s *DashboardService) computeBatch(ctx context.Context, selected []string) ([]models.KPI, error) {
	visible := s.visibleDefs(selected)
	now := s.now()

	var st *issueStats
	kpis := make([]models.KPI, 0, len(visible))
	for _, def := range visible {
		if k, ok := s.fromCache(ctx, def.key, now); ok {
			kpis = append(kpis, k)
			continue
		}

		if st == nil {
			all, err := s.issues.GetAll(ctx)
			if err != nil {
				return nil, fmt.Errorf("load issues for kpi batch: %w", err)
			}
			st = aggregate(all)
		}

		value, status := def.compute(*st)
		k := models.KPI{
			Key:         def.key,
			Name:        def.name,
			Value:       value,
			Description: def.description,
			Status:      status,
		}
		kpis = append(kpis, k)
		s.writeThrough(ctx, def.key, k, now)
	}
	return kpis, nil
}

func (s *DashboardService) visibleDefs(selected []string) []kpiDef {
	if len(selected) == 0 {
		return s.catalog
	}
	want := make(map[string]struct{}, len(selected))
	for _, k := range selected {
		want[k] = struct{}{}
	}
	out := make([]kpiDef, 0, len(selected))
	for _, def := range s.catalog {
		if _, ok := want[def.key]; ok {
			out = append(out, def)
		}
	}
	return out
}

func (s *DashboardService) fromCache(ctx context.Context, key string, now time.Time) (models.KPI, bool) {
	e, err := s.cache.GetKPI(ctx, cacheKey(key))
	if err != nil {
		s.log.Warn(ctx, "kpi cache read failed, recomputing", "key", key, "error", err)
		return models.KPI{}, false
	}
	if e == nil || e.Stale(s.ttl, now) {
		return models.KPI{}, false
	}
	var k models.KPI
	if err := json.Unmarshal([]byte(e.Payload), &k); err != nil {
		s.log.Warn(ctx, "kpi cache payload corrupt, recomputing", "key", key, "error", err)
		return models.KPI{}, false
	}
	return k, true
}

func (s *DashboardService) writeThrough(ctx context.Context, key string, k models.KPI, now time.Time) {
	payload, err := json.Marshal(k)
	if err != nil {
		s.log.Warn(ctx, "kpi cache encode failed", "key", key, "error", err)
		return
	}
	e := &models.CacheEntry{Key: cacheKey(key), Payload: string(payload), CreatedAt: now}
	if err := s.cache.PutKPI(ctx, e); err != nil {
		s.log.Warn(ctx, "kpi cache write failed", "key", key, "error", err)
	}
}

// KPIByName resolves a KPI from the most recent batch by key or display
// name, for detail views. Returns common.ErrNotFound for unknown names, a
// terminal outcome distinct from a batch that has not arrived yet.
func (s *DashboardService) KPIByName(name string) (models.KPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.last {
		if k.Key == name || k.Name == name {
			return k, nil
		}
	}
	return models.KPI{}, fmt.Errorf("kpi %q: %w", name, common.ErrNotFound)
}

// GenerateReport exports the snapshot currently held by the provider. It
// never triggers recomputation; an empty snapshot means no batch has been
// produced yet.
func (s *DashboardService) GenerateReport(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	snapshot := make([]models.KPI, len(s.last))
	copy(snapshot, s.last)
	s.mu.Unlock()

	if len(snapshot) == 0 {
		return nil, fmt.Errorf("no kpi snapshot available yet: %w", common.ErrNotFound)
	}
	return s.export.KPIReport(snapshot)
}

// MonthlyPerformance returns the issues-closed-per-month series for the last
// six months, cached under its own chart entry.
func (s *DashboardService) MonthlyPerformance(ctx context.Context) ([]models.ChartPoint, error) {
	now := s.now()

	e, err := s.cache.GetChart(ctx, monthlyChartID)
	if err != nil {
		s.log.Warn(ctx, "chart cache read failed, recomputing", "chart", monthlyChartID, "error", err)
	} else if e != nil && !e.Stale(s.ttl, now) {
		var pts []models.ChartPoint
		if err := json.Unmarshal([]byte(e.Payload), &pts); err == nil {
			return pts, nil
		}
		s.log.Warn(ctx, "chart cache payload corrupt, recomputing", "chart", monthlyChartID)
	}

	all, err := s.issues.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	pts := monthlyClosed(all, now)

	if payload, err := json.Marshal(pts); err == nil {
		entry := &models.CacheEntry{Key: monthlyChartID, Payload: string(payload), CreatedAt: now}
		if err := s.cache.PutChart(ctx, entry); err != nil {
			s.log.Warn(ctx, "chart cache write failed", "chart", monthlyChartID, "error", err)
		}
	}
	return pts, nil
}

func cacheKey(kpiKey string) string { return "kpi:" + kpiKey }

func aggregate(all []models.Issue) *issueStats {
	st := &issueStats{assignedTo: make(map[string]struct{})}
	var resHours float64
	for _, i := range all {
		st.total++
		switch i.Status {
		case models.StatusClosed:
			st.closed++
			h := i.UpdatedAt.Sub(i.CreatedAt).Hours()
			if h < 0 {
				h = 0
			}
			resHours += h
			if h <= 72 {
				st.withinSLA++
			}
		case models.StatusBlocked:
			st.blocked++
		default:
			if i.Priority == models.PriorityHigh || i.Priority == models.PriorityCritical {
				st.openUrgent++
			}
		}
		if i.AssignedTo != nil && *i.AssignedTo != "" {
			st.assignedTo[*i.AssignedTo] = struct{}{}
		}
	}
	if st.closed > 0 {
		st.avgResHours = resHours / float64(st.closed)
	}
	return st
}

func monthlyClosed(all []models.Issue, now time.Time) []models.ChartPoint {
	counts := make(map[string]float64)
	for _, i := range all {
		if i.Status != models.StatusClosed {
			continue
		}
		counts[i.UpdatedAt.Format("2006-01")]++
	}

	// anchor on day 1 so month arithmetic never spills into a neighbour
	pts := make([]models.ChartPoint, 0, 6)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -5, 0)
	for m := 0; m < 6; m++ {
		label := first.AddDate(0, m, 0).Format("2006-01")
		pts = append(pts, models.ChartPoint{Label: label, Value: counts[label]})
	}
	return pts
}

// kpiCatalog is the full set of known indicators. Values are derived from
// the local issues table so the dashboard is deterministic and testable.
func kpiCatalog() []kpiDef {
	pct := func(part, whole int) float64 {
		if whole == 0 {
			return 100
		}
		return float64(part) / float64(whole) * 100
	}
	rate := func(v float64, goodAt, warnAt float64) models.KPIStatus {
		switch {
		case v >= goodAt:
			return models.KPIGood
		case v >= warnAt:
			return models.KPIWarning
		}
		return models.KPIBad
	}
	rateLow := func(v float64, goodAt, warnAt float64) models.KPIStatus {
		switch {
		case v <= goodAt:
			return models.KPIGood
		case v <= warnAt:
			return models.KPIWarning
		}
		return models.KPIBad
	}

	return []kpiDef{
		{
			key:         "collection_efficiency",
			name:        "Eficiencia de Cobranza",
			description: "Porcentaje de incidencias resueltas",
			compute: func(st issueStats) (string, models.KPIStatus) {
				v := pct(st.closed, st.total)
				return fmt.Sprintf("%.0f%%", v), rate(v, 80, 50)
			},
		},
		{
			key:         "resolution_time",
			name:        "Tiempo de Resolución",
			description: "Horas promedio hasta el cierre",
			compute: func(st issueStats) (string, models.KPIStatus) {
				return fmt.Sprintf("%.1f h", st.avgResHours), rateLow(st.avgResHours, 24, 72)
			},
		},
		{
			key:         "managed_clients",
			name:        "Clientes Gestionados",
			description: "Incidencias registradas en total",
			compute: func(st issueStats) (string, models.KPIStatus) {
				return fmt.Sprintf("%d", st.total), models.KPIGood
			},
		},
		{
			key:         "delinquency",
			name:        "Índice de Morosidad",
			description: "Porcentaje de casos urgentes sin resolver",
			compute: func(st issueStats) (string, models.KPIStatus) {
				v := 100 - pct(st.total-st.openUrgent, st.total)
				return fmt.Sprintf("%.0f%%", v), rateLow(v, 10, 25)
			},
		},
		{
			key:         "sla_compliance",
			name:        "Cumplimiento SLA",
			description: "Cierres dentro de 72 horas",
			compute: func(st issueStats) (string, models.KPIStatus) {
				v := pct(st.withinSLA, st.closed)
				return fmt.Sprintf("%.0f%%", v), rate(v, 90, 70)
			},
		},
		{
			key:         "satisfaction",
			name:        "Satisfacción del Cliente",
			description: "Casos gestionados sin bloqueo",
			compute: func(st issueStats) (string, models.KPIStatus) {
				v := pct(st.total-st.blocked, st.total)
				return fmt.Sprintf("%.0f%%", v), rate(v, 90, 75)
			},
		},
	}
}
