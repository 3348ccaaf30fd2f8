package postgres

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const startedAtKey = "query_monitor:started_at"

// QueryStats holds aggregated statement statistics
type QueryStats struct {
	TotalQueries     int64         `json:"total_queries"`
	SlowQueries      int64         `json:"slow_queries"`
	FailedQueries    int64         `json:"failed_queries"`
	AverageQueryTime time.Duration `json:"average_query_time"`
	TotalQueryTime   time.Duration `json:"total_query_time"`
}

// QueryMonitor times statements through GORM callbacks
type QueryMonitor struct {
	slowThreshold time.Duration
	duration      *prometheus.HistogramVec
	logger        *zap.Logger

	mu    sync.Mutex
	stats QueryStats
}

// NewQueryMonitor creates a monitor. reg may be nil to skip metric export.
func NewQueryMonitor(reg prometheus.Registerer, slowThreshold time.Duration, logger *zap.Logger) *QueryMonitor {
	qm := &QueryMonitor{
		slowThreshold: slowThreshold,
		logger:        logger.Named("query-monitor"),
	}
	if reg != nil {
		qm.duration = promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recipewise_db_query_duration_seconds",
				Help:    "Database statement duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "table", "status"},
		)
	}
	return qm
}

// Install registers before/after callbacks for queries, creates and updates
func (qm *QueryMonitor) Install(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []error{
		cb.Query().Before("gorm:query").Register("monitor:before_query", qm.before),
		cb.Query().After("gorm:query").Register("monitor:after_query", qm.after("select")),
		cb.Create().Before("gorm:create").Register("monitor:before_create", qm.before),
		cb.Create().After("gorm:create").Register("monitor:after_create", qm.after("insert")),
		cb.Update().Before("gorm:update").Register("monitor:before_update", qm.before),
		cb.Update().After("gorm:update").Register("monitor:after_update", qm.after("update")),
	}
	for _, err := range registrations {
		if err != nil {
			return err
		}
	}
	return nil
}

func (qm *QueryMonitor) before(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func (qm *QueryMonitor) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		started, ok := v.(time.Time)
		if !ok {
			return
		}

		table := ""
		if db.Statement != nil {
			table = db.Statement.Table
		}
		failed := db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound)
		qm.record(operation, table, time.Since(started), failed)
	}
}

func (qm *QueryMonitor) record(operation, table string, duration time.Duration, failed bool) {
	status := "success"
	if failed {
		status = "error"
	}
	if qm.duration != nil {
		qm.duration.WithLabelValues(operation, table, status).Observe(duration.Seconds())
	}

	qm.mu.Lock()
	qm.stats.TotalQueries++
	qm.stats.TotalQueryTime += duration
	qm.stats.AverageQueryTime = qm.stats.TotalQueryTime / time.Duration(qm.stats.TotalQueries)
	if failed {
		qm.stats.FailedQueries++
	}
	slow := qm.slowThreshold > 0 && duration > qm.slowThreshold
	if slow {
		qm.stats.SlowQueries++
	}
	qm.mu.Unlock()

	if slow {
		qm.logger.Warn("Slow query detected",
			zap.String("operation", operation),
			zap.String("table", table),
			zap.Duration("duration", duration),
		)
	}
}

// Stats returns a snapshot of the collected statistics
func (qm *QueryMonitor) Stats() QueryStats {
	qm.mu.Lock()
	defer qm.mu.Unlock()
	return qm.stats
}
