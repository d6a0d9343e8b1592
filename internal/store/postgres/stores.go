package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfeidau/pacsgate/internal/store"
)

// NewStores creates every PostgreSQL-backed store on top of one shared pool.
// The caller owns the pool and closes it on shutdown.
func NewStores(pool *pgxpool.Pool) store.Stores {
	return store.Stores{
		Units:     NewUnitStore(pool),
		Users:     NewUserStore(pool),
		Studies:   NewStudyStore(pool),
		Templates: NewTemplateStore(pool),
		Reports:   NewReportStore(pool),
		Audit:     NewAuditStore(pool),
	}
}
