package simpletxmanager

import (
	"context"
	"database/sql"

	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// sqlDB адаптирует *sql.DB к txmanager.TxBeginner
type sqlDB struct {
	db *sql.DB
}

func (s sqlDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	return s.db.BeginTx(ctx, opts)
}

// NewTransactionManager менеджер транзакций поверх голого *sql.DB (когда метрики выключены)
func NewTransactionManager(db *sql.DB) *txmanager.TransactionManager {
	return txmanager.NewTransactionManager(sqlDB{db: db})
}
