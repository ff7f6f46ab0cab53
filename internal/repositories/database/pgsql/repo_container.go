package pgsql

import (
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:       &BaseRepository{Pool: dbPool},
		AccountRepo:     newPgxAccountRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		ObligationRepo:  newPgxObligationRepository(dbPool),
		PersonnelRepo:   newPgxPersonnelRepository(dbPool),
		SalaryRepo:      newPgxSalaryRepository(dbPool),
		ReportingRepo:   newReportingRepository(dbPool),
	}
}
