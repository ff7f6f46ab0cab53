package services

import (
	portsrepo "github.com/SscSPs/mfg_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mfg_ledger/internal/core/ports/services"
	"github.com/SscSPs/mfg_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// cache may be nil, in which case reports are computed on every request.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, cache portssvc.ReportCache, options ...ServiceOption) *portssvc.ServiceContainer {
	if cfg != nil {
		policy := DefaultRetryPolicy()
		policy.MaxRetries = cfg.LedgerMaxRetries
		if cfg.LedgerRetryInitialInterval > 0 {
			policy.InitialInterval = cfg.LedgerRetryInitialInterval
		}
		options = append([]ServiceOption{WithRetryPolicy(policy)}, options...)
	}

	container := &portssvc.ServiceContainer{}

	// the obligation tracker settles payments inside the processor's unit of work
	obligations := newObligationService(repos, options...)
	container.Obligation = obligations

	balances := newBalanceMutator(repos.TxManager, repos.AccountRepo, options...)
	container.Transaction = newTransactionService(repos, balances, obligations, options...)
	container.Account = NewAccountService(repos, options...)
	container.Payroll = NewPayrollService(repos, options...)

	reportingOptions := []ReportingServiceOption{WithReportingBase(options...)}
	if cache != nil {
		reportingOptions = append(reportingOptions, WithReportCache(cache))
	}
	container.Reporting = NewReportingService(repos, reportingOptions...)

	return container
}
