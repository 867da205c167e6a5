package repositories

import "github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	DocumentRepo     DocumentRepositoryWithTx
	SequenceRepo     SequenceRepository
	CounterpartyRepo CounterpartyRepository
	AccountTxnRepo   AccountTransactionRepositoryWithTx
	AttendanceRepo   AttendanceRepositoryWithTx
	ReportingRepo    ReportingRepository
	UserRepo         UserRepositoryFacade
	SessionRepo      SessionRepository

	CategoryRepo    ReferenceRepository[*domain.Category]
	ProductRepo     ReferenceRepository[*domain.Product]
	GodownRepo      ReferenceRepository[*domain.Godown]
	SiloRepo        ReferenceRepository[*domain.Silo]
	DesignationRepo ReferenceRepository[*domain.Designation]
	PartyRepo       ReferenceRepository[*domain.Party]
	AccountHeadRepo ReferenceRepository[*domain.AccountHead]
	EmployeeRepo    ReferenceRepository[*domain.Employee]
}
