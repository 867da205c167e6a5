package pgsql

import (
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		DocumentRepo:     newPgxDocumentRepository(dbPool),
		SequenceRepo:     newPgxSequenceRepository(dbPool),
		CounterpartyRepo: newPgxCounterpartyRepository(dbPool),
		AccountTxnRepo:   newPgxAccountTransactionRepository(dbPool),
		AttendanceRepo:   newPgxAttendanceRepository(dbPool),
		ReportingRepo:    newReportingRepository(dbPool),
		UserRepo:         userRepo,
		SessionRepo:      userRepo,

		CategoryRepo:    newCategoryRepository(dbPool),
		ProductRepo:     newProductRepository(dbPool),
		GodownRepo:      newGodownRepository(dbPool),
		SiloRepo:        newSiloRepository(dbPool),
		DesignationRepo: newDesignationRepository(dbPool),
		PartyRepo:       newPartyRepository(dbPool),
		AccountHeadRepo: newAccountHeadRepository(dbPool),
		EmployeeRepo:    newEmployeeRepository(dbPool),
	}
}
