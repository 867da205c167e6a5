package services

import (
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/ports"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, locker ports.Locker) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Reference data first; validators read parent kinds through the repositories.
	container.Category = NewReferenceService(domain.KindCategory, repos.CategoryRepo, nil)
	container.Product = NewReferenceService(domain.KindProduct, repos.ProductRepo, ProductValidator(repos.CategoryRepo))
	container.Godown = NewReferenceService(domain.KindGodown, repos.GodownRepo, GodownValidator())
	container.Silo = NewReferenceService(domain.KindSilo, repos.SiloRepo, SiloValidator(repos.GodownRepo))
	container.Designation = NewReferenceService(domain.KindDesignation, repos.DesignationRepo, nil)
	container.Party = NewReferenceService(domain.KindParty, repos.PartyRepo, PartyValidator())
	container.AccountHead = NewReferenceService(domain.KindAccountHead, repos.AccountHeadRepo, AccountHeadValidator())
	container.Employee = NewReferenceService(domain.KindEmployee, repos.EmployeeRepo, EmployeeValidator(repos.DesignationRepo))

	container.Documents = NewDocumentService(repos.DocumentRepo, repos.SequenceRepo, repos.CounterpartyRepo)
	container.HR = NewHRService(repos.AttendanceRepo, repos.CounterpartyRepo, repos.EmployeeRepo, container.Documents, locker)
	container.AccountTxn = NewAccountTransactionService(repos.AccountTxnRepo, repos.SequenceRepo, repos.CounterpartyRepo, repos.AccountHeadRepo)
	container.Reporting = NewReportingService(repos.ReportingRepo)
	container.Auth = NewAuthService(cfg, repos.UserRepo, repos.SessionRepo)

	return container
}
