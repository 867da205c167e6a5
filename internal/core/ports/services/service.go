package services

import "github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Documents  DocumentSvcFacade
	HR         HRSvc
	AccountTxn AccountTransactionSvc
	Reporting  ReportingSvcFacade
	Auth       AuthSvc

	Category    ReferenceSvc[*domain.Category]
	Product     ReferenceSvc[*domain.Product]
	Godown      ReferenceSvc[*domain.Godown]
	Silo        ReferenceSvc[*domain.Silo]
	Designation ReferenceSvc[*domain.Designation]
	Party       ReferenceSvc[*domain.Party]
	AccountHead ReferenceSvc[*domain.AccountHead]
	Employee    ReferenceSvc[*domain.Employee]
}
