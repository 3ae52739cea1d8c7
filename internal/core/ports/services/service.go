package services

// ServiceContainer bundles every service facade so handler registration takes
// a single dependency.
type ServiceContainer struct {
	BudgetSvc    BudgetSvcFacade
	CategorySvc  CategorySvcFacade
	AuditSvc     AuditSvcFacade
	ReportingSvc ReportingSvcFacade
	AuthSvc      AuthSvcFacade
	UserSvc      UserSvcFacade
}
