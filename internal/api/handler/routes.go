package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vfg2006/pdv-api/internal/api/handler/router"
	"github.com/vfg2006/pdv-api/internal/usecases/accessing"
	"github.com/vfg2006/pdv-api/internal/usecases/authenticating"
	"github.com/vfg2006/pdv-api/pkg/middleware"
)

type chain = []func(http.Handler) http.Handler

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: promhttp.Handler(),
		},
	}
}

func Authentication(service authenticating.Authenticator, verifier accessing.AccessVerifier) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:    "/v1/logout",
			Method:  http.MethodPost,
			Handler: Logout(service),
		},
		{
			Path:    "/v1/signup",
			Method:  http.MethodPost,
			Handler: SignUp(service),
		},
		{
			Path:    "/v1/recovery/code",
			Method:  http.MethodPost,
			Handler: RequestRecoveryCode(service),
		},
		{
			Path:    "/v1/recovery/reset",
			Method:  http.MethodPost,
			Handler: ResetPassword(service),
		},
		{
			Path:    "/v1/me/access",
			Method:  http.MethodGet,
			Handler: MyAccess(verifier),
		},
	}
}

func Products(service Inventory, verifier accessing.AccessVerifier) []router.Route {
	access := chain{middleware.RequireAccess(verifier)}

	return []router.Route{
		{
			Path:        "/v1/products",
			Method:      http.MethodGet,
			Handler:     ListProducts(service),
			Middlewares: access,
		},
		{
			Path:        "/v1/products",
			Method:      http.MethodPost,
			Handler:     CreateProduct(service),
			Middlewares: access,
		},
		{
			Path:        "/v1/products/:id",
			Method:      http.MethodGet,
			Handler:     GetProduct(service),
			Middlewares: access,
		},
		{
			Path:        "/v1/products/:id",
			Method:      http.MethodPut,
			Handler:     UpdateProduct(service),
			Middlewares: access,
		},
		{
			Path:        "/v1/products/:id",
			Method:      http.MethodDelete,
			Handler:     DeleteProduct(service),
			Middlewares: access,
		},
	}
}

func Sales(service Cashier, company Company, verifier accessing.AccessVerifier) []router.Route {
	access := chain{middleware.RequireAccess(verifier)}

	return []router.Route{
		{
			Path:        "/v1/sales",
			Method:      http.MethodGet,
			Handler:     ListSales(service),
			Middlewares: access,
		},
		{
			Path:        "/v1/sales",
			Method:      http.MethodPost,
			Handler:     CreateSale(service),
			Middlewares: access,
		},
		{
			Path:        "/v1/next-sale-number",
			Method:      http.MethodGet,
			Handler:     NextSaleNumber(service),
			Middlewares: access,
		},
		{
			Path:        "/v1/sales/:id",
			Method:      http.MethodGet,
			Handler:     GetSale(service),
			Middlewares: access,
		},
		{
			Path:        "/v1/sales/:id/cancel",
			Method:      http.MethodPost,
			Handler:     CancelSale(service),
			Middlewares: access,
		},
		{
			Path:        "/v1/sales/:id/print/:kind",
			Method:      http.MethodGet,
			Handler:     PrintSale(service, company),
			Middlewares: access,
		},
		{
			Path:        "/v1/sales/:id/whatsapp",
			Method:      http.MethodGet,
			Handler:     ShareSale(service, company),
			Middlewares: access,
		},
	}
}

func CompanySettings(service Company, verifier accessing.AccessVerifier) []router.Route {
	access := chain{middleware.RequireAccess(verifier)}

	return []router.Route{
		{
			Path:        "/v1/company",
			Method:      http.MethodGet,
			Handler:     GetCompany(service),
			Middlewares: access,
		},
		{
			Path:        "/v1/company",
			Method:      http.MethodPut,
			Handler:     SaveCompany(service),
			Middlewares: access,
		},
		{
			Path:        "/v1/fiscal-config",
			Method:      http.MethodGet,
			Handler:     GetFiscalConfig(service),
			Middlewares: access,
		},
		{
			Path:        "/v1/fiscal-config",
			Method:      http.MethodPut,
			Handler:     SaveFiscalConfig(service),
			Middlewares: access,
		},
	}
}

// Payments fica fora do RequireAccess: o operador bloqueado precisa pagar
func Payments(service Billing) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/plans",
			Method:  http.MethodGet,
			Handler: ListPlans(service),
		},
		{
			Path:    "/v1/payments",
			Method:  http.MethodGet,
			Handler: ListPayments(service),
		},
		{
			Path:    "/v1/payments",
			Method:  http.MethodPost,
			Handler: CreatePayment(service),
		},
		{
			Path:        "/v1/payments/:id/confirm",
			Method:      http.MethodPost,
			Handler:     ConfirmPayment(service),
			Middlewares: chain{middleware.AdminOnly()},
		},
		{
			Path:    "/v1/me/days-purchased",
			Method:  http.MethodGet,
			Handler: DaysPurchased(service),
		},
	}
}

func Administration(service Admin) []router.Route {
	admin := chain{middleware.AdminOnly()}

	return []router.Route{
		{
			Path:        "/v1/admin/operators",
			Method:      http.MethodGet,
			Handler:     ListOperators(service),
			Middlewares: admin,
		},
		{
			Path:        "/v1/admin/operators",
			Method:      http.MethodPost,
			Handler:     CreateOperator(service),
			Middlewares: admin,
		},
		{
			Path:        "/v1/admin/operators/:id",
			Method:      http.MethodGet,
			Handler:     GetOperator(service),
			Middlewares: admin,
		},
		{
			Path:        "/v1/admin/operators/:id",
			Method:      http.MethodPut,
			Handler:     UpdateOperator(service),
			Middlewares: admin,
		},
		{
			Path:        "/v1/admin/operators/:id",
			Method:      http.MethodDelete,
			Handler:     DeleteOperator(service),
			Middlewares: admin,
		},
		{
			Path:        "/v1/admin/operators/:id/suspend",
			Method:      http.MethodPost,
			Handler:     SuspendOperator(service),
			Middlewares: admin,
		},
		{
			Path:        "/v1/admin/operators/:id/activate",
			Method:      http.MethodPost,
			Handler:     ActivateOperator(service),
			Middlewares: admin,
		},
		{
			Path:        "/v1/admin/earnings",
			Method:      http.MethodGet,
			Handler:     ListEarnings(service),
			Middlewares: admin,
		},
		{
			Path:        "/v1/admin/earnings/summary",
			Method:      http.MethodGet,
			Handler:     EarningsSummary(service),
			Middlewares: admin,
		},
	}
}

// Chat fica fora do RequireAccess: o operador bloqueado ainda fala com o suporte
func Chat(service Messaging) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/chat/:operator_id",
			Method:  http.MethodGet,
			Handler: ChatHistory(service),
		},
		{
			Path:    "/v1/chat/:operator_id",
			Method:  http.MethodPost,
			Handler: SendMessage(service),
		},
		{
			Path:    "/v1/chat/:operator_id/read",
			Method:  http.MethodPost,
			Handler: MarkChatRead(service),
		},
	}
}

func Sync(service Syncer) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/sync/run",
			Method:  http.MethodPost,
			Handler: RunSync(service),
		},
		{
			Path:    "/v1/sync/status",
			Method:  http.MethodGet,
			Handler: SyncStatus(service),
		},
	}
}

// Routes monta todas as rotas da API
func Routes(services Services) []router.ConfigRouter {
	return []router.ConfigRouter{
		router.WithRoutes(Healthcheck()...),
		router.WithRoutes(Authentication(services.Auth, services.Access)...),
		router.WithRoutes(Products(services.Inventory, services.Access)...),
		router.WithRoutes(Sales(services.Checkout, services.Company, services.Access)...),
		router.WithRoutes(CompanySettings(services.Company, services.Access)...),
		router.WithRoutes(Payments(services.Billing)...),
		router.WithRoutes(Administration(services.Admin)...),
		router.WithRoutes(Chat(services.Messaging)...),
		router.WithRoutes(Sync(services.Sync)...),
	}
}
