package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itsrogermachado/novaeramtds-sub001/api/controllers"
	"github.com/itsrogermachado/novaeramtds-sub001/api/middleware"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/auth"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/backup"
	checkoutsvc "github.com/itsrogermachado/novaeramtds-sub001/internal/checkout"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/coupons"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/finance"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/orders"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/payments"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/products"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/users"
	pixwebhook "github.com/itsrogermachado/novaeramtds-sub001/internal/webhooks/pix"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/auth/session"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/config"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/metrics"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/redis"
)

// Deps carries everything the HTTP surface needs. The cmd/api binary
// builds one of these and hands it over; tests build a smaller one.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *db.Client
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics

	Auth     auth.Service
	Users    users.Service
	Backup   backup.Service
	Finance  finance.Service
	Products products.Service
	Coupons  coupons.Service
	Checkout checkoutsvc.Service
	Orders   orders.Service
	Payments payments.Service
	Webhook  *pixwebhook.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, d.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Storefront surface. No authentication; guest orders are looked up
	// with order number plus customer email.
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(d.Products, logg))
			r.Get("/{slug}", controllers.GetProduct(d.Products, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/quote", controllers.CheckoutQuote(d.Checkout, logg))
			r.Post("/", controllers.CheckoutExecute(d.Checkout, logg))
		})

		r.Post("/coupons/validate", controllers.ValidateCoupon(d.Coupons, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/lookup", controllers.GuestOrderLookup(d.Orders, logg))
			r.Get("/delivery", controllers.GetOrderDelivery(d.Orders, logg))
			r.Get("/{orderId}/payment-status", controllers.CheckPaymentStatus(d.Payments, logg))
		})

		r.Post("/webhooks/pix", controllers.PixWebhook(d.Webhook, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).
				Post("/login", controllers.AuthLogin(d.Auth, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
				r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
				r.Get("/me", controllers.AuthMe(d.Auth, logg))
			})
		})

		// Finance dashboard. Every query is scoped to the token's user.
		r.Route("/finance", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Use(middleware.RequireRole(logg, "admin", "operator"))

			r.Route("/operations", func(r chi.Router) {
				r.Get("/", controllers.FinanceListOperations(d.Finance, logg))
				r.Post("/", controllers.FinanceCreateOperation(d.Finance, logg))
				r.Post("/{operationId}/settle", controllers.FinanceSettleOperation(d.Finance, logg))
				r.Delete("/{operationId}", controllers.FinanceDeleteOperation(d.Finance, logg))
			})
			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", controllers.FinanceListExpenses(d.Finance, logg))
				r.Post("/", controllers.FinanceCreateExpense(d.Finance, logg))
				r.Delete("/{expenseId}", controllers.FinanceDeleteExpense(d.Finance, logg))
			})
			r.Route("/goals", func(r chi.Router) {
				r.Get("/", controllers.FinanceListGoals(d.Finance, logg))
				r.Post("/", controllers.FinanceCreateGoal(d.Finance, logg))
				r.Patch("/{goalId}/progress", controllers.FinanceUpdateGoalProgress(d.Finance, logg))
				r.Post("/{goalId}/abandon", controllers.FinanceAbandonGoal(d.Finance, logg))
				r.Delete("/{goalId}", controllers.FinanceDeleteGoal(d.Finance, logg))
			})
			r.Get("/summary/monthly", controllers.FinanceMonthlySummary(d.Finance, logg))
			r.Post("/dutching", controllers.FinanceDutching(d.Finance, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.RequireRole(logg, "admin"))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(d.Products, logg))
			r.Patch("/{productId}", controllers.AdminUpdateProduct(d.Products, logg))
			r.Post("/{productId}/stock", controllers.AdminAddStock(d.Products, logg))
		})
		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.AdminListCoupons(d.Coupons, logg))
			r.Post("/", controllers.AdminCreateCoupon(d.Coupons, logg))
			r.Post("/{couponId}/deactivate", controllers.AdminDeactivateCoupon(d.Coupons, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(d.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.AdminCancelOrder(d.Orders, logg))
		})
		r.Route("/team", func(r chi.Router) {
			r.Get("/", controllers.AdminListTeam(d.Users, logg))
			r.Post("/", controllers.AdminCreateOperator(d.Users, logg))
			r.Post("/{userId}/deactivate", controllers.AdminDeactivateUser(d.Users, logg))
		})
		r.Get("/backup/export", controllers.AdminBackupExport(d.Backup, logg))
	})

	return r
}
