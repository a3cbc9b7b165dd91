package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/nexbank/internal/account"
	"github.com/example/nexbank/internal/auth"
	"github.com/example/nexbank/internal/chat"
	"github.com/example/nexbank/internal/ledger"
	"github.com/example/nexbank/internal/loan"
	"github.com/example/nexbank/internal/security"
	"github.com/example/nexbank/pkg/audit"
)

type Auditor interface {
	Record(actor, action, detail string) *audit.Entry
}

// Dependencies carries everything the router needs. Services are consumed
// through narrow interfaces so tests can swap in fakes per concern.
type Dependencies struct {
	Logger *slog.Logger
	Tokens *auth.TokenIssuer

	Accounts interface {
		Register(ctx context.Context, req account.RegisterRequest) (*account.Account, error)
		Authenticate(ctx context.Context, email, password string) (*account.Account, error)
		GetByID(ctx context.Context, id string) (*account.Account, error)
	}
	Ledger interface {
		Transfer(ctx context.Context, req ledger.TransferRequest) (*ledger.Transaction, error)
		PurchaseInvestment(ctx context.Context, req ledger.InvestmentRequest) (*ledger.Investment, error)
		History(ctx context.Context, accountID string) ([]*ledger.Transaction, error)
		Investments(ctx context.Context, accountID string) ([]*ledger.Investment, error)
	}
	Loans interface {
		Apply(ctx context.Context, req loan.ApplyRequest) (*loan.Loan, error)
		Approve(ctx context.Context, accountID, loanID string) (*loan.Loan, error)
		Reject(ctx context.Context, accountID, loanID string) (*loan.Loan, error)
		Disburse(ctx context.Context, accountID, loanID string) (*loan.Loan, error)
		List(ctx context.Context, accountID string) ([]*loan.Loan, error)
	}
	Chat interface {
		Send(ctx context.Context, accountID, message string, category chat.Category) (*chat.Message, error)
		History(ctx context.Context, accountID string) ([]*chat.Message, error)
	}

	Auditor      Auditor
	RateLimiter  *security.RedisTokenBucket
	MaxBodyBytes int64
}

func NewRouter(deps Dependencies) (http.Handler, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	registerV, err := security.NewJSONSchemaValidator(registerSchema)
	if err != nil {
		return nil, err
	}
	loginV, err := security.NewJSONSchemaValidator(loginSchema)
	if err != nil {
		return nil, err
	}
	transferV, err := security.NewJSONSchemaValidator(transferSchema)
	if err != nil {
		return nil, err
	}
	investmentV, err := security.NewJSONSchemaValidator(investmentSchema)
	if err != nil {
		return nil, err
	}
	loanV, err := security.NewJSONSchemaValidator(loanApplySchema)
	if err != nil {
		return nil, err
	}
	chatV, err := security.NewJSONSchemaValidator(chatSchema)
	if err != nil {
		return nil, err
	}

	onAuthError := func(w http.ResponseWriter, r *http.Request, status int, code string) {
		security.WriteJSONError(w, r, status, code)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(security.CorrelationID)
	r.Use(RequestLogger(deps.Logger))
	r.Use(security.BodySizeLimit(deps.MaxBodyBytes))
	if deps.RateLimiter != nil {
		r.Use(security.RateLimit(deps.RateLimiter, rateLimitKeyByIP))
	}
	if deps.Auditor != nil {
		r.Use(AuditTrail(deps.Auditor))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(registerV.Middleware).Post("/register", handleRegister(deps))
			r.With(loginV.Middleware).Post("/login", handleLogin(deps))

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate(deps.Tokens, onAuthError))
				r.Get("/me", handleMe(deps))
				r.Post("/logout", handleLogout(deps))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(deps.Tokens, onAuthError))

			r.Get("/dashboard/summary", handleDashboard(deps))

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", handleListTransactions(deps))
				r.With(transferV.Middleware).Post("/transfer", handleTransfer(deps))
			})

			r.Route("/investments", func(r chi.Router) {
				r.Get("/", handleListInvestments(deps))
				r.With(investmentV.Middleware).Post("/", handleCreateInvestment(deps))
			})

			r.Route("/loans", func(r chi.Router) {
				r.Get("/", handleListLoans(deps))
				r.With(loanV.Middleware).Post("/apply", handleLoanApply(deps))
				r.Post("/{loan_id}/approve", handleLoanDecision(deps, "approve"))
				r.Post("/{loan_id}/reject", handleLoanDecision(deps, "reject"))
				r.Post("/{loan_id}/disburse", handleLoanDecision(deps, "disburse"))
			})

			r.Route("/chat", func(r chi.Router) {
				r.With(chatV.Middleware).Post("/", handleChatSend(deps))
				r.Get("/history", handleChatHistory(deps))
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusMethodNotAllowed, "method_not_allowed")
	})

	return r, nil
}

func rateLimitKeyByIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	return "ip:" + host
}
