package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-myshop-agent/internal/actions"
	"go-myshop-agent/internal/auth"
	"go-myshop-agent/internal/config"
	"go-myshop-agent/internal/middleware"
	"go-myshop-agent/internal/models"
	"go-myshop-agent/internal/session"
	"go-myshop-agent/internal/store"
)

// Asker answers questions about a shop snapshot.
type Asker interface {
	Ask(ctx context.Context, question string, state models.BusinessState, profile models.Profile) string
}

// Handler serves the HTTP API on top of the session registry.
type Handler struct {
	Registry    *session.Registry
	Users       store.UserRepository
	Issuer      *auth.Issuer
	Assistant   Asker
	Log         *logrus.Logger
	PhoneRegion string
	UploadDir   string
	BaseURL     string
}

// Routes registers every endpoint on r.
func (h *Handler) Routes(r *gin.Engine, allowRegistration bool) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.POST("/login", h.Login)
	r.POST("/demo-access", h.DemoAccess)
	if allowRegistration {
		r.POST("/register", h.Register)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.Issuer))
	{
		api.POST("/logout", h.Logout)

		api.GET("/state", h.GetState)
		api.PUT("/state", h.ReplaceState)
		api.POST("/state/refresh", h.RefreshState)
		api.GET("/sync/status", h.SyncStatus)
		api.POST("/demo", h.LoadDemo)
		api.DELETE("/data", h.ClearData)

		api.GET("/profile", h.GetProfile)
		api.PUT("/profile", h.UpdateProfile)

		api.GET("/products", h.GetProducts)
		api.POST("/products", h.AddProduct)
		api.PUT("/products/:id", h.UpdateProduct)
		api.DELETE("/products/:id", h.DeleteProduct)

		api.GET("/sales", h.GetSales)
		api.POST("/sales", h.RecordSale)
		api.DELETE("/sales/:id", h.DeleteSale)

		api.GET("/customers", h.GetCustomers)
		api.POST("/customers", h.AddCustomer)
		api.PUT("/customers/:id", h.UpdateCustomer)
		api.DELETE("/customers/:id", h.DeleteCustomer)

		api.GET("/expenses", h.GetExpenses)
		api.GET("/expenses/categories", h.GetExpenseCategories)
		api.POST("/expenses", h.AddExpense)
		api.PUT("/expenses/:id", h.UpdateExpense)
		api.DELETE("/expenses/:id", h.DeleteExpense)

		api.GET("/reports", h.GetReports)
		api.GET("/reports/valuation", h.GetStockValuation)
		api.GET("/reports/export", h.ExportReport)

		api.POST("/ask", h.AskAI)

		account := api.Group("/")
		account.Use(middleware.RequireAccount())
		{
			account.POST("/upload", h.UploadImage)
		}
	}
}

// session returns the caller's session, opening it on first use.
func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	s, err := h.Registry.Open(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return s, true
}

// mutate runs fn against the caller's state, commits the result and answers
// with what fn returned.
func (h *Handler) mutate(c *gin.Context, status int, fn func(models.BusinessState) (models.BusinessState, any, error)) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var result any
	_, _, err := s.Apply(c.Request.Context(), func(st models.BusinessState) (models.BusinessState, error) {
		next, r, err := fn(st)
		result = r
		return next, err
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, result)
}

// fail maps domain errors to status codes.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, actions.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "fields": actions.FieldErrors(err)})
	case errors.Is(err, actions.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, actions.ErrInsufficientStock), errors.Is(err, actions.ErrDuplicatePhone):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrSignedOut):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired, please sign in again"})
	default:
		config.LogError(h.Log, "handlers", c.HandlerName(), c.FullPath(), nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

func deleted(what string) gin.H {
	return gin.H{"message": what + " deleted successfully"}
}
