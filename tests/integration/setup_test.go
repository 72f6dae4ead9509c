package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"funbudget/internal/clock"
	"funbudget/internal/handlers"
	"funbudget/internal/logger"
	"funbudget/internal/middleware"
	"funbudget/internal/models"
	"funbudget/internal/services"
	"funbudget/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Clock  *clock.Fake
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

// testNow is the frozen instant every integration test runs at.
var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.Person{},
		&models.Payee{},
		&models.Account{},
		&models.Budget{},
		&models.BudgetPeriod{},
		&models.Transaction{},
		&models.Rule{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite and a frozen clock.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	clk := clock.NewFake(testNow)

	// Services
	personService := services.NewPersonService(db)
	payeeService := services.NewPayeeService(db)
	accountService := services.NewAccountService(db)
	periodService := services.NewPeriodService(db)
	ledgerService := services.NewLedgerService(db, periodService, clk)
	ruleService := services.NewRuleService(db, periodService, clk)
	budgetService := services.NewBudgetService(db, periodService, ledgerService, ruleService, clk)
	rolloverService := services.NewRolloverService(db, periodService, ledgerService, ruleService, clk)

	// Handlers
	personHandler := handlers.NewPersonHandler(personService)
	payeeHandler := handlers.NewPayeeHandler(payeeService)
	accountHandler := handlers.NewAccountHandler(accountService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, rolloverService, ruleService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService, payeeService)
	ruleHandler := handlers.NewRuleHandler(ruleService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	people := v1.Group("/people")
	people.POST("", personHandler.CreatePerson)
	people.GET("", personHandler.GetPeople)
	people.GET("/:id", personHandler.GetPerson)
	people.PUT("/:id", personHandler.UpdatePerson)
	people.DELETE("/:id", personHandler.DeletePerson)

	payees := v1.Group("/payees")
	payees.POST("", payeeHandler.CreatePayee)
	payees.GET("", payeeHandler.GetPayees)
	payees.GET("/:id", payeeHandler.GetPayee)
	payees.PUT("/:id", payeeHandler.UpdatePayee)
	payees.DELETE("/:id", payeeHandler.DeletePayee)

	accounts := v1.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)

	budgets := v1.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/owner/:id", budgetHandler.GetBudgetsByOwner)
	budgets.POST("/transfer", budgetHandler.Transfer)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.PUT("/:id/enabled", budgetHandler.SetEnabled)
	budgets.POST("/:id/rollover", budgetHandler.Rollover)
	budgets.POST("/:id/execute-rules", budgetHandler.ExecuteRules)

	budgets.POST("/:id/transactions", transactionHandler.CreateTransaction)
	budgets.GET("/:id/transactions", transactionHandler.GetTransactions)
	budgets.DELETE("/:id/transactions/:transactionId", transactionHandler.DeleteTransaction)

	rules := v1.Group("/rules")
	rules.POST("", ruleHandler.CreateRule)
	rules.GET("", ruleHandler.GetRules)
	rules.GET("/budget/:budgetId", ruleHandler.GetRulesByBudget)
	rules.DELETE("/:id", ruleHandler.DeleteRule)

	return &testApp{DB: db, Clock: clk, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// createPerson creates a person and returns its ID.
func (app *testApp) createPerson(t *testing.T, name string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"email":"%s@test.com"}`, name, strings.ToLower(name))
	rec := app.request("POST", "/api/v1/people", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create person failed: %d %s", rec.Code, rec.Body.String())
	}
	person := parseJSON(t, rec)["person"].(map[string]interface{})
	return person["id"].(string)
}

// createBudget creates a monthly budget for the owner and returns its ID.
// Extra top-level JSON fields can be appended via extra, e.g.
// `"initial_value":"100"`.
func (app *testApp) createBudget(t *testing.T, ownerID, name, policy, extra string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"owner_id":%q,"currency":"USD","period_type":"MONTHLY","overflow_policy":%q,"start_date":"2025-03-01T00:00:00Z"`, name, ownerID, policy)
	if extra != "" {
		body += "," + extra
	}
	body += "}"
	rec := app.request("POST", "/api/v1/budgets", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create budget failed: %d %s", rec.Code, rec.Body.String())
	}
	budget := parseJSON(t, rec)["budget"].(map[string]interface{})
	return budget["id"].(string)
}
