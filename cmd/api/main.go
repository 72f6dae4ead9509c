package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"funbudget/internal/clock"
	"funbudget/internal/config"
	"funbudget/internal/database"
	"funbudget/internal/handlers"
	"funbudget/internal/logger"
	"funbudget/internal/middleware"
	"funbudget/internal/scheduler"
	"funbudget/internal/services"
	"funbudget/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "funbudget/internal/docs" // Import swagger docs
)

// @title           Funbudget API
// @version         1.0
// @description     Funbudget is a household budgeting service that manages budgets with rolling periods, recurring rules, and overflow-controlled balance carryover.

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	clk := clock.System()
	personService := services.NewPersonService(db)
	payeeService := services.NewPayeeService(db)
	accountService := services.NewAccountService(db)
	periodService := services.NewPeriodService(db)
	ledgerService := services.NewLedgerService(db, periodService, clk)
	ruleService := services.NewRuleService(db, periodService, clk)
	budgetService := services.NewBudgetService(db, periodService, ledgerService, ruleService, clk)
	rolloverService := services.NewRolloverService(db, periodService, ledgerService, ruleService, clk)

	// Initialize handlers
	personHandler := handlers.NewPersonHandler(personService)
	payeeHandler := handlers.NewPayeeHandler(payeeService)
	accountHandler := handlers.NewAccountHandler(accountService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, rolloverService, ruleService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService, payeeService)
	ruleHandler := handlers.NewRuleHandler(ruleService)

	// Start the rollover scheduler
	if appConfig.SchedulerEnabled {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sched := scheduler.New(db, rolloverService, clk, appConfig.SchedulerInterval)
		go sched.Run(ctx)
	} else {
		log.Info("Rollover scheduler disabled")
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Person routes
	people := v1.Group("/people")
	people.POST("", personHandler.CreatePerson)
	people.GET("", personHandler.GetPeople)
	people.GET("/:id", personHandler.GetPerson)
	people.PUT("/:id", personHandler.UpdatePerson)
	people.DELETE("/:id", personHandler.DeletePerson)

	// Payee routes
	payees := v1.Group("/payees")
	payees.POST("", payeeHandler.CreatePayee)
	payees.GET("", payeeHandler.GetPayees)
	payees.GET("/:id", payeeHandler.GetPayee)
	payees.PUT("/:id", payeeHandler.UpdatePayee)
	payees.DELETE("/:id", payeeHandler.DeletePayee)

	// Account routes
	accounts := v1.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)

	// Budget routes
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

	// Transaction routes (scoped to a budget)
	budgets.POST("/:id/transactions", transactionHandler.CreateTransaction)
	budgets.GET("/:id/transactions", transactionHandler.GetTransactions)
	budgets.DELETE("/:id/transactions/:transactionId", transactionHandler.DeleteTransaction)

	// Rule routes
	rules := v1.Group("/rules")
	rules.POST("", ruleHandler.CreateRule)
	rules.GET("", ruleHandler.GetRules)
	rules.GET("/budget/:budgetId", ruleHandler.GetRulesByBudget)
	rules.DELETE("/:id", ruleHandler.DeleteRule)

	log.Infof("Starting Funbudget backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
