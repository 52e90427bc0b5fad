package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/wareflow/backend/internal/application/services"
	"github.com/wareflow/backend/internal/bootstrap"
	"github.com/wareflow/backend/internal/infrastructure/database"
	"github.com/wareflow/backend/internal/infrastructure/persistence"
	"github.com/wareflow/backend/internal/interfaces/middleware"
	"github.com/wareflow/backend/internal/interfaces/rest"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	db, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection established")

	if err := database.RunMigrations(context.Background(), db.DB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("📦 Migrations applied")

	svcMgr := services.NewServiceManager(db)
	log.Println("🔧 Service manager initialized")

	ctx := context.Background()
	approvals := persistence.NewApprovalRepository(db.DB())
	if err := bootstrap.InitializeWorkflowRules(ctx, approvals); err != nil {
		log.Fatalf("Failed to seed workflow rules: %v", err)
	}

	users := persistence.NewUserRepository(db.DB())
	userCount, err := users.CountUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to count users: %v", err)
	}
	if err := bootstrap.InitializeAdminUser(ctx, svcMgr.Auth, userCount); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	router := gin.Default()
	router.Use(middleware.Cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	authHandler := rest.NewAuthHandler(svcMgr.Auth)
	jobOrderHandler := rest.NewJobOrderHandler(svcMgr.JobOrders)
	requisitionHandler := rest.NewRequisitionHandler(svcMgr.Requisitions)
	scrapItemHandler := rest.NewScrapItemHandler(svcMgr.ScrapItems)
	shipmentHandler := rest.NewShipmentHandler(svcMgr.Shipments)
	approvalHandler := rest.NewApprovalHandler(svcMgr.ParallelApproval, svcMgr.Approval, svcMgr.Sla)
	notificationHandler := rest.NewNotificationHandler(svcMgr.Notification)

	requireAuth := middleware.RequireAuth()

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		jobOrders := api.Group("/job-orders")
		jobOrders.Use(requireAuth)
		{
			jobOrders.POST("", jobOrderHandler.Create)
			jobOrders.GET("/:id", jobOrderHandler.Get)
			jobOrders.POST("/:id/submit", jobOrderHandler.Submit)
			jobOrders.POST("/:id/decide", jobOrderHandler.Decide)
			jobOrders.POST("/:id/assign", jobOrderHandler.Assign)
			jobOrders.POST("/:id/start", jobOrderHandler.Start)
			jobOrders.POST("/:id/hold", jobOrderHandler.Hold)
			jobOrders.POST("/:id/resume", jobOrderHandler.Resume)
			jobOrders.POST("/:id/complete", jobOrderHandler.Complete)
			jobOrders.POST("/:id/invoice", jobOrderHandler.Invoice)
			jobOrders.POST("/:id/cancel", jobOrderHandler.Cancel)
		}

		requisitions := api.Group("/requisitions")
		requisitions.Use(requireAuth)
		{
			requisitions.POST("", requisitionHandler.Create)
			requisitions.GET("/:id", requisitionHandler.Get)
			requisitions.POST("/:id/submit", requisitionHandler.Submit)
			requisitions.POST("/:id/review", requisitionHandler.StartReview)
			requisitions.POST("/:id/approve", requisitionHandler.Approve)
			requisitions.POST("/:id/reject", requisitionHandler.Reject)
			requisitions.POST("/:id/check-stock", requisitionHandler.CheckStock)
			requisitions.POST("/:id/fulfill", requisitionHandler.Fulfill)
			requisitions.POST("/:id/cancel", requisitionHandler.Cancel)
		}

		scrapItems := api.Group("/scrap-items")
		scrapItems.Use(requireAuth)
		{
			scrapItems.POST("", scrapItemHandler.Create)
			scrapItems.GET("/:id", scrapItemHandler.Get)
			scrapItems.POST("/:id/report", scrapItemHandler.Report)
			scrapItems.POST("/:id/gates", scrapItemHandler.SetGate)
			scrapItems.POST("/:id/approve", scrapItemHandler.Approve)
			scrapItems.POST("/:id/reject", scrapItemHandler.Reject)
			scrapItems.POST("/:id/move-to-ssc", scrapItemHandler.MoveToSSC)
			scrapItems.POST("/:id/sell", scrapItemHandler.Sell)
			scrapItems.POST("/:id/dispose", scrapItemHandler.Dispose)
			scrapItems.POST("/:id/close", scrapItemHandler.Close)
		}

		shipments := api.Group("/shipments")
		shipments.Use(requireAuth)
		{
			shipments.POST("", shipmentHandler.Create)
			shipments.GET("/:id", shipmentHandler.Get)
			shipments.POST("/:id/schedule", shipmentHandler.Schedule)
			shipments.POST("/:id/dispatch", shipmentHandler.Dispatch)
			shipments.POST("/:id/deliver", shipmentHandler.Deliver)
			shipments.POST("/:id/cancel", shipmentHandler.Cancel)
		}

		groups := api.Group("/approval-groups")
		groups.Use(requireAuth)
		{
			groups.POST("", approvalHandler.CreateGroup)
			groups.GET("/:id", approvalHandler.GetGroup)
			groups.POST("/:id/respond", approvalHandler.Respond)
		}

		documents := api.Group("/documents")
		documents.Use(requireAuth)
		{
			documents.GET("/:id/approvals", approvalHandler.History)
			documents.GET("/:id/sla", approvalHandler.GetSla)
		}

		api.GET("/notifications", requireAuth, notificationHandler.List)
	}

	if err := svcMgr.Start(); err != nil {
		log.Fatalf("Failed to start background workers: %v", err)
	}

	log.Printf("🚀 Wareflow backend listening on http://localhost:%s", port)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	svcMgr.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
