// @title           Pharmacy Quotation API
// @version         1.0
// @description     Quotation comparison and purchase order backend for the pharmacy group.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	_ "pharmacy-backend/docs"
	"pharmacy-backend/handlers"
	"pharmacy-backend/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:9000",
		"http://localhost:8080",
		"http://localhost:3000",
	}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, frontend)
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "X-XSRF-TOKEN",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
		"Access-Control-Request-Method", "Access-Control-Request-Headers",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Authorization", "Content-Type", "Content-Disposition",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

var cronRunning int32

func safeGo(
	ctx context.Context,
	wg *sync.WaitGroup,
	name string,
	fn func(context.Context) error,
	cronLogger *log.Logger,
) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				if cronLogger != nil {
					cronLogger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				}
			}
		}()

		if err := fn(ctx); err != nil {
			log.Printf("%s failed: %v", name, err)
			if cronLogger != nil {
				cronLogger.Printf("%s failed: %v", name, err)
			}
		} else {
			log.Printf("%s completed successfully", name)
			if cronLogger != nil {
				cronLogger.Printf("%s completed successfully", name)
			}
		}
	}()
}

func main() {
	db := storage.InitDB()
	gormDB := storage.InitGormDB()

	db.SetMaxOpenConns(15)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Store codes come from pharmacy_stores so quantity maps can be
	// validated without a DB round trip per request.
	storage.LoadStoreCodes(db)

	// Daily maintenance at 00:30: close quotations past their deadline
	// and clear out expired sessions.
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)

	cronLogFile, err := os.OpenFile("cron_errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Failed to open cron error log file: %v", err)
	}
	cronLogger := log.New(cronLogFile, "CRON_ERROR: ", log.LstdFlags)

	_, err = c.AddFunc("30 0 * * *", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous cron still running. Skipping this run.")
			if cronLogger != nil {
				cronLogger.Println("Previous cron still running. Skipping this run.")
			}
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		log.Println("Starting daily maintenance cron job")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		var wg sync.WaitGroup

		safeGo(ctx, &wg, "CloseExpiredQuotations", func(ctx context.Context) error {
			closed, err := storage.CloseExpiredQuotations(db)
			if err != nil {
				return err
			}
			if closed > 0 {
				log.Printf("Closed %d quotations past their deadline", closed)
			}
			return nil
		}, cronLogger)

		safeGo(ctx, &wg, "CleanupExpiredSessions", func(ctx context.Context) error {
			return storage.CleanupExpiredSessions(db)
		}, cronLogger)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Println("All cron jobs finished")
		case <-ctx.Done():
			log.Println("Cron timeout reached, jobs cancelled")
			if cronLogger != nil {
				cronLogger.Println("Cron timeout reached, jobs cancelled")
			}
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule daily maintenance cron job: %v", err)
	}

	c.Start()

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.Use(cors.New(CORSConfig()))

	// ==================== 1. AUTH & LOGIN ====================
	r.POST("/api/login", handlers.LoginHandler(db))
	r.POST("/api/refresh-token", handlers.RefreshTokenHandler(db))
	r.POST("/api/validate-session", handlers.ValidateSession(db))
	r.GET("/api/session", handlers.GetSessionHandler(db))
	r.DELETE("/api/session/:user_id", handlers.DeleteSessionHandler(db))
	r.POST("/api/logout", handlers.LogoutHandler(db))

	// ==================== 2. USERS ====================
	r.POST("/api/create_user", handlers.CreateUser(db))
	r.PUT("/api/update_user/:id", handlers.UpdateUser(db))
	r.GET("/api/users", handlers.GetUsers(db))
	r.GET("/api/get_user", handlers.GetUserFromSession(db))
	r.DELETE("/api/delete_user/:id", handlers.DeleteUser(db))

	// ==================== 3. SUPPLIERS ====================
	r.POST("/api/create_supplier", handlers.CreateSupplier(db))
	r.PUT("/api/update_supplier/:id", handlers.UpdateSupplier(db))
	r.GET("/api/suppliers", handlers.GetSuppliers(db))
	r.GET("/api/supplier/:id", handlers.GetSupplierByID(db))
	r.DELETE("/api/delete_supplier/:id", handlers.DeleteSupplier(db))

	// ==================== 4. PRODUCTS ====================
	r.POST("/api/create_product", handlers.CreateProduct(db))
	r.PUT("/api/update_product/:id", handlers.UpdateProduct(db))
	r.GET("/api/products", handlers.GetProducts(db))
	r.DELETE("/api/delete_product/:id", handlers.DeleteProduct(db))
	r.GET("/api/stores", handlers.GetStores(db))

	// ==================== 5. QUOTATIONS ====================
	r.POST("/api/create_quotation", handlers.CreateQuotation(db))
	r.PUT("/api/update_quotation_items/:id", handlers.UpdateQuotationItems(db))
	r.GET("/api/quotations", handlers.GetQuotations(db))
	r.GET("/api/quotation/:id", handlers.GetQuotationByID(db))
	r.PUT("/api/quotation_status/:id", handlers.AdvanceQuotationStatus(db))
	r.DELETE("/api/delete_quotation/:id", handlers.DeleteQuotation(db))
	r.POST("/api/quotation/:id/generate_link", handlers.GenerateSupplierLink(db))

	// ==================== 6. SUPPLIER PORTAL (token auth, no session) ====================
	r.GET("/portal/:token", handlers.GetSupplierPortal(db))
	r.POST("/portal/:token/prices", handlers.SubmitSupplierPrices(db))
	r.GET("/api/generate-portal-qr/:token", handlers.GeneratePortalQRCodeJPEG(db))

	// ==================== 7. COMPARISON & EXPORTS ====================
	r.GET("/api/quotation/:id/comparison", handlers.GetComparison(db))
	r.GET("/api/quotation/:id/export_comparison", handlers.ExportComparisonExcel)

	// ==================== 8. PURCHASE ORDERS ====================
	r.POST("/api/quotation/:id/generate_orders", handlers.GenerateOrders(db, gormDB))
	r.GET("/api/orders", handlers.GetOrders(db, gormDB))
	r.GET("/api/order/:id", handlers.GetOrderByID(db, gormDB))
	r.PUT("/api/order/:id/items", handlers.ReplaceOrderItemsHandler(db, gormDB))
	r.PUT("/api/order/:id/status", handlers.TransitionOrderHandler(db, gormDB))
	r.DELETE("/api/delete_order/:id", handlers.DeleteOrder(db, gormDB))
	r.GET("/api/order/:id/export_csv", handlers.ExportOrderCSV(gormDB))
	r.GET("/api/order_pdf/:id", handlers.GenerateOrderPDF(db, gormDB))

	// ==================== 9. ACTIVITY LOGS ====================
	r.GET("/api/logs", handlers.GetActivityLogsHandler(db))
	r.GET("/api/log/search", handlers.SearchActivityLogsHandler(db))

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	// Get port from environment variable or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}

	portInt, err := strconv.Atoi(port)
	if err != nil {
		log.Fatalf("Invalid PORT environment variable: %s. Must be a number.", port)
	}
	if portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT: %d. Must be between 0 and 65535.", portInt)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Let an in-flight cron cycle finish before closing the listener.
	cronCtx := c.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(10 * time.Second):
		log.Println("Timed out waiting for cron jobs to stop")
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
