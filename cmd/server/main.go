package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/scratchy/configs"
	"github.com/maheshrc27/scratchy/internal/api/handlers"
	"github.com/maheshrc27/scratchy/internal/discord"
	job "github.com/maheshrc27/scratchy/internal/jobs"
	"github.com/maheshrc27/scratchy/internal/queue"
	"github.com/maheshrc27/scratchy/internal/repository"
	"github.com/maheshrc27/scratchy/internal/scratch"
	"github.com/maheshrc27/scratchy/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       3600,
	}))

	transactor := repository.NewTransactor(db)
	accountRepo := repository.NewAccountRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	metadataRepo := repository.NewMetadataRepository(db)

	oauthClient := discord.NewOAuthClient(*cfg)
	roleConnectionClient := discord.NewRoleConnectionClient(*cfg)
	scratchClient := scratch.NewClient()

	linkService := service.NewLinkService(transactor, accountRepo)
	tokenService := service.NewTokenService(transactor, accountRepo, tokenRepo, metadataRepo, oauthClient)
	verifyService := service.NewVerifyService()
	profileService := service.NewProfileService(scratchClient)
	syncService := service.NewSyncService(transactor, metadataRepo, linkService, tokenService, profileService, roleConnectionClient)

	registerCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := roleConnectionClient.RegisterMetadata(registerCtx, discord.MetadataFields()); err != nil {
		log.Printf("Warning: Failed to register role connection metadata: %v", err)
	}
	cancel()

	linkedRoles := handlers.NewLinkedRolesHandler(*cfg, oauthClient, tokenService, client)
	app.Get("/linked-roles", linkedRoles.RedirectToOAuth)
	app.Get("/discord-oauth-callback", linkedRoles.Callback)

	link := handlers.NewLinkHandler(*cfg, linkService, verifyService, scratchClient, client)
	app.Post("/link/start", link.StartLink)
	app.Post("/link/verify", link.VerifyLink)

	// background sync loop, one user per tick
	syncJob := job.NewMetadataSyncJob(metadataRepo, syncService)

	queueW := queue.NewQueue(syncService)

	c := cron.New()
	c.AddFunc("@every 00h00m10s", syncJob.Run)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSyncUser, queueW.HandleSyncUserTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
