package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/Bekarys04/CollabTask_Manager/internal/config"
	"github.com/Bekarys04/CollabTask_Manager/internal/database"
	"github.com/Bekarys04/CollabTask_Manager/internal/handlers"
	"github.com/Bekarys04/CollabTask_Manager/internal/jobs"
	"github.com/Bekarys04/CollabTask_Manager/internal/repository"
	cronjobs "github.com/Bekarys04/CollabTask_Manager/internal/scheduler"
	"github.com/Bekarys04/CollabTask_Manager/internal/services"
	"github.com/Bekarys04/CollabTask_Manager/pkg/email"
	"github.com/Bekarys04/CollabTask_Manager/pkg/logger"
	"github.com/Bekarys04/CollabTask_Manager/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger(cfg.LogFile)
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB and bootstrap indexes
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	collabRepo := repository.NewCollaborationRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// --- Services ---
	mailer := email.NewSender(cfg)
	baseURL := fmt.Sprintf("http://localhost:%s", cfg.Port)
	userService := services.NewUserService(userRepo, mailer, baseURL)
	collabService := services.NewCollaborationService(collabRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, collabService)
	notificationService := services.NewNotificationService(notificationRepo)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	collabHandler := handlers.NewCollaborationHandler(collabService, userService)
	taskHandler := handlers.NewTaskHandler(taskService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/users/verify", userHandler.VerifyEmailHandler).Methods("GET")
	router.HandleFunc("/users/request-password-reset", userHandler.RequestPasswordResetHandler).Methods("POST")
	router.HandleFunc("/users/reset-password", userHandler.ResetPasswordHandler).Methods("POST")

	// Protected user routes (only authenticated users can access)
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")

	// Collaboration routes: user search, the request lifecycle, and
	// collaborator task assignment
	collabRoutes := router.PathPrefix("/collab").Subrouter()
	collabRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	collabRoutes.HandleFunc("/users", collabHandler.SearchUsersHandler).Methods("GET")
	collabRoutes.HandleFunc("/requests", collabHandler.SendRequestHandler).Methods("POST")
	collabRoutes.HandleFunc("/requests/{id}/accept", collabHandler.AcceptRequestHandler).Methods("PUT")
	collabRoutes.HandleFunc("/requests/{userId}", collabHandler.GetRequestsHandler).Methods("GET")
	collabRoutes.HandleFunc("/friends/{userId}", collabHandler.GetFriendsHandler).Methods("GET")
	collabRoutes.HandleFunc("/tasks", taskHandler.AssignTaskHandler).Methods("POST")
	collabRoutes.HandleFunc("/tasks/{userId}", taskHandler.GetTasksHandler).Methods("GET")
	collabRoutes.HandleFunc("/tasks/{id}/complete", taskHandler.CompleteTaskHandler).Methods("PUT")
	collabRoutes.HandleFunc("/tasks/{id}", taskHandler.DeleteTaskHandler).Methods("DELETE")

	// Self-managed task routes
	taskRoutes := router.PathPrefix("/tasks").Subrouter()
	taskRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	taskRoutes.HandleFunc("", taskHandler.CreateTaskHandler).Methods("POST")
	taskRoutes.HandleFunc("", taskHandler.GetOwnTasksHandler).Methods("GET")
	taskRoutes.HandleFunc("/{id}", taskHandler.UpdateTaskStatusHandler).Methods("PUT")

	// Notification routes (polled by the client)
	notificationRoutes := router.PathPrefix("/notifications").Subrouter()
	notificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	notificationRoutes.HandleFunc("", notificationHandler.GetNotificationsHandler).Methods("GET")
	notificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkNotificationReadHandler).Methods("PUT")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/users", userHandler.AdminGetAllUsersHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Background jobs: hourly deadline scan, daily notification cleanup
	notifier := jobs.NewDeadlineNotifier(taskRepo, notificationService)
	cronjobs.StartNotificationCronJobs(notifier, notificationService)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
