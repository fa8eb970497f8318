package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/shiftwise/roster-engine-go/internal/config"
	appHTTP "github.com/shiftwise/roster-engine-go/internal/handler/http"
	"github.com/shiftwise/roster-engine-go/internal/pkg/database"
	"github.com/shiftwise/roster-engine-go/internal/pkg/jwt"
	"github.com/shiftwise/roster-engine-go/internal/repository/postgresql"
	authService "github.com/shiftwise/roster-engine-go/internal/service/auth"
	exportService "github.com/shiftwise/roster-engine-go/internal/service/export"
	planningService "github.com/shiftwise/roster-engine-go/internal/service/planning"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	userRepo := postgresql.NewUserRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	sourceRepo := postgresql.NewCalendarSourceRepository(db)
	demandRepo := postgresql.NewDemandRepository(db)
	runRepo := postgresql.NewRunRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	authSvc := authService.NewAuthService(userRepo, JWTService)
	planningSvc := planningService.NewPlanningService(
		db,
		cfg.Solver,
		logger,
		runRepo,
		scheduleRepo,
		employeeRepo,
		sourceRepo,
		demandRepo,
	)
	exportSvc := exportService.NewExportService(logger, runRepo, scheduleRepo)

	authHandler := appHTTP.NewAuthHandler(JWTService, authSvc)
	planningHandler := appHTTP.NewPlanningHandler(planningSvc, exportSvc)

	router := appHTTP.NewRouter(cfg.App, JWTService, authHandler, planningHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
