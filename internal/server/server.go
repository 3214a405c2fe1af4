package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/renolink/renolink/internal/commission"
	commissiondomain "github.com/renolink/renolink/internal/commission/domain"
	"github.com/renolink/renolink/internal/config"
	"github.com/renolink/renolink/internal/contractor"
	contractordomain "github.com/renolink/renolink/internal/contractor/domain"
	"github.com/renolink/renolink/internal/notification"
	"github.com/renolink/renolink/internal/observability"
	obsmiddleware "github.com/renolink/renolink/internal/observability/logger"
	obsmetrics "github.com/renolink/renolink/internal/observability/metrics"
	obstracing "github.com/renolink/renolink/internal/observability/tracing"
	"github.com/renolink/renolink/internal/project"
	projectdomain "github.com/renolink/renolink/internal/project/domain"
	"github.com/renolink/renolink/internal/projectstart"
	startdomain "github.com/renolink/renolink/internal/projectstart/domain"
	"github.com/renolink/renolink/internal/providers/email"
	"github.com/renolink/renolink/internal/quote"
	quotedomain "github.com/renolink/renolink/internal/quote/domain"
	"github.com/renolink/renolink/internal/user"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	email.Module,
	notification.Module,
	user.Module,
	project.Module,
	contractor.Module,
	quote.Module,
	commission.Module,
	projectstart.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	genID         *snowflake.Node
	projectSvc    projectdomain.Service
	contractorSvc contractordomain.Service
	quoteSvc      quotedomain.Service
	commissionSvc commissiondomain.Service
	startSvc      startdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	GenID         *snowflake.Node
	ProjectSvc    projectdomain.Service
	ContractorSvc contractordomain.Service
	QuoteSvc      quotedomain.Service
	CommissionSvc commissiondomain.Service
	StartSvc      startdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		genID:         p.GenID,
		projectSvc:    p.ProjectSvc,
		contractorSvc: p.ContractorSvc,
		quoteSvc:      p.QuoteSvc,
		commissionSvc: p.CommissionSvc,
		startSvc:      p.StartSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Project start --------
	api.POST("/start-project", s.StartProject)
	api.GET("/start-project", s.GetStartProjectStatus)

	// -------- Projects --------
	api.GET("/projects", s.ListProjects)
	api.POST("/projects", s.CreateProject)
	api.GET("/projects/:id", s.GetProjectByID)
	api.POST("/projects/:id/transition", s.TransitionProject)
	api.POST("/projects/:id/site-visit/complete", s.CompleteSiteVisit)
	api.POST("/projects/:id/cancel", s.CancelProject)
	api.POST("/projects/:id/reactivate", s.ReactivateProject)
	api.POST("/projects/:id/complete", s.CompleteProject)

	// -------- Quotes --------
	api.GET("/projects/:id/quotes", s.ListQuotes)
	api.POST("/projects/:id/quotes", s.SubmitQuote)
	api.POST("/projects/:id/select-quote", s.SelectQuote)

	// -------- Contractors --------
	api.GET("/contractors", s.ListContractors)
	api.POST("/contractors", s.CreateContractor)
	api.GET("/contractors/:id", s.GetContractorByID)

	// -------- Commissions --------
	api.GET("/commissions", s.ListCommissions)
	api.POST("/commissions", s.CreateCommission)
	api.GET("/commissions/eligible-projects", s.ListEligibleProjects)
	api.POST("/commissions/:id/status", s.SetCommissionStatus)
}
