package ui

import (
	"embed"
	stderrors "errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"

	"gtdash/domain/core"
	"gtdash/domain/incident"
	"gtdash/internal/chatbot"
	"gtdash/internal/dashboard"
	apperrors "gtdash/internal/errors"
	"gtdash/internal/explore"
	"gtdash/ui/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// Server is the JSON API and landing page of the dashboard
type Server struct {
	router    *gin.Engine
	source    middleware.DatasetSource
	charts    *dashboard.Service
	matcher   *chatbot.Matcher
	templates *template.Template
}

// NewServer wires the API over an already constructed dataset source,
// chart service and question matcher
func NewServer(source middleware.DatasetSource, charts *dashboard.Service, matcher *chatbot.Matcher) (*Server, error) {
	printer := message.NewPrinter(language.English)
	funcMap := template.FuncMap{
		"num": func(v interface{}) string {
			switch t := v.(type) {
			case int:
				return printer.Sprintf("%d", t)
			case float64:
				return printer.Sprintf("%.0f", t)
			default:
				return fmt.Sprint(v)
			}
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.New(),
		source:    source,
		charts:    charts,
		matcher:   matcher,
		templates: templates,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger())
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		respondError(c, apperrors.InternalError(fmt.Sprintf("panic: %v", recovered)))
	}))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/api/health", s.handleHealth)

	data := s.router.Group("/", middleware.RequireDataset(s.source))
	data.GET("/", s.handleIndex)

	api := data.Group("/api")
	api.GET("/options", s.handleOptions)
	api.POST("/kpis", s.handleKPIs)
	api.POST("/dashboard", s.handleDashboard)
	api.POST("/charts/:name", s.handleChart)
	api.POST("/ask", s.handleAsk)

	s.router.NoRoute(func(c *gin.Context) {
		respondError(c, apperrors.NotFound("route "+c.Request.URL.Path))
	})
}

// Handler exposes the router for http.Server and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

type filterRequest struct {
	Filter *explore.FilterSpec `json:"filter"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
	HTML   string `json:"html"`
}

type optionsResponse struct {
	explore.Options
	Dimensions        []incident.Dimension `json:"dimensions"`
	DefaultDimensions []incident.Dimension `json:"default_dimensions"`
	Charts            []string             `json:"charts"`
}

func (s *Server) handleHealth(c *gin.Context) {
	ds, err := s.source.Dataset(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"dataset":   ds.ID().String(),
		"source":    ds.Source(),
		"rows":      ds.Len(),
		"loaded_at": ds.LoadedAt(),
	})
}

func (s *Server) handleIndex(c *gin.Context) {
	ds := middleware.Dataset(c)
	s.renderTemplate(c, "index.html", gin.H{
		"DatasetID": ds.ID().String(),
		"Source":    ds.Source(),
		"KPIs":      explore.Summarize(ds.All()),
		"Options":   explore.OptionsFor(ds),
		"Charts":    dashboard.ChartNames(),
	})
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, optionsResponse{
		Options: explore.OptionsFor(middleware.Dataset(c)),
		Dimensions: []incident.Dimension{
			incident.DimKills, incident.DimWounds, incident.DimCasualties,
			incident.DimLatitude, incident.DimLongitude,
		},
		DefaultDimensions: incident.DefaultDimensions,
		Charts:            dashboard.ChartNames(),
	})
}

func (s *Server) handleKPIs(c *gin.Context) {
	var req filterRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	kpis, err := s.charts.Summary(c.Request.Context(), req.Filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

func (s *Server) handleDashboard(c *gin.Context) {
	var req dashboard.Request
	if !bindOptionalJSON(c, &req) {
		return
	}
	payloads, err := s.charts.Build(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payloads)
}

func (s *Server) handleChart(c *gin.Context) {
	var req dashboard.Request
	if !bindOptionalJSON(c, &req) {
		return
	}
	payload, err := s.charts.Chart(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(apperrors.InvalidInput("request body must be JSON with a question"), err.Error()))
		return
	}
	answer, html := s.matcher.AnswerHTML(req.Question)
	c.JSON(http.StatusOK, askResponse{Answer: answer, HTML: html})
}

// bindOptionalJSON decodes the body when there is one; an empty body keeps
// the zero request
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if stderrors.Is(err, io.EOF) {
			return true
		}
		respondError(c, apperrors.Wrap(apperrors.InvalidInput("malformed request body"), err.Error()))
		return false
	}
	return true
}

func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if !core.IsCallerError(err) {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": apperrors.GetCode(err)})
}
