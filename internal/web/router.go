// Package web serves the booking admin: HTML pages under /dashboard, a JSON
// mirror under /api/v1 and the operational endpoints.
package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/samara-beach/internal/config"
	"github.com/Leganyst/samara-beach/internal/health"
	"github.com/Leganyst/samara-beach/internal/model"
	"github.com/Leganyst/samara-beach/internal/samara"
	"github.com/Leganyst/samara-beach/internal/service"
)

const (
	ListPath   = "/dashboard/samara-beach/samara-booking-list"
	CreatePath = "/dashboard/samara-beach/samara-booking-create-form"
	EditPath   = "/dashboard/samara-beach/samara-booking-edit-form/:id"
	DeletePath = "/dashboard/samara-beach/samara-booking/:id/delete"
)

// EmailPattern is only rendered as the HTML pattern attribute.
const EmailPattern = `^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`

// BookingService — то, что web-слою нужно от service.BookingService.
type BookingService interface {
	Create(ctx context.Context, fields samara.Fields) service.Result
	Update(ctx context.Context, id string, fields samara.Fields) service.Result
	Delete(ctx context.Context, id string) service.Result
	List(ctx context.Context, take, skip int) (*service.ListResult, error)
	GetByID(ctx context.Context, id string) (*model.SamaraBooking, error)
}

type Options struct {
	Logger    *slog.Logger
	PageSize  int
	RateLimit config.RateLimitConfig
	// Checker backs /ready; nil reports ready.
	Checker *health.Checker
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"listURL":   func() string { return ListPath },
	"createURL": func() string { return CreatePath },
	"editURL":   editURL,
	"deleteURL": deleteURL,
	"pageURL":   pageURL,
	"add":       func(a, b int) int { return a + b },
	"sub":       func(a, b int) int { return a - b },
}).ParseFS(templateFS, "templates/*.html"))

func editURL(id string) string {
	return strings.Replace(EditPath, ":id", url.PathEscape(id), 1)
}

func deleteURL(id string) string {
	return strings.Replace(DeletePath, ":id", url.PathEscape(id), 1)
}

func pageURL(page int) string {
	if page <= 1 {
		return ListPath
	}
	return ListPath + "?page=" + strconv.Itoa(page)
}

type handler struct {
	svc      BookingService
	logger   *slog.Logger
	pageSize int
}

// NewRouter собирает gin.Engine со всеми маршрутами.
func NewRouter(svc BookingService, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = samara.DefaultPageSize
	}

	h := &handler{svc: svc, logger: opts.Logger, pageSize: opts.PageSize}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(opts.Logger))
	r.SetHTMLTemplate(templates)

	// мутации ограничиваются по IP, чтения — нет
	mutate := []gin.HandlerFunc{}
	if opts.RateLimit.Enabled {
		mutate = append(mutate, NewRateLimiter(opts.RateLimit.RPS, opts.RateLimit.Burst).Middleware())
	}
	with := func(hf gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, mutate...), hf)
	}

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, ListPath) })
	r.GET(ListPath, h.listPage)
	r.GET(CreatePath, h.createForm)
	r.POST(CreatePath, with(h.createSubmit)...)
	r.GET(EditPath, h.editForm)
	r.POST(EditPath, with(h.editSubmit)...)
	r.POST(DeletePath, with(h.deleteSubmit)...)

	api := r.Group("/api/v1/bookings")
	api.GET("", h.apiList)
	api.GET("/:id", h.apiGet)
	api.POST("", with(h.apiCreate)...)
	api.PUT("/:id", with(h.apiUpdate)...)
	api.DELETE("/:id", with(h.apiDelete)...)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", func(c *gin.Context) {
		if opts.Checker == nil {
			c.JSON(http.StatusOK, health.Report{Ready: true, Deps: map[string]bool{}})
			return
		}
		rep := opts.Checker.Check(c.Request.Context())
		status := http.StatusOK
		if !rep.Ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, rep)
	})
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	return r
}
