package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/middleware"
	"github.com/joydeepsharma2006-hash/quiz-app/web"
)

type RouterConfig struct {
	Quiz         *QuizHandler
	Sessions     *middleware.SessionManager
	AllowOrigins []string
}

// NewRouter wires the page routes behind the session cookie and the JSON API
// behind CORS.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	r.SetHTMLTemplate(tmpl)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.StaticFS("/static", http.FS(web.Static()))

	pages := r.Group("/")
	pages.Use(cfg.Sessions.Session())
	{
		pages.GET("/", cfg.Quiz.Home)
		pages.POST("/start", cfg.Quiz.Start)
		pages.GET("/quiz", cfg.Quiz.Quiz)
		pages.POST("/submit", cfg.Quiz.Submit)
		pages.GET("/results", cfg.Quiz.Results)
	}

	corsConfig := cors.Config{
		AllowOrigins:  cfg.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Content-Length", "Accept", "Origin"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}

	api := NewAPIHandler(cfg.Quiz)
	apiGroup := r.Group("/api")
	apiGroup.Use(cors.New(corsConfig))
	{
		apiGroup.POST("/start-quiz", api.StartQuiz)
		apiGroup.POST("/submit-answer", api.SubmitAnswer)
		apiGroup.GET("/results/:session_id", api.Results)
		apiGroup.OPTIONS("/*path", func(c *gin.Context) {
			c.AbortWithStatus(http.StatusNoContent)
		})
	}

	return r, nil
}
