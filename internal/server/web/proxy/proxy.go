package proxy

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bricks-cloud/geminiproxy/internal/auth"
	"github.com/bricks-cloud/geminiproxy/internal/config"
	"github.com/bricks-cloud/geminiproxy/internal/provider/google"
	"github.com/bricks-cloud/geminiproxy/internal/sanitize"
	"github.com/gin-gonic/gin"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	correlationId  string = "correlationId"
	requestTimeout string = "requestTimeout"
)

type authenticator interface {
	AuthenticateHttpRequest(req *http.Request, provider string) (*auth.Grant, error)
}

type serverConfigProvider interface {
	GetGoogleConfig() (*config.GoogleConfig, error)
}

type notAuthorizedError interface {
	Authenticated()
	Provider() string
}

type validationError interface {
	Validation()
	Field() string
}

type ProxyServer struct {
	server *http.Server
	log    *zap.Logger
}

func NewProxyServer(log *zap.Logger, mode, port string, a authenticator, scp serverConfigProvider, deny sanitize.Denylist, timeOut time.Duration, maxBodyBytes int64) (*ProxyServer, error) {
	if a == nil {
		return nil, errors.New("authenticator is required")
	}

	if scp == nil {
		return nil, errors.New("server config provider is required")
	}

	client := &http.Client{
		Transport:     getOtelTransport(),
		CheckRedirect: noRedirect,
	}

	router := newRouter(log, mode == "production", a, scp, deny, client, timeOut, maxBodyBytes)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	return &ProxyServer{
		log:    log,
		server: srv,
	}, nil
}

// noRedirect hands every redirect back to the caller untouched.
func noRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

func newRouter(log *zap.Logger, prod bool, a authenticator, scp serverConfigProvider, deny sanitize.Denylist, client *http.Client, timeOut time.Duration, maxBodyBytes int64) *gin.Engine {
	router := gin.New()

	router.Use(getRecoveryMiddleware(log, prod))
	router.Use(getOtelMiddlware())
	router.Use(getMiddleware(log, prod, "proxy"))
	router.Use(getTimeoutMiddleware(timeOut))

	router.GET("/api/health", getGetHealthCheckHandler())

	h := getGoogleHandler(prod, a, scp, deny, client, maxBodyBytes)
	router.GET(google.PathPrefix+"/*path", h)
	router.POST(google.PathPrefix+"/*path", h)
	router.OPTIONS(google.PathPrefix+"/*path", h)

	return router
}

func (ps *ProxyServer) Handler() http.Handler {
	return ps.server.Handler
}

func (ps *ProxyServer) Run() {
	go func() {
		ps.log.Sugar().Infof("PORT %s | GET, POST, OPTIONS | %s/*path is ready for forwarding requests to google", ps.server.Addr, google.PathPrefix)
		if err := ps.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ps.log.Sugar().Fatalf("error proxy server listening: %v", err)
		}
	}()
}

func (ps *ProxyServer) Shutdown(ctx context.Context) error {
	if err := ps.server.Shutdown(ctx); err != nil {
		ps.log.Sugar().Infof("error shutting down proxy server: %v", err)

		return err
	}

	return nil
}

func getGetHealthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Status(http.StatusOK)
	}
}

func JSON(c *gin.Context, code int, message string) {
	c.JSON(code, &goopenai.ErrorResponse{
		Error: &goopenai.APIError{
			Message: message,
			Code:    strconv.Itoa(code),
		},
	})
}

func logError(log *zap.Logger, msg string, prod bool, id string, err error) {
	if prod {
		log.Debug(msg, zap.String(correlationId, id), zap.Error(err))
		return
	}

	log.Sugar().Debugf("correlationId:%s | %s | %v", id, msg, err)
}
