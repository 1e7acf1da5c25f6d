// Package api exposes the intake, review and chat workflows over HTTP.
package api

import (
	"context"
	"errors"
	"io"
	"time"

	apperrors "studybuddy/internal/common/errors"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/intake"
	"studybuddy/internal/models"
	"studybuddy/internal/review"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	HeaderAdminSecret     = "X-Admin-Secret"
	HeaderCounselorSecret = "X-Counselor-Secret"
	HeaderCounselorName   = "X-Counselor-Name"
)

type Intake interface {
	Submit(ctx context.Context, req intake.Request) (*intake.Result, error)
}

type Dashboard interface {
	Stats(ctx context.Context) (*review.Stats, error)
}

type Admin interface {
	List(ctx context.Context, secret string) ([]models.Submission, error)
	Search(ctx context.Context, secret, term string) ([]models.Submission, error)
	Update(ctx context.Context, secret, id string, update models.AssignmentUpdate) (*models.Submission, error)
	ExportCSV(ctx context.Context, secret string, w io.Writer) error
	Report(ctx context.Context, secret, id string) (string, error)
}

type Counselor interface {
	List(ctx context.Context, secret, name string) ([]models.Submission, error)
}

type Chat interface {
	Transcript(ctx context.Context, sessionID string) (models.Transcript, error)
	Send(ctx context.Context, sessionID, text, profileContext string) (models.Transcript, error)
	Reset(ctx context.Context, sessionID string) (models.Transcript, error)
}

// SubmissionGetter resolves the optional applicant context for a chat turn.
type SubmissionGetter interface {
	Get(ctx context.Context, id string) (*models.Submission, error)
}

// Check is one readiness probe; Name appears in the /ready body.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

type Deps struct {
	Intake      Intake
	Dashboard   Dashboard
	Admin       Admin
	Counselor   Counselor
	Chat        Chat
	Submissions SubmissionGetter
	Checks      []Check
}

type Server struct {
	app            *fiber.App
	deps           Deps
	logger         logger.Logger
	requestTimeout time.Duration
}

// New builds the fiber app and registers every route.
func New(deps Deps, requestTimeout time.Duration, log logger.Logger) *Server {
	s := &Server{
		deps:           deps,
		logger:         logger.ForComponent(log, "api"),
		requestTimeout: requestTimeout,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "studybuddy",
		DisableStartupMessage: true,
		Immutable:             true, // session ids outlive the request in the transcript store
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(s.requestLogger)

	s.routes()
	return s
}

// App exposes the fiber app for Listen and app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP server listening", map[string]interface{}{"address": addr})
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) routes() {
	s.app.Get("/health", s.health)
	s.app.Get("/ready", s.ready)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := s.app.Group("/api/v1")
	v1.Post("/intake", s.submitIntake)
	v1.Get("/dashboard", s.dashboard)

	admin := v1.Group("/admin")
	admin.Get("/submissions", s.adminList)
	admin.Patch("/submissions/:id", s.adminUpdate)
	admin.Get("/submissions/:id/report", s.adminReport)
	admin.Get("/export.csv", s.adminExport)

	v1.Get("/counselor/submissions", s.counselorList)

	chat := v1.Group("/chat")
	chat.Get("/:session", s.chatTranscript)
	chat.Post("/:session", s.chatSend)
	chat.Delete("/:session", s.chatReset)
}

// requestLogger bounds each request with the configured timeout and logs it.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	if s.requestTimeout > 0 {
		ctx, cancel := context.WithTimeout(c.UserContext(), s.requestTimeout)
		defer cancel()
		c.SetUserContext(ctx)
	}

	err := c.Next()

	// the error handler runs after this middleware returns
	status := c.Response().StatusCode()
	if err != nil {
		status = errorStatus(err)
	}

	fields := map[string]interface{}{
		"method":     c.Method(),
		"path":       c.Path(),
		"status":     status,
		"durationMs": time.Since(start).Milliseconds(),
		"requestId":  c.GetRespHeader(fiber.HeaderXRequestID),
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	s.logger.Debug("HTTP request", fields)
	return err
}

// handleError renders StandardError bodies with the status for their code.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"code": "HTTP_ERROR", "message": fe.Message})
	}

	stdErr := apperrors.AsStandard(err)
	status := errorStatus(stdErr)
	if status >= fiber.StatusInternalServerError {
		s.logger.Error("Request failed", map[string]interface{}{
			"path":      c.Path(),
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
	}
	return c.Status(status).JSON(stdErr)
}

// errorStatus is the response status handleError writes for err.
func errorStatus(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return apperrors.HTTPStatus(apperrors.AsStandard(err).Code)
}
