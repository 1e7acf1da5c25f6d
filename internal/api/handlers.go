package api

import (
	"bytes"
	"context"
	"errors"
	"time"

	apperrors "studybuddy/internal/common/errors"
	"studybuddy/internal/gateway"
	"studybuddy/internal/intake"
	"studybuddy/internal/models"
	"studybuddy/internal/store"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// ready runs every configured check; any failure makes the service unready.
func (s *Server) ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.deps.Checks))
	ok := true
	for _, chk := range s.deps.Checks {
		if err := chk.Fn(ctx); err != nil {
			checks[chk.Name] = err.Error()
			ok = false
			continue
		}
		checks[chk.Name] = "ok"
	}

	status, code := "ready", fiber.StatusOK
	if !ok {
		status, code = "unready", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) submitIntake(c *fiber.Ctx) error {
	var req intake.Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "request body must be JSON")
	}
	res, err := s.deps.Intake.Submit(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (s *Server) dashboard(c *fiber.Ctx) error {
	stats, err := s.deps.Dashboard.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (s *Server) adminList(c *fiber.Ctx) error {
	secret := c.Get(HeaderAdminSecret)
	var (
		subs []models.Submission
		err  error
	)
	if q := c.Query("q"); q != "" {
		subs, err = s.deps.Admin.Search(c.UserContext(), secret, q)
	} else {
		subs, err = s.deps.Admin.List(c.UserContext(), secret)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"submissions": subs, "count": len(subs)})
}

func (s *Server) adminUpdate(c *fiber.Ctx) error {
	var update models.AssignmentUpdate
	if err := c.BodyParser(&update); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "request body must be JSON")
	}
	sub, err := s.deps.Admin.Update(c.UserContext(), c.Get(HeaderAdminSecret), c.Params("id"), update)
	if err != nil {
		return err
	}
	return c.JSON(sub)
}

func (s *Server) adminReport(c *fiber.Ctx) error {
	report, err := s.deps.Admin.Report(c.UserContext(), c.Get(HeaderAdminSecret), c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="report_`+c.Params("id")+`.txt"`)
	return c.SendString(report)
}

// adminExport buffers the CSV so an auth or query failure still gets a JSON error.
func (s *Server) adminExport(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.deps.Admin.ExportCSV(c.UserContext(), c.Get(HeaderAdminSecret), &buf); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="students.csv"`)
	return c.Send(buf.Bytes())
}

func (s *Server) counselorList(c *fiber.Ctx) error {
	subs, err := s.deps.Counselor.List(c.UserContext(), c.Get(HeaderCounselorSecret), c.Get(HeaderCounselorName))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"submissions": subs, "count": len(subs)})
}

type chatRequest struct {
	Message      string `json:"message"`
	SubmissionID string `json:"submissionId,omitempty"`
}

func (s *Server) chatTranscript(c *fiber.Ctx) error {
	t, err := s.deps.Chat.Transcript(c.UserContext(), c.Params("session"))
	if err != nil {
		return err
	}
	return c.JSON(t)
}

func (s *Server) chatSend(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "request body must be JSON")
	}

	profileContext, err := s.profileContext(c.UserContext(), req.SubmissionID)
	if err != nil {
		return err
	}
	t, err := s.deps.Chat.Send(c.UserContext(), c.Params("session"), req.Message, profileContext)
	if err != nil {
		return err
	}
	return c.JSON(t)
}

func (s *Server) chatReset(c *fiber.Ctx) error {
	t, err := s.deps.Chat.Reset(c.UserContext(), c.Params("session"))
	if err != nil {
		return err
	}
	return c.JSON(t)
}

// profileContext is empty when no submission is referenced.
func (s *Server) profileContext(ctx context.Context, id string) (string, error) {
	if id == "" || s.deps.Submissions == nil {
		return "", nil
	}
	sub, err := s.deps.Submissions.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return "", apperrors.NewSubmissionNotFoundError(id)
	}
	if err != nil {
		return "", apperrors.NewQueryExecutionFailedError("get", err)
	}
	return gateway.ProfileContext(sub.Profile, sub.Score), nil
}
