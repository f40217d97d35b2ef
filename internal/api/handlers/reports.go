package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/eapulse/eapulse/internal/store"
	domain "github.com/eapulse/eapulse/pkg/types"
)

// Evaluator runs the rule engine against a stored report.
type Evaluator interface {
	EvaluateReport(ctx context.Context, reportID string) ([]domain.RuleEvaluation, error)
}

// asyncEvaluateTimeout bounds the background evaluation kicked off by a
// report submission.
const asyncEvaluateTimeout = 2 * time.Minute

// ReportHandler handles report submission, retrieval and evaluation.
type ReportHandler struct {
	store  store.Store
	engine Evaluator
	log    *slog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(s store.Store, eng Evaluator, log *slog.Logger) *ReportHandler {
	return &ReportHandler{store: s, engine: eng, log: log}
}

// SubmitReportInput is the request for POST /api/v1/reports.
type SubmitReportInput struct {
	Body domain.Report
}

// ReportOutput wraps a single report.
type ReportOutput struct {
	Body *domain.Report
}

// SubmitReport persists a report and kicks off rule evaluation in the
// background. Submission never waits on, or fails because of, evaluation.
func (h *ReportHandler) SubmitReport(
	ctx context.Context,
	input *SubmitReportInput,
) (*ReportOutput, error) {
	report := input.Body
	if report.PairingID == "" {
		return nil, huma.Error400BadRequest("pairing_id is required")
	}
	if _, err := h.store.GetPairing(ctx, report.PairingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("pairing not found")
		}
		return nil, huma.Error500InternalServerError("loading pairing: " + err.Error())
	}
	if report.ReportDate == 0 {
		report.ReportDate = time.Now().Unix()
	}

	if err := h.store.CreateReport(ctx, &report); err != nil {
		return nil, huma.Error500InternalServerError("creating report: " + err.Error())
	}

	go h.evaluateInBackground(report.ID)

	return &ReportOutput{Body: &report}, nil
}

func (h *ReportHandler) evaluateInBackground(reportID string) {
	ctx, cancel := context.WithTimeout(context.Background(), asyncEvaluateTimeout)
	defer cancel()

	if _, err := h.engine.EvaluateReport(ctx, reportID); err != nil {
		h.log.Error("background evaluation failed",
			"report_id", reportID,
			"error", err,
		)
	}
}

// EvaluateReportInput identifies the report to evaluate.
type EvaluateReportInput struct {
	ID string `path:"id" doc:"Report UUID"`
}

// EvaluateReportOutput lists the per-rule outcomes.
type EvaluateReportOutput struct {
	Body []domain.RuleEvaluation
}

// EvaluateReport runs the rule engine synchronously for one report.
func (h *ReportHandler) EvaluateReport(
	ctx context.Context,
	input *EvaluateReportInput,
) (*EvaluateReportOutput, error) {
	evals, err := h.engine.EvaluateReport(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("report not found")
		}
		return nil, huma.Error500InternalServerError("evaluating report: " + err.Error())
	}
	if evals == nil {
		evals = []domain.RuleEvaluation{}
	}
	return &EvaluateReportOutput{Body: evals}, nil
}

// GetReportInput identifies a report.
type GetReportInput struct {
	ID string `path:"id" doc:"Report UUID"`
}

// GetReport returns a single report by ID.
func (h *ReportHandler) GetReport(
	ctx context.Context,
	input *GetReportInput,
) (*ReportOutput, error) {
	report, err := h.store.GetReport(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("report not found")
		}
		return nil, huma.Error500InternalServerError("loading report: " + err.Error())
	}
	return &ReportOutput{Body: report}, nil
}

// ListPairingReportsInput selects reports for a pairing.
type ListPairingReportsInput struct {
	PairingID string `path:"pairingID" doc:"Pairing UUID"`
	Limit     int    `query:"limit" default:"30" minimum:"1" maximum:"365" doc:"Max reports to return, newest first"`
}

// ReportListOutput wraps a report list.
type ReportListOutput struct {
	Body []domain.Report
}

// ListPairingReports returns a pairing's reports, newest first.
func (h *ReportHandler) ListPairingReports(
	ctx context.Context,
	input *ListPairingReportsInput,
) (*ReportListOutput, error) {
	reports, err := h.store.ListReportsByPairing(ctx, input.PairingID, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing reports: " + err.Error())
	}
	if reports == nil {
		reports = []domain.Report{}
	}
	return &ReportListOutput{Body: reports}, nil
}

// RegisterReportRoutes registers report endpoints with the Huma API.
func RegisterReportRoutes(api huma.API, h *ReportHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "submit-report",
		Method:        http.MethodPost,
		Path:          "/api/v1/reports",
		Summary:       "Submit a daily report",
		Description:   "Persists an EA daily check-in and evaluates detection rules asynchronously.",
		Tags:          []string{"reports"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError},
	}, h.SubmitReport)

	huma.Register(api, huma.Operation{
		OperationID: "evaluate-report",
		Method:      http.MethodPost,
		Path:        "/api/v1/reports/{id}/evaluate",
		Summary:     "Evaluate a report synchronously",
		Description: "Runs every enabled rule against the report and returns the per-rule outcomes.",
		Tags:        []string{"reports"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.EvaluateReport)

	huma.Register(api, huma.Operation{
		OperationID: "get-report",
		Method:      http.MethodGet,
		Path:        "/api/v1/reports/{id}",
		Summary:     "Get a report",
		Tags:        []string{"reports"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetReport)

	huma.Register(api, huma.Operation{
		OperationID: "list-pairing-reports",
		Method:      http.MethodGet,
		Path:        "/api/v1/pairings/{pairingID}/reports",
		Summary:     "List a pairing's reports",
		Tags:        []string{"reports"},
	}, h.ListPairingReports)
}
