package reports

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/domain"
	"github.com/opencoaf/caseledger/internal/modules/analytics"
	"github.com/opencoaf/caseledger/internal/modules/cases"
	"github.com/opencoaf/caseledger/internal/modules/ledger"
	"github.com/opencoaf/caseledger/internal/modules/redflags"
	"github.com/opencoaf/caseledger/internal/modules/uploads"
)

// Format selects the output artifact.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// Artifact is a rendered report ready for download.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service assembles report documents from the other modules and renders
// them to downloadable artifacts.
type Service struct {
	caseRepo  *cases.Repository
	uploadSvc *uploads.Service
	analytics *analytics.Service
	redflags  *redflags.Service
	ledger    *ledger.Repository
	narrator  completer
	log       zerolog.Logger
}

// NewService creates a new report service. narrator may be nil; reports
// then ship without the executive summary.
func NewService(caseRepo *cases.Repository, uploadSvc *uploads.Service, analyticsSvc *analytics.Service, redflagsSvc *redflags.Service, ledgerRepo *ledger.Repository, narrator completer, log zerolog.Logger) *Service {
	return &Service{
		caseRepo:  caseRepo,
		uploadSvc: uploadSvc,
		analytics: analyticsSvc,
		redflags:  redflagsSvc,
		ledger:    ledgerRepo,
		narrator:  narrator,
		log:       log.With().Str("service", "reports").Logger(),
	}
}

// Build compiles the full report document for a case: upload summary,
// metrics, the latest completed analysis run's alerts and the filtered
// transaction table, plus the best-effort narrative.
func (s *Service) Build(ctx context.Context, caseID string, filter domain.TransactionFilter) (*Document, error) {
	c, err := s.caseRepo.Get(caseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("case %s not found", caseID)
	}

	ups, err := s.uploadSvc.ListByCase(caseID)
	if err != nil {
		return nil, err
	}

	metrics, err := s.analytics.CaseMetrics(caseID, filter)
	if err != nil {
		return nil, err
	}

	transactions, err := s.ledger.GetByCase(caseID, filter)
	if err != nil {
		return nil, err
	}

	var alerts []domain.RedFlagAlert
	var thresholds *domain.Thresholds
	analysis, err := s.redflags.Latest(caseID)
	if err != nil {
		return nil, err
	}
	if analysis != nil {
		alerts = analysis.Alerts
		thresholds = &analysis.Run.Thresholds
	}

	doc := Compile(c, ups, metrics, alerts, transactions, thresholds)
	AttachNarrative(ctx, doc, s.narrator, s.log)

	s.log.Info().
		Str("case_id", caseID).
		Int("transactions", len(transactions)).
		Int("alerts", doc.AlertCount()).
		Bool("narrative", doc.Narrative != "").
		Msg("Report compiled")

	return doc, nil
}

// Render builds and renders a case report in the requested format.
func (s *Service) Render(ctx context.Context, caseID string, filter domain.TransactionFilter, format Format) (*Artifact, error) {
	doc, err := s.Build(ctx, caseID, filter)
	if err != nil {
		return nil, err
	}

	base := "relatorio_" + caseID
	switch format {
	case FormatText:
		return &Artifact{
			Filename:    base + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Data:        RenderText(doc),
		}, nil
	case FormatCSV:
		data, err := RenderCSV(doc)
		if err != nil {
			return nil, err
		}
		return &Artifact{
			Filename:    base + ".csv",
			ContentType: "text/csv; charset=utf-8",
			Data:        data,
		}, nil
	case FormatXLSX:
		data, err := RenderXLSX(doc)
		if err != nil {
			return nil, err
		}
		return &Artifact{
			Filename:    base + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	case FormatPDF:
		data, err := RenderPDF(doc)
		if err != nil {
			return nil, err
		}
		return &Artifact{
			Filename:    base + ".pdf",
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}
