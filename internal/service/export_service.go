package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-complaints/internal/models"
	appErrors "github.com/noah-isme/student-complaints/pkg/errors"
	"github.com/noah-isme/student-complaints/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ErrUnsupportedExportFormat is returned for formats other than csv and pdf.
var ErrUnsupportedExportFormat = appErrors.WithCode(appErrors.ErrValidation, "UNSUPPORTED_FORMAT", "Unsupported export format.")

type complaintLister interface {
	ListAll(ctx context.Context) ([]models.Complaint, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportResult is a rendered file ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

// ExportService renders the admin complaint list as a downloadable file.
type ExportService struct {
	complaints complaintLister
	renderers  map[ExportFormat]datasetRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the package defaults.
func NewExportService(complaints complaintLister, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		complaints: complaints,
		renderers:  map[ExportFormat]datasetRenderer{ExportFormatCSV: csv, ExportFormatPDF: pdf},
		logger:     logger,
		now:        time.Now,
	}
}

// ParseExportFormat normalises a query value. Empty means csv.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	default:
		return "", ErrUnsupportedExportFormat
	}
}

// Complaints renders every complaint in dashboard order.
func (s *ExportService) Complaints(ctx context.Context, format ExportFormat) (*ExportResult, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, ErrUnsupportedExportFormat
	}

	complaints, err := s.complaints.ListAll(ctx)
	if err != nil {
		s.logger.Error("export listing failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error exporting complaints.")
	}

	payload, err := renderer.Render(complaintDataset(complaints))
	if err != nil {
		s.logger.Error("export render failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error exporting complaints.")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("complaints_%s.%s", s.now().UTC().Format("20060102_150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Payload:     payload,
		Rows:        len(complaints),
	}, nil
}

func complaintDataset(complaints []models.Complaint) export.Dataset {
	rows := make([][]string, 0, len(complaints))
	for _, c := range complaints {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.StudentName,
			c.Email,
			c.RegisterNumber,
			c.Department,
			c.Year,
			c.Category,
			c.Title,
			string(c.Status),
			c.SubmittedOn.UTC().Format("2006-01-02 15:04"),
		})
	}
	return export.Dataset{
		Title:   "Student Complaints",
		Headers: []string{"ID", "Name", "Email", "Register No", "Department", "Year", "Category", "Title", "Status", "Submitted On"},
		Rows:    rows,
		Widths:  []float64{1, 3, 4, 2.5, 2.5, 1, 2.5, 5, 2, 3},
	}
}
