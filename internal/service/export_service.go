package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-complaint-api/internal/dto"
	"github.com/noah-isme/civic-complaint-api/internal/models"
	appErrors "github.com/noah-isme/civic-complaint-api/pkg/errors"
	"github.com/noah-isme/civic-complaint-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

const anonymousAuthor = "Anonymous"

type exportRowsRepository interface {
	ExportRows(ctx context.Context, filter models.ExportFilter) ([]models.Complaint, error)
}

type csvRenderer interface {
	Render(table export.Table) ([]byte, error)
}

type pdfRenderer interface {
	Render(table export.Table, title string) ([]byte, error)
	MaxRows() int
}

// ExportService renders filtered complaint lists as CSV or PDF downloads.
type ExportService struct {
	repo    exportRowsRepository
	csv     csvRenderer
	pdf     pdfRenderer
	audit   *AuditService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService. nil renderers fall back to the defaults;
// the default PDF renderer caps documents at 100 rows.
func NewExportService(repo exportRowsRepository, csv csvRenderer, pdf pdfRenderer, audit *AuditService, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter(100)
	}
	return &ExportService{
		repo:    repo,
		csv:     csv,
		pdf:     pdf,
		audit:   audit,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Export materialises complaints matching the query and renders them in the requested format.
func (s *ExportService) Export(ctx context.Context, official models.Official, query dto.ExportQuery) (*dto.ExportFile, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, "")
	}

	filter, err := exportFilter(query)
	if err != nil {
		return nil, err
	}
	if format == ExportFormatPDF && s.pdf.MaxRows() > 0 {
		// one extra row lets the renderer note the truncation
		filter.Limit = s.pdf.MaxRows() + 1
	}

	start := time.Now()
	rows, err := s.repo.ExportRows(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export rows")
	}
	s.metrics.ObserveDBQuery("export_rows", time.Since(start))

	now := s.now()
	file := &dto.ExportFile{
		Filename: fmt.Sprintf("complaints_%s.%s", now.Format("20060102_150405"), format),
		Rows:     len(rows),
	}
	switch format {
	case ExportFormatCSV:
		file.ContentType = "text/csv"
		file.Data, err = s.csv.Render(csvTable(rows))
	case ExportFormatPDF:
		file.ContentType = "application/pdf"
		file.Data, err = s.pdf.Render(pdfTable(rows), "Complaints Report - "+now.Format("02 Jan 2006"))
		if limit := s.pdf.MaxRows(); limit > 0 && file.Rows > limit {
			file.Rows = limit
		}
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.audit.Record(ctx, official.Actor, models.AuditActionExport, models.AuditResourceExport, "", map[string]interface{}{
		"format": format,
		"rows":   file.Rows,
	})
	s.metrics.RecordExport(format, file.Rows)
	s.logger.Info("complaints exported", zap.String("format", format), zap.Int("rows", file.Rows), zap.String("user_id", official.ID))

	return file, nil
}

func exportFilter(query dto.ExportQuery) (models.ExportFilter, error) {
	status, err := ParseStatusFilter(query.Status)
	if err != nil {
		return models.ExportFilter{}, err
	}
	category, err := ParseCategoryFilter(query.Category)
	if err != nil {
		return models.ExportFilter{}, err
	}
	startDate, err := ParseDateFilter("startDate", query.StartDate, false)
	if err != nil {
		return models.ExportFilter{}, err
	}
	endDate, err := ParseDateFilter("endDate", query.EndDate, true)
	if err != nil {
		return models.ExportFilter{}, err
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return models.ExportFilter{}, appErrors.WithField("endDate", "endDate must not be before startDate")
	}
	return models.ExportFilter{Status: status, Category: category, StartDate: startDate, EndDate: endDate}, nil
}

var csvColumns = []export.Column{
	{Title: "ID"}, {Title: "Title"}, {Title: "Description"}, {Title: "Category"}, {Title: "Status"}, {Title: "Priority"},
	{Title: "Address"}, {Title: "Latitude"}, {Title: "Longitude"}, {Title: "Reward Points"},
	{Title: "Author Name"}, {Title: "Author Email"}, {Title: "Author Mobile"},
	{Title: "Created At"}, {Title: "Resolved At"},
}

func csvTable(rows []models.Complaint) export.Table {
	out := make([][]string, 0, len(rows))
	for _, c := range rows {
		name, email, mobile := authorFields(c)
		out = append(out, []string{
			c.ID,
			c.Title,
			c.Description,
			string(c.Category),
			string(c.Status),
			string(c.Priority),
			c.Location.Address,
			strconv.FormatFloat(c.Location.Latitude, 'f', 6, 64),
			strconv.FormatFloat(c.Location.Longitude, 'f', 6, 64),
			strconv.Itoa(c.RewardPoints),
			name,
			email,
			mobile,
			c.CreatedAt.UTC().Format(time.RFC3339),
			formatOptionalTime(c.ResolvedAt),
		})
	}
	return export.Table{Columns: csvColumns, Rows: out}
}

var pdfColumns = []export.Column{
	{Title: "Title", Weight: 3},
	{Title: "Category", Weight: 1.3},
	{Title: "Status", Weight: 1.1},
	{Title: "Priority"},
	{Title: "Address", Weight: 3},
	{Title: "Author", Weight: 1.6},
	{Title: "Created", Weight: 1.2},
}

func pdfTable(rows []models.Complaint) export.Table {
	out := make([][]string, 0, len(rows))
	for _, c := range rows {
		name, _, _ := authorFields(c)
		out = append(out, []string{
			c.Title,
			string(c.Category),
			string(c.Status),
			string(c.Priority),
			c.Location.Address,
			name,
			c.CreatedAt.UTC().Format(dayLayout),
		})
	}
	return export.Table{Columns: pdfColumns, Rows: out}
}

func authorFields(c models.Complaint) (name, email, mobile string) {
	if c.IsAnonymous {
		return anonymousAuthor, "", ""
	}
	if c.Author == nil {
		return "", "", ""
	}
	return c.Author.Name, c.Author.Email, c.Author.Mobile
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
