package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
	appErrors "github.com/MathewAndreiAbao/eguidance-api/pkg/errors"
	"github.com/MathewAndreiAbao/eguidance-api/pkg/export"
)

const dateLayout = "2006-01-02"

type reportRepository interface {
	StudentUsage(ctx context.Context, counselorID, start, end string) ([]models.StudentUsage, error)
}

type activityCounter interface {
	CountByDateRange(ctx context.Context, start, end string) ([]models.ActivityCount, error)
}

// ReportService produces counselor usage reports over weekly and monthly
// windows, with CSV and PDF export.
type ReportService struct {
	repo       reportRepository
	activities activityCounter
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(repo reportRepository, activities activityCounter, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:       repo,
		activities: activities,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// Weekly reports usage for the week containing startDate, Monday through
// Sunday. An empty startDate means the current week.
func (s *ReportService) Weekly(ctx context.Context, actor models.Actor, startDate string) (*models.UsageReport, error) {
	if actor.Role != models.RoleCounselor {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only counselors can access reports")
	}

	ref := time.Now().UTC()
	if startDate != "" {
		parsed, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidDate, "invalid date format")
		}
		ref = parsed
	}

	offset := int(ref.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	weekStart := ref.AddDate(0, 0, -offset)
	weekEnd := weekStart.AddDate(0, 0, 6)

	return s.build(ctx, actor.ID, weekStart.Format(dateLayout), weekEnd.Format(dateLayout))
}

// Monthly reports usage for the given calendar month. Zero values mean the
// current month.
func (s *ReportService) Monthly(ctx context.Context, actor models.Actor, year, month int) (*models.UsageReport, error) {
	if actor.Role != models.RoleCounselor {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only counselors can access reports")
	}

	now := time.Now().UTC()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return nil, appErrors.Clone(appErrors.ErrInvalidDate, "month must be between 1 and 12")
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	return s.build(ctx, actor.ID, monthStart.Format(dateLayout), monthEnd.Format(dateLayout))
}

// ExportFormat selects the rendered representation of a usage report.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult bundles rendered report bytes with delivery metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Export renders a usage report as CSV or PDF.
func (s *ReportService) Export(report *models.UsageReport, format ExportFormat) (*ExportResult, error) {
	dataset := export.Dataset{
		Headers: []string{"Student", "Email", "Appointments", "Approved", "Successful"},
	}
	for _, student := range report.Students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student":      student.Name,
			"Email":        student.Email,
			"Appointments": strconv.Itoa(student.AppointmentCount),
			"Approved":     strconv.Itoa(student.ApprovedCount),
			"Successful":   strconv.Itoa(student.SuccessfulCount),
		})
	}

	name := fmt.Sprintf("usage-report-%s-to-%s", report.Period.Start, report.Period.End)
	switch format {
	case ExportCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: name + ".csv"}, nil
	case ExportPDF:
		title := fmt.Sprintf("Usage report %s to %s", report.Period.Start, report.Period.End)
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: name + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *ReportService) build(ctx context.Context, counselorID, start, end string) (*models.UsageReport, error) {
	students, err := s.repo.StudentUsage(ctx, counselorID, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load usage stats")
	}

	counts, err := s.activities.CountByDateRange(ctx, start, end)
	if err != nil {
		// Activity data only enriches the report; usage counts stand alone.
		s.logger.Warn("failed to load activity counts", zap.Error(err))
		counts = nil
	}
	byUser := make(map[string][]models.ActivityCount, len(counts))
	for _, count := range counts {
		byUser[count.UserID] = append(byUser[count.UserID], count)
	}
	for i := range students {
		students[i].Activities = byUser[students[i].StudentID]
		if students[i].Activities == nil {
			students[i].Activities = []models.ActivityCount{}
		}
	}

	return &models.UsageReport{
		Period:        models.ReportPeriod{Start: start, End: end},
		Students:      students,
		TotalStudents: len(students),
	}, nil
}
