package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"ndclink/internal/domain"
	"ndclink/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	toAddress   string
}

// NewSESSender creates a new SES-backed ReportSender.
func NewSESSender(region, fromAddress, fromName, toAddress string) (port.ReportSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		toAddress:   toAddress,
	}, nil
}

func (s *sesSender) SendRunReport(ctx context.Context, run *domain.PipelineRun) error {
	subject := fmt.Sprintf("NDClink ingestion %s: %d rows persisted", run.Status, run.RowsPersisted)
	htmlBody := buildRunReportHTML(run)
	textBody := buildRunReportText(run)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildRunReportText(run *domain.PipelineRun) string {
	body := fmt.Sprintf(`Ingestion run %s finished with status %s.

Archive:          %s
Documents seen:   %d
Parse failures:   %d
No manufacturer:  %d
Rows extracted:   %d
Rows persisted:   %d
Rows failed:      %d
`, run.ID, run.Status, run.ArchiveSource, run.DocumentsSeen, run.ParseFailures,
		run.NoManufacturer, run.RowsExtracted, run.RowsPersisted, run.RowsFailed)

	if run.Error != "" {
		body += fmt.Sprintf("\nError: %s\n", run.Error)
	}
	return body
}

func buildRunReportHTML(run *domain.PipelineRun) string {
	errRow := ""
	if run.Error != "" {
		errRow = fmt.Sprintf(`<tr><td style="padding: 4px 12px; color: #B91C1C;">Error</td><td style="padding: 4px 12px; color: #B91C1C;">%s</td></tr>`, run.Error)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Ingestion run %s</h2>
  <p>Run <code>%s</code> finished processing <code>%s</code>.</p>
  <table style="border-collapse: collapse; width: 100%%;">
    <tr><td style="padding: 4px 12px;">Documents seen</td><td style="padding: 4px 12px;">%d</td></tr>
    <tr><td style="padding: 4px 12px;">Parse failures</td><td style="padding: 4px 12px;">%d</td></tr>
    <tr><td style="padding: 4px 12px;">No manufacturer</td><td style="padding: 4px 12px;">%d</td></tr>
    <tr><td style="padding: 4px 12px;">Rows extracted</td><td style="padding: 4px 12px;">%d</td></tr>
    <tr><td style="padding: 4px 12px;">Rows persisted</td><td style="padding: 4px 12px;">%d</td></tr>
    <tr><td style="padding: 4px 12px;">Rows failed</td><td style="padding: 4px 12px;">%d</td></tr>
    %s
  </table>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">NDClink - NDC to Manufacturer Cross-Reference Pipeline</p>
</body>
</html>`, run.Status, run.ID, run.ArchiveSource, run.DocumentsSeen, run.ParseFailures,
		run.NoManufacturer, run.RowsExtracted, run.RowsPersisted, run.RowsFailed, errRow)
}
