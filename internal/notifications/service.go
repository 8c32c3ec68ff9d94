package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/gomail.v2"

	"github.com/mentionwatch/mention-monitor/internal/config"
	"github.com/mentionwatch/mention-monitor/internal/models"
)

// Service delivers reports via the configured channels (Teams webhook,
// email). With no channels configured it is a no-op.
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements Notifier
var _ Notifier = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams MessageCard
type TeamsMessage struct {
	Type     string         `json:"@type"`
	Context  string         `json:"@context"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Sections []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle string      `json:"activityTitle,omitempty"`
	ActivityText  string      `json:"activityText,omitempty"`
	Facts         []TeamsFact `json:"facts,omitempty"`
	Markdown      bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendReport sends a report via every configured notification channel,
// collecting channel failures instead of stopping at the first one.
func (s *Service) SendReport(report *models.Report) error {
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(report); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Infof("Sent report for %q to Teams", report.SearchTerm)
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Infof("Sent report for %q via email", report.SearchTerm)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToTeams(report *models.Report) error {
	message := s.buildTeamsMessage(report)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildTeamsMessage(report *models.Report) *TeamsMessage {
	stats := report.Stats

	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   fmt.Sprintf("Mentions Report - %s", report.SearchTerm),
		Text:    fmt.Sprintf("%d mentions on record, %d in the last 7 days", stats.TotalMentions, stats.MentionsLast7Days),
	}

	facts := []TeamsFact{
		{Name: "Total Mentions", Value: fmt.Sprintf("%d", stats.TotalMentions)},
		{Name: "Last 7 Days", Value: fmt.Sprintf("%d", stats.MentionsLast7Days)},
		{Name: "Avg Relevance", Value: fmt.Sprintf("%.2f", stats.AvgRelevanceScore)},
		{Name: "Generated", Value: report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
	}

	for _, sentiment := range sortedKeys(stats.SentimentBreakdown) {
		facts = append(facts, TeamsFact{
			Name:  fmt.Sprintf("%s Mentions", titleCase(sentiment)),
			Value: fmt.Sprintf("%d", stats.SentimentBreakdown[sentiment]),
		})
	}
	for _, source := range sortedKeys(stats.SourcesBreakdown) {
		facts = append(facts, TeamsFact{
			Name:  fmt.Sprintf("Source: %s", source),
			Value: fmt.Sprintf("%d", stats.SourcesBreakdown[source]),
		})
	}

	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Summary",
		Facts:         facts,
		Markdown:      true,
	})

	if len(report.RecentMentions) > 0 {
		var lines []string
		limit := 5
		if len(report.RecentMentions) < limit {
			limit = len(report.RecentMentions)
		}

		for i := 0; i < limit; i++ {
			mention := report.RecentMentions[i]
			lines = append(lines, fmt.Sprintf("**[%s](%s)** - %s (%s)",
				mention.Title, mention.URL, mention.Source, mention.DateFound.Format("Jan 2")))
		}

		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Recent Mentions",
			ActivityText:  strings.Join(lines, "\n\n"),
			Markdown:      true,
		})
	}

	return message
}

func (s *Service) sendEmail(report *models.Report) error {
	subject := fmt.Sprintf("Mentions Report - %s (%d mentions)",
		report.SearchTerm, report.Stats.TotalMentions)

	htmlBody, err := s.buildEmailHTML(report)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildEmailText(report))
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *Service) buildEmailHTML(report *models.Report) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Mentions Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #2b5797; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .mention { border-left: 4px solid #2b5797; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .mention-title { font-weight: bold; margin-bottom: 5px; }
        .mention-meta { color: #666; font-size: 0.9em; }
        .positive { border-left-color: #107c10; }
        .negative { border-left-color: #d13438; }
        .neutral { border-left-color: #605e5c; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Mentions Report: {{.SearchTerm}}</h1>
        <p>Generated on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <div class="summary">
        <h2>Summary</h2>
        <p><strong>Total Mentions:</strong> {{.Stats.TotalMentions}}</p>
        <p><strong>Last 7 Days:</strong> {{.Stats.MentionsLast7Days}}</p>
        <p><strong>Average Relevance:</strong> {{printf "%.2f" .Stats.AvgRelevanceScore}}</p>
        {{range $sentiment, $count := .Stats.SentimentBreakdown}}
            <p><strong>{{$sentiment | title}} Mentions:</strong> {{$count}}</p>
        {{end}}
    </div>

    {{if .RecentMentions}}
    <h2>Recent Mentions</h2>
    {{range $index, $mention := .RecentMentions}}
        {{if lt $index 10}}
        <div class="mention {{$mention.Sentiment}}">
            <div class="mention-title">
                <a href="{{$mention.URL}}" target="_blank">{{$mention.Title}}</a>
            </div>
            <div class="mention-meta">
                {{$mention.Source}} | {{$mention.DateFound.Format "Jan 2, 2006"}} | Relevance: {{printf "%.2f" $mention.RelevanceScore}}
            </div>
            {{if $mention.Snippet}}
            <p>{{truncate $mention.Snippet 200}}</p>
            {{end}}
        </div>
        {{end}}
    {{end}}
    {{end}}

    <hr>
    <p><small>This report was generated automatically by the mention monitor.</small></p>
</body>
</html>
`

	t := template.New("email").Funcs(template.FuncMap{
		"title": titleCase,
		"truncate": func(s string, length int) string {
			if len(s) <= length {
				return s
			}
			return s[:length] + "..."
		},
	})

	t, err := t.Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, report); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Service) buildEmailText(report *models.Report) string {
	var text strings.Builder
	stats := report.Stats

	text.WriteString(fmt.Sprintf("Mentions Report - %s\n", report.SearchTerm))
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))

	text.WriteString("SUMMARY\n")
	text.WriteString("=======\n")
	text.WriteString(fmt.Sprintf("Total Mentions: %d\n", stats.TotalMentions))
	text.WriteString(fmt.Sprintf("Last 7 Days: %d\n", stats.MentionsLast7Days))
	text.WriteString(fmt.Sprintf("Average Relevance: %.2f\n", stats.AvgRelevanceScore))

	for _, sentiment := range sortedKeys(stats.SentimentBreakdown) {
		text.WriteString(fmt.Sprintf("%s Mentions: %d\n", titleCase(sentiment), stats.SentimentBreakdown[sentiment]))
	}

	if len(report.RecentMentions) > 0 {
		text.WriteString("\nRECENT MENTIONS\n")
		text.WriteString("===============\n")

		limit := 10
		if len(report.RecentMentions) < limit {
			limit = len(report.RecentMentions)
		}

		for i := 0; i < limit; i++ {
			mention := report.RecentMentions[i]
			text.WriteString(fmt.Sprintf("\n%d. %s\n", i+1, mention.Title))
			text.WriteString(fmt.Sprintf("   Source: %s | Date: %s\n",
				mention.Source, mention.DateFound.Format("Jan 2, 2006")))
			text.WriteString(fmt.Sprintf("   URL: %s\n", mention.URL))
			if mention.Snippet != "" {
				snippet := mention.Snippet
				if len(snippet) > 200 {
					snippet = snippet[:200] + "..."
				}
				text.WriteString(fmt.Sprintf("   Snippet: %s\n", snippet))
			}
		}
	}

	text.WriteString("\n---\nThis report was generated automatically by the mention monitor.\n")

	return text.String()
}

// titleCase upper-cases the first word of a label. A fresh Caser per call:
// cases.Caser is not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
