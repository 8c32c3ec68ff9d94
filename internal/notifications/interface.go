package notifications

import "github.com/mentionwatch/mention-monitor/internal/models"

// Notifier defines the contract for report delivery
type Notifier interface {
	SendReport(report *models.Report) error
}
