package mockapi

import "github.com/crucial707/fpadmin/internal/models"

// DemoLogs returns a small set of check-in/check-out rows for local development.
func DemoLogs() []models.LogEntry {
	return []models.LogEntry{
		{UserID: 1, Name: "Unknown", Date: "2025-01-06", Time: "08:02:11", Direction: models.DirectionIn, Lab: "Lab 1"},
		{UserID: 2, Name: "Unknown", Date: "2025-01-06", Time: "08:15:40", Direction: models.DirectionIn, Lab: "Lab 2"},
		{UserID: 1, Name: "Unknown", Date: "2025-01-06", Time: "12:30:05", Direction: models.DirectionOut, Lab: "Lab 1"},
		{UserID: 3, Name: "Unknown", Date: "2025-01-06", Time: "13:01:57", Direction: models.DirectionIn, Lab: "Lab 1"},
		{UserID: 2, Name: "Unknown", Date: "2025-01-06", Time: "17:45:20", Direction: models.DirectionOut, Lab: "Lab 2"},
	}
}
