package job

import (
	"os"

	"github.com/schoolhub/portal/logger"
)

// RotateLogsJob copies the portal log into its .prev sibling once a day and
// truncates the live file, keeping the log folder bounded.
type RotateLogsJob struct{}

func NewRotateLogsJob() *RotateLogsJob {
	return new(RotateLogsJob)
}

// Run implements the cron Job interface.
func (j *RotateLogsJob) Run() {
	logPath := logger.LogPath()
	prevPath := logPath + ".prev"

	data, err := os.ReadFile(logPath)
	if err != nil {
		logger.Warning("rotate logs job err:", err)
		return
	}

	if err := os.WriteFile(prevPath, data, 0o660); err != nil {
		logger.Warning("rotate logs job err:", err)
	}

	if err := os.Truncate(logPath, 0); err != nil {
		logger.Warning("rotate logs job err:", err)
	}
}
