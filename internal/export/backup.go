package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"tableflow/internal/activitylog"
)

func TimelineFilename(dayKey string) string {
	return "TableFlow_Timeline_" + dayKey + ".xlsx"
}

func BackupFilename(dayKey string) string {
	return "TableFlow_BackupLogs_" + dayKey + ".txt"
}

// WriteBackup dumps the day's log as plain text, one block per entry. Times
// are rendered in loc.
func WriteBackup(w io.Writer, dayKey string, entries []activitylog.Entry, generatedAt time.Time, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "TableFlow Activity Logs - Gaming Day: %s\n", dayKey)
	fmt.Fprintf(bw, "Generated: %s\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(bw, "Total Entries: %d\n\n", len(entries))
	fmt.Fprintf(bw, "%s\n\n", strings.Repeat("=", 60))

	for _, e := range entries {
		fmt.Fprintf(bw, "[%s] Table %s - %s\n", e.Timestamp.UTC().Format(time.RFC3339), e.Table, strings.ToUpper(string(e.Action)))
		if e.StartTime != nil {
			fmt.Fprintf(bw, "   Start Time: %s\n", e.StartTime.In(loc).Format("2006-01-02 15:04:05"))
		}
		if e.Duration != nil {
			fmt.Fprintf(bw, "   Duration: %s\n", e.Duration)
		}
		if e.IsTrialBreak {
			fmt.Fprintf(bw, "   Type: Trial Break (%d seats, start: %d)\n", e.TrialSeats, e.TrialStartSeat)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
