package floor

import (
	"time"

	"tableflow/internal/activitylog"
	"tableflow/internal/forecast"
	"tableflow/internal/sessions"
	"tableflow/internal/tables"
)

type TrialRequest struct {
	Seats     int `json:"seats"`
	StartSeat int `json:"startSeat"`
}

// OpenRequest opens a table now, or at StartTime (past or future). A nil
// Trial opens in the regular regime.
type OpenRequest struct {
	StartTime *time.Time    `json:"startTime"`
	Trial     *TrialRequest `json:"trial"`
}

// CloseRequest closes a table now, or at the backdated CloseTime.
type CloseRequest struct {
	CloseTime *time.Time `json:"closeTime"`
}

type TablesResponse struct {
	GamingDay string         `json:"gamingDay"`
	Now       time.Time      `json:"now"`
	Items     []tables.Table `json:"items"`
}

type TableResponse struct {
	Table tables.Table `json:"table"`
}

type CancelResponse struct {
	TableNumber string `json:"tableNumber"`
	Cancelled   bool   `json:"cancelled"`
}

type HistoryResponse struct {
	GamingDay string             `json:"gamingDay"`
	Items     []sessions.Session `json:"items"`
}

type DeleteSessionResponse struct {
	SessionID      string   `json:"sessionId"`
	RemovedEntries []string `json:"removedEntries"`
}

type ResetResponse struct {
	GamingDay string `json:"gamingDay"`
}

type UpcomingBreaksResponse struct {
	Items []forecast.Slot `json:"items"`
}

type TrialRotationsResponse struct {
	Items []forecast.Rotation `json:"items"`
}

// BackupLog is the raw material of the plain-text backup export.
type BackupLog struct {
	GamingDay   string
	Entries     []activitylog.Entry
	GeneratedAt time.Time
	Location    *time.Location
}
