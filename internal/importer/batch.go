package importer

import (
	"context"
	"time"

	"smetaflow/internal/model"
)

// Batch порция типизированных строк, готовая к сохранению.
// BaseIndex — индекс первой строки батча в потоке сессии; Sections —
// разделы, впервые встреченные в этом батче (создаются жадно).
type Batch struct {
	BaseIndex int                `json:"baseIndex"`
	Rows      []*model.MappedRow `json:"rows"`
	Sections  []*model.Section   `json:"sections,omitempty"`
}

// Sink приёмник батчей. Ошибка сохранения фатальна для сессии.
type Sink interface {
	FlushBatch(ctx context.Context, session *model.ImportSession, batch *Batch) error
}

// StatsRecorder накопитель статистики цен завершённых импортов
type StatsRecorder interface {
	RecordUnitPrices(orgID int64, unit string, prices []float64) error
}

// SessionLogger журнал итогов сессий
type SessionLogger interface {
	LogSession(id string, orgID int64, filename, status string, total, imported, skipped int) error
}

// типы событий хода импорта
const (
	EventStatus  = "status"
	EventBatch   = "batch"
	EventWarning = "warning"
	EventDone    = "done"
	EventError   = "error"
)

// ProgressEvent событие хода импорта для внешнего наблюдателя
type ProgressEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ImportReport итог сессии импорта
type ImportReport struct {
	SessionID           string              `json:"sessionId"`
	HeaderRow           int                 `json:"headerRow"`
	DataStartRow        int                 `json:"dataStartRow"`
	DetectionConfidence float64             `json:"detectionConfidence"`
	MappingSource       model.MappingSource `json:"mappingSource"`
	MappingConfidence   float64             `json:"mappingConfidence"`

	TotalRows    int `json:"totalRows"`
	ImportedRows int `json:"importedRows"`
	SkippedRows  int `json:"skippedRows"`

	Sections int `json:"sections"`
	Works    int `json:"works"`
	SubItems int `json:"subItems"`
	Footers  int `json:"footers"`

	Warnings       int `json:"warnings"`
	Anomalies      int `json:"anomalies"`
	MathMismatches int `json:"mathMismatches"`

	Duration time.Duration `json:"duration"`
}
