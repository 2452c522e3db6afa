package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus статус сессии импорта
type SessionStatus string

const (
	StatusUploading  SessionStatus = "uploading"
	StatusDetecting  SessionStatus = "detecting"
	StatusParsing    SessionStatus = "parsing"
	StatusProcessing SessionStatus = "processing"
	StatusEnriching  SessionStatus = "enriching"
	StatusCompleted  SessionStatus = "completed"
	StatusFailed     SessionStatus = "failed"
)

// допустимые переходы статуса; failed достижим из любого рабочего статуса
var statusOrder = map[SessionStatus]SessionStatus{
	StatusUploading:  StatusDetecting,
	StatusDetecting:  StatusParsing,
	StatusParsing:    StatusProcessing,
	StatusProcessing: StatusEnriching,
	StatusEnriching:  StatusCompleted,
}

// CanTransition проверяет допустимость перехода статуса
func CanTransition(from, to SessionStatus) bool {
	if to == StatusFailed {
		return from != StatusCompleted
	}
	return statusOrder[from] == to
}

// Structure обнаруженная структура файла: строка заголовка, маппинг колонок, подсказки
type Structure struct {
	HeaderRow      int               `json:"headerRow"`      // индекс строки заголовка (1-based)
	DataStartRow   int               `json:"dataStartRow"`   // первая строка данных
	Mapping        ColumnMapping     `json:"mapping"`        // каноническое поле -> колонка листа
	Confidence     float64           `json:"confidence"`     // уверенность детекции 0-1
	RowStyles      map[int]RowStyle  `json:"rowStyles,omitempty"`
	SectionHints   []string          `json:"sectionHints,omitempty"` // ключевые слова разделов (в т.ч. от AI)
	FooterHints    []string          `json:"footerHints,omitempty"`  // ключевые слова итоговых строк
	HeaderTexts    map[int]string    `json:"headerTexts,omitempty"`  // текст заголовка по колонкам
}

// RowStyle визуальные подсказки строки из исходного файла
type RowStyle struct {
	Bold   bool `json:"bold"`
	Shaded bool `json:"shaded"`
}

// ImportSession сессия импорта одного файла сметы
type ImportSession struct {
	ID             string            `json:"id"`
	OrganizationID int64             `json:"organizationId"`
	UserID         int64             `json:"userId"`
	Filename       string            `json:"filename"`
	Extension      string            `json:"extension"` // xlsx/xls/xml
	FileFormat     string            `json:"fileFormat"`
	Status         SessionStatus     `json:"status"`
	Structure      *Structure        `json:"structure,omitempty"`
	Options        map[string]string `json:"options,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// NewImportSession создаёт сессию в статусе uploading
func NewImportSession(orgID, userID int64, filename, extension string) *ImportSession {
	now := time.Now()
	return &ImportSession{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		UserID:         userID,
		Filename:       filename,
		Extension:      extension,
		Status:         StatusUploading,
		Options:        make(map[string]string),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Transition переводит сессию в новый статус, если переход допустим
func (s *ImportSession) Transition(to SessionStatus) bool {
	if !CanTransition(s.Status, to) {
		return false
	}
	s.Status = to
	s.UpdatedAt = time.Now()
	return true
}
