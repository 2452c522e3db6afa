package model

import "strings"

// Section раздел сметы; путь вида "1.2", родитель определяется усечением пути
type Section struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organizationId"`
	Path           string `json:"path"`
	Title          string `json:"title"`
	ParentID       int64  `json:"parentId,omitempty"`
}

// ParentPath возвращает путь родительского раздела ("" для корневого)
func ParentPath(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx <= 0 {
		return ""
	}
	return path[:idx]
}

// WorkItem рабочая позиция сметы перед сохранением
type WorkItem struct {
	ID             int64    `json:"id,omitempty"`
	SessionID      string   `json:"sessionId"`
	SectionPath    string   `json:"sectionPath,omitempty"`
	Position       string   `json:"position,omitempty"`
	NormativeCode  string   `json:"normativeCode,omitempty"`
	Name           string   `json:"name"`
	Unit           string   `json:"unit,omitempty"`
	Quantity       float64  `json:"quantity"`
	UnitPrice      float64  `json:"unitPrice"`
	BasePrice      float64  `json:"basePrice"`
	Total          float64  `json:"total"`
	BatchIndex     int      `json:"batchIndex"` // индекс в батче до присвоения ID
	Warnings       []string `json:"warnings,omitempty"`
}

// ResourceSubItem ресурсная подпозиция, привязанная к работе
type ResourceSubItem struct {
	ID           int64        `json:"id,omitempty"`
	SessionID    string       `json:"sessionId"`
	Kind         ResourceKind `json:"kind"`
	Code         string       `json:"code,omitempty"`
	Name         string       `json:"name"`
	Unit         string       `json:"unit,omitempty"`
	Quantity     float64      `json:"quantity"`
	UnitPrice    float64      `json:"unitPrice"`
	ParentIndex  int          `json:"parentIndex"` // индекс работы в батче до сохранения
	ParentWorkID int64        `json:"parentWorkId,omitempty"`
}
