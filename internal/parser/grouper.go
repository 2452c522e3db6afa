package parser

import (
	"regexp"
	"strings"

	"smetaflow/internal/model"
)

// GroupingCursor состояние группировки подпозиций. Передаётся явно
// в каждый вызов Group, чтобы граница батча не разрывала привязку
// ресурса к работе из предыдущего батча.
type GroupingCursor struct {
	LastWorkIndex int // индекс последней работы в потоке сессии, -1 — нет
	LastWorkLevel int // её уровень отступа
}

// NewGroupingCursor курсор без текущей работы
func NewGroupingCursor() *GroupingCursor {
	return &GroupingCursor{LastWorkIndex: -1}
}

var (
	explicitPositionRe = regexp.MustCompile(`^\d+$`)
	resourceCodeRe     = regexp.MustCompile(`^(?i:ФССЦ|ТССЦ|ФСБЦ|ССЦ|ФСЭМ|ТСЭМ|СЭМ)[-. ]?\d`)
	ksrResourceCodeRe  = regexp.MustCompile(`^\d{2}\.\d\.\d{2}\.\d{2}`)
)

// Group привязывает ресурсные строки батча к предшествующей работе.
// baseIndex — индекс первой строки батча в потоке сессии.
func Group(rows []*model.MappedRow, baseIndex int, cursor *GroupingCursor) {
	for i, r := range rows {
		global := baseIndex + i

		if r.IsSection {
			// новый раздел: ресурсы не привязываются через его границу
			cursor.LastWorkIndex = -1
			continue
		}
		if r.IsFooter {
			continue
		}

		if cursor.LastWorkIndex >= 0 && isSubItem(r, cursor) {
			r.IsSubItem = true
			parent := cursor.LastWorkIndex
			r.ParentIndex = &parent
			if r.ResourceKind == "" {
				r.ResourceKind = ResolveResourceKind(r)
			}
			continue
		}

		r.IsSubItem = false
		cursor.LastWorkIndex = global
		cursor.LastWorkLevel = r.Indent
	}
}

// isSubItem признаки ресурсной строки. Явный целочисленный номер позиции
// сильнее любых эвристик: собственная нумерация означает работу.
func isSubItem(r *model.MappedRow, cursor *GroupingCursor) bool {
	if explicitPositionRe.MatchString(strings.TrimSpace(r.Position)) {
		return false
	}
	if r.IsSubItem {
		return true
	}
	if r.ResourceKind != "" {
		return true
	}
	if r.Indent > cursor.LastWorkLevel {
		return true
	}
	if nameHasResourcePrefix(r.Name) {
		return true
	}
	if isResourceCode(r.NormativeCode) {
		return true
	}
	return false
}

func nameHasResourcePrefix(name string) bool {
	norm := NormalizeHeader(name)
	for _, p := range subItemPrefixes {
		if strings.HasPrefix(norm, p) {
			return true
		}
	}
	return false
}

func isResourceCode(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	return resourceCodeRe.MatchString(code) || ksrResourceCodeRe.MatchString(code)
}

// ResolveResourceKind тип ресурса: сначала по шифру, затем по ключевым
// словам наименования, по умолчанию материал
func ResolveResourceKind(r *model.MappedRow) model.ResourceKind {
	code := strings.ToUpper(strings.TrimSpace(r.NormativeCode))
	for _, rc := range resourceCodeKinds {
		for _, p := range rc.prefixes {
			if strings.HasPrefix(code, p) {
				return rc.kind
			}
		}
	}

	norm := NormalizeHeader(r.Name)
	switch {
	case strings.HasPrefix(norm, "от:") || strings.HasPrefix(norm, "зп:") ||
		strings.Contains(norm, "затраты труда") || strings.Contains(norm, "оплата труда"):
		return model.ResourceLabor
	case strings.Contains(norm, "механизм") || strings.Contains(norm, "эксплуатация машин") ||
		strings.Contains(norm, "маш-ч") || strings.Contains(norm, "машин и механизмов"):
		return model.ResourceMachinery
	}
	return model.ResourceMaterial
}
