package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smetaflow/internal/ai"
	"smetaflow/internal/catalog"
	"smetaflow/internal/grid"
	"smetaflow/internal/memory"
	"smetaflow/internal/model"
	"smetaflow/internal/parser"
	"smetaflow/internal/quality"
)

// уверенность маппинга, собранного целиком из подсказки LLM
const aiMappingConfidence = 0.7

// Deps коллабораторы координатора; любой, кроме Sink, может быть nil —
// соответствующая ступень тогда пропускается
type Deps struct {
	Sink      Sink
	Memory    *memory.Memory
	Suggester *ai.MappingSuggester
	Resolver  *catalog.Resolver
	Anomaly   *quality.AnomalyDetector
	Stats     StatsRecorder
	Sessions  SessionLogger
}

// Coordinator ведёт сессию импорта от детекции структуры до сохранения:
// заголовок, маппинг по ступеням память-эвристика-подсказка, потоковая
// классификация строк, группировка подпозиций, контроль качества, батчи
type Coordinator struct {
	deps      Deps
	th        parser.Thresholds
	batchSize int
	log       zerolog.Logger
}

// NewCoordinator batchSize меньше единицы заменяется значением по умолчанию
func NewCoordinator(deps Deps, th parser.Thresholds, batchSize int, logger zerolog.Logger) *Coordinator {
	if batchSize < 1 {
		batchSize = 100
	}
	return &Coordinator{deps: deps, th: th, batchSize: batchSize, log: logger}
}

// Import запускает импорт в горутине и возвращает канал событий хода.
// Канал закрывается по завершении; последнее событие — done с отчётом
// либо error.
func (c *Coordinator) Import(ctx context.Context, session *model.ImportSession, g grid.Grid) <-chan ProgressEvent {
	events := make(chan ProgressEvent, 16)
	go func() {
		defer close(events)
		report, err := c.run(ctx, session, g, events)
		if err != nil {
			events <- ProgressEvent{Type: EventError, Message: err.Error(), Data: report, Timestamp: time.Now()}
			return
		}
		events <- ProgressEvent{Type: EventDone, Data: report, Timestamp: time.Now()}
	}()
	return events
}

// Run синхронный импорт без событий хода
func (c *Coordinator) Run(ctx context.Context, session *model.ImportSession, g grid.Grid) (*ImportReport, error) {
	return c.run(ctx, session, g, nil)
}

func (c *Coordinator) run(ctx context.Context, session *model.ImportSession, g grid.Grid, events chan<- ProgressEvent) (*ImportReport, error) {
	start := time.Now()
	report := &ImportReport{SessionID: session.ID}

	session.Transition(model.StatusDetecting)
	emit(events, EventStatus, string(session.Status), nil)

	det := parser.DetectHeader(g, c.th)
	if det.Confidence == 0 {
		err := fmt.Errorf("sheet structure not recognized: no usable header candidate")
		c.fail(session, report, err)
		return report, err
	}
	report.HeaderRow = det.HeaderRow
	report.DataStartRow = det.DataStartRow
	report.DetectionConfidence = det.Confidence

	mapping, hints := c.resolveMapping(ctx, session, g, det)
	if !mapping.HasRequired() {
		err := fmt.Errorf("column mapping incomplete: required fields unresolved")
		c.fail(session, report, err)
		return report, err
	}
	report.MappingSource = mapping.Source
	report.MappingConfidence = mapping.Confidence

	session.Structure = &model.Structure{
		HeaderRow:    det.HeaderRow,
		DataStartRow: det.DataStartRow,
		Mapping:      mapping,
		Confidence:   det.Confidence,
		SectionHints: hints.SectionKeywords,
		FooterHints:  hints.FooterKeywords,
		HeaderTexts:  det.Headers,
	}
	session.Transition(model.StatusParsing)
	emit(events, EventStatus, string(session.Status), session.Structure)

	c.log.Info().
		Str("session", session.ID).
		Int("header_row", det.HeaderRow).
		Float64("confidence", det.Confidence).
		Str("mapping_source", string(mapping.Source)).
		Msg("структура листа распознана")

	cls := parser.NewClassifier(mapping, c.th, hints)
	cursor := parser.NewGroupingCursor()
	sections := newSectionIndex(session.OrganizationID)
	unitPrices := make(map[string][]float64)
	maxCol := parser.RealMaxColumn(g)

	var (
		batch          []*model.MappedRow
		baseIndex      int
		currentSection string
	)

	for row := det.DataStartRow; row <= g.RowCount(); row++ {
		if err := ctx.Err(); err != nil {
			c.fail(session, report, err)
			return report, err
		}

		report.TotalRows++
		r := cls.Classify(readRow(g, row, maxCol))
		if r == nil {
			report.SkippedRows++
			continue
		}

		switch {
		case r.IsSection:
			if r.SectionPath == "" {
				r.SectionPath = sections.autoPath()
			}
			sections.ensure(r.SectionPath, r.Name)
			currentSection = r.SectionPath
			report.Sections++
		case r.IsFooter:
			report.Footers++
		default:
			if r.SectionPath == "" {
				r.SectionPath = currentSection
			}
		}

		batch = append(batch, r)
		if len(batch) >= c.batchSize {
			if err := c.flush(ctx, session, batch, baseIndex, cursor, sections, unitPrices, report, events); err != nil {
				c.fail(session, report, err)
				return report, err
			}
			baseIndex += len(batch)
			batch = nil
		}
	}
	if err := c.flush(ctx, session, batch, baseIndex, cursor, sections, unitPrices, report, events); err != nil {
		c.fail(session, report, err)
		return report, err
	}

	session.Transition(model.StatusProcessing)
	emit(events, EventStatus, string(session.Status), nil)
	c.recordStats(session.OrganizationID, unitPrices)

	session.Transition(model.StatusEnriching)
	emit(events, EventStatus, string(session.Status), nil)
	c.remember(session, det, mapping, hints, report)

	session.Transition(model.StatusCompleted)
	c.logSession(session, report)
	emit(events, EventStatus, string(session.Status), nil)

	report.Duration = time.Since(start)
	c.log.Info().
		Str("session", session.ID).
		Int("imported", report.ImportedRows).
		Int("skipped", report.SkippedRows).
		Dur("took", report.Duration).
		Msg("импорт завершён")
	return report, nil
}

// resolveMapping ступени маппинга: ручной из структуры сессии, память
// организации, эвристика по словарям, подсказка LLM для незакрытых полей
func (c *Coordinator) resolveMapping(ctx context.Context, session *model.ImportSession, g grid.Grid, det parser.DetectionResult) (model.ColumnMapping, parser.Hints) {
	hints := parser.Hints{}

	if session.Structure != nil &&
		session.Structure.Mapping.Source == model.MappingFromManual &&
		session.Structure.Mapping.HasRequired() {
		hints.SectionKeywords = session.Structure.SectionHints
		hints.FooterKeywords = session.Structure.FooterHints
		return session.Structure.Mapping, hints
	}

	headerList := orderedHeaderValues(det.Headers)
	if c.deps.Memory != nil {
		rec, err := c.deps.Memory.Lookup(session.OrganizationID, session.FileFormat, headerList)
		if err != nil {
			c.log.Warn().Err(err).Str("session", session.ID).Msg("память маппингов недоступна")
		}
		if rec != nil {
			hints.SectionKeywords = rec.SectionHints
			hints.FooterKeywords = rec.FooterHints
			return rec.Mapping, hints
		}
	}

	mapping := parser.MapColumns(det.Headers, c.th.MappingCutoff)
	heuristicCols := len(mapping.Columns)

	if !mapping.HasRequired() && c.deps.Suggester != nil {
		sugg, err := c.deps.Suggester.Suggest(ctx, det.Headers, sampleRows(g, det.DataStartRow, parser.RealMaxColumn(g)))
		if err != nil {
			// подсказка совещательная: сбой не прерывает импорт
			c.log.Warn().Err(err).Str("session", session.ID).Msg("подсказка маппинга не получена")
		}
		added := 0
		for field, col := range sugg {
			if _, ok := mapping.Columns[field]; ok {
				continue
			}
			// подсказка оперирует индексами с нуля, сетка — с единицы
			mapping.Columns[field] = col + 1
			added++
		}
		if added > 0 && heuristicCols == 0 {
			mapping.Source = model.MappingFromAI
			mapping.Confidence = aiMappingConfidence
		}
	}

	return mapping, hints
}

// flush группирует, проверяет и сохраняет накопленный батч
func (c *Coordinator) flush(ctx context.Context, session *model.ImportSession, rows []*model.MappedRow, baseIndex int, cursor *parser.GroupingCursor, sections *sectionIndex, unitPrices map[string][]float64, report *ImportReport, events chan<- ProgressEvent) error {
	if len(rows) == 0 {
		return nil
	}

	parser.Group(rows, baseIndex, cursor)
	for _, r := range rows {
		quality.CheckFormulas(r, c.th.FormulaTolerance)
	}
	if c.deps.Anomaly != nil {
		c.deps.Anomaly.Annotate(session.OrganizationID, rows)
	}
	c.resolveCatalog(ctx, session.OrganizationID, rows)

	for _, r := range rows {
		report.Warnings += len(r.Warnings)
		if r.Anomaly != nil {
			report.Anomalies++
		}
		if r.HasMathMismatch {
			report.MathMismatches++
		}
		switch {
		case r.IsSection, r.IsFooter:
		case r.IsSubItem:
			report.SubItems++
		default:
			report.Works++
			if r.UnitPrice != nil && r.Unit != "" {
				unitPrices[r.Unit] = append(unitPrices[r.Unit], *r.UnitPrice)
			}
		}
	}
	report.ImportedRows += len(rows)

	if c.deps.Sink != nil {
		b := &Batch{BaseIndex: baseIndex, Rows: rows, Sections: sections.takeFresh()}
		if err := c.deps.Sink.FlushBatch(ctx, session, b); err != nil {
			return fmt.Errorf("flush batch at %d: %w", baseIndex, err)
		}
	}

	emit(events, EventBatch, fmt.Sprintf("строки %d-%d сохранены", baseIndex, baseIndex+len(rows)-1), len(rows))
	return nil
}

// resolveCatalog сопоставляет ресурсные подпозиции с каталогом.
// Сбой резолва отдельного ресурса — предупреждение строки, не ошибка сессии.
func (c *Coordinator) resolveCatalog(ctx context.Context, orgID int64, rows []*model.MappedRow) {
	if c.deps.Resolver == nil {
		return
	}
	for _, r := range rows {
		if !r.IsSubItem {
			continue
		}
		m, err := c.deps.Resolver.ResolveOrCreate(ctx, orgID, r.NormativeCode, r.Name, r.Unit)
		if err != nil {
			c.log.Warn().Err(err).Int("row", r.RowNumber).Msg("ресурс не сопоставлен с каталогом")
			r.Warnings = append(r.Warnings, "ресурс не сопоставлен с каталогом")
			continue
		}
		if m != nil {
			r.CatalogEntryID = m.Entry.ID
			r.MatchTier = string(m.Tier)
			r.MatchConfidence = m.Confidence
		}
	}
}

func (c *Coordinator) recordStats(orgID int64, unitPrices map[string][]float64) {
	if c.deps.Stats == nil {
		return
	}
	for unit, prices := range unitPrices {
		if err := c.deps.Stats.RecordUnitPrices(orgID, unit, prices); err != nil {
			c.log.Warn().Err(err).Str("unit", unit).Msg("статистика цен не записана")
		}
	}
}

// remember фиксирует маппинг в памяти организации после успешного импорта
func (c *Coordinator) remember(session *model.ImportSession, det parser.DetectionResult, mapping model.ColumnMapping, hints parser.Hints, report *ImportReport) {
	if c.deps.Memory == nil || report.ImportedRows == 0 || mapping.Source == model.MappingFromMemory {
		return
	}
	headerList := orderedHeaderValues(det.Headers)
	if err := c.deps.Memory.Remember(session.OrganizationID, session.FileFormat, headerList, mapping, hints.SectionKeywords, hints.FooterKeywords); err != nil {
		c.log.Warn().Err(err).Str("session", session.ID).Msg("маппинг не сохранён в память")
	}
}

func (c *Coordinator) fail(session *model.ImportSession, report *ImportReport, err error) {
	session.Transition(model.StatusFailed)
	c.logSession(session, report)
	c.log.Error().Err(err).Str("session", session.ID).Msg("импорт прерван")
}

func (c *Coordinator) logSession(session *model.ImportSession, report *ImportReport) {
	if c.deps.Sessions == nil {
		return
	}
	err := c.deps.Sessions.LogSession(session.ID, session.OrganizationID, session.Filename,
		string(session.Status), report.TotalRows, report.ImportedRows, report.SkippedRows)
	if err != nil {
		c.log.Warn().Err(err).Str("session", session.ID).Msg("журнал сессий недоступен")
	}
}

// readRow снимает строку сетки в разреженное представление
func readRow(g grid.Grid, row, maxCol int) model.RawRow {
	cells := make(map[int]string)
	for col := 1; col <= maxCol; col++ {
		if v := g.Cell(row, col); strings.TrimSpace(v) != "" {
			cells[col] = v
		}
	}
	return model.RawRow{
		Number: row,
		Cells:  cells,
		Indent: g.RowIndent(row),
		Style:  g.RowStyle(row),
	}
}

// sampleRows первые строки данных для подсказки маппинга
func sampleRows(g grid.Grid, dataStart, maxCol int) [][]string {
	const sampleLimit = 10
	var samples [][]string
	for row := dataStart; row < dataStart+sampleLimit && row <= g.RowCount(); row++ {
		cells := make([]string, maxCol)
		for col := 1; col <= maxCol; col++ {
			cells[col-1] = strings.TrimSpace(g.Cell(row, col))
		}
		samples = append(samples, cells)
	}
	return samples
}

func orderedHeaderValues(headers map[int]string) []string {
	maxCol := 0
	for col := range headers {
		if col > maxCol {
			maxCol = col
		}
	}
	out := make([]string, 0, len(headers))
	for col := 1; col <= maxCol; col++ {
		if v, ok := headers[col]; ok {
			out = append(out, v)
		}
	}
	return out
}

func emit(events chan<- ProgressEvent, typ, msg string, data any) {
	if events == nil {
		return
	}
	events <- ProgressEvent{Type: typ, Message: msg, Data: data, Timestamp: time.Now()}
}

// sectionIndex жадное создание разделов с разрешением родителя усечением
// пути; неизвестный родитель не создаётся, раздел остаётся корневым
type sectionIndex struct {
	orgID  int64
	byPath map[string]*model.Section
	nextID int64
	auto   int
	fresh  []*model.Section
}

func newSectionIndex(orgID int64) *sectionIndex {
	return &sectionIndex{orgID: orgID, byPath: make(map[string]*model.Section)}
}

func (ix *sectionIndex) ensure(path, title string) *model.Section {
	if s, ok := ix.byPath[path]; ok {
		return s
	}
	var parentID int64
	if pp := model.ParentPath(path); pp != "" {
		if p, ok := ix.byPath[pp]; ok {
			parentID = p.ID
		}
	}
	ix.nextID++
	s := &model.Section{
		ID:             ix.nextID,
		OrganizationID: ix.orgID,
		Path:           path,
		Title:          title,
		ParentID:       parentID,
	}
	ix.byPath[path] = s
	ix.fresh = append(ix.fresh, s)
	return s
}

// autoPath путь для раздела без собственной нумерации
func (ix *sectionIndex) autoPath() string {
	for {
		ix.auto++
		p := strconv.Itoa(ix.auto)
		if _, ok := ix.byPath[p]; !ok {
			return p
		}
	}
}

func (ix *sectionIndex) takeFresh() []*model.Section {
	f := ix.fresh
	ix.fresh = nil
	return f
}
