package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/xuri/excelize/v2"

	"smetaflow/internal/ai"
	"smetaflow/internal/cache"
	"smetaflow/internal/catalog"
	"smetaflow/internal/config"
	"smetaflow/internal/grid"
	"smetaflow/internal/importer"
	"smetaflow/internal/logs"
	"smetaflow/internal/memory"
	"smetaflow/internal/model"
	"smetaflow/internal/parser"
	"smetaflow/internal/quality"
	"smetaflow/internal/store"
)

var (
	filePath = flag.String("file", "", "файл сметы (xlsx)")
	sheet    = flag.String("sheet", "", "имя листа (по умолчанию первый)")
	orgID    = flag.Int64("org", 1, "идентификатор организации")
	userID   = flag.Int64("user", 0, "идентификатор пользователя")
	outPath  = flag.String("out", "", "файл результата jsonl (по умолчанию рядом с исходным)")
	dataDir  = flag.String("dataDir", "", "каталог данных (переопределяет конфигурацию)")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Smetaflow - импорт сметной документации")
	fmt.Println("==========================================")

	if *filePath == "" {
		fmt.Println("укажите файл сметы: smetaflow -file смета.xlsx")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("конфигурация не прочитана, действуют значения по умолчанию: %v\n", err)
		cfg = config.DefaultConfig()
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	logger := logs.New(cfg.Log.File, cfg.Log.Console)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := excelize.OpenFile(*filePath)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *filePath).Msg("файл сметы не открыт")
	}
	defer f.Close()

	g, err := grid.OpenSheet(f, *sheet)
	if err != nil {
		logger.Fatal().Err(err).Msg("лист не прочитан")
	}

	deps := importer.Deps{}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		// без базы импорт работает, но теряет память маппингов и статистику
		logger.Warn().Err(err).Msg("база недоступна, импорт без памяти и каталога")
	} else {
		defer st.Close()
		deps.Memory = memory.New(st)
		deps.Resolver = catalog.NewResolver(st, cfg.Thresholds.TrigramFloor, 0)
		deps.Stats = st
		deps.Sessions = st
	}

	ttl := cache.NewTTLCache()
	var provider quality.StatsProvider
	if st != nil {
		provider = st
	}
	deps.Anomaly = quality.NewAnomalyDetector(provider, ttl,
		cfg.Thresholds.AnomalyZScore, cfg.Thresholds.AnomalyMinSamples)

	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		chat := ai.NewHTTPClient(cfg.AI.Endpoint, cfg.AI.Model, cfg.AI.APIKey)
		deps.Suggester = ai.NewMappingSuggester(chat, ttl)
	}

	out := *outPath
	if out == "" {
		out = strings.TrimSuffix(*filePath, filepath.Ext(*filePath)) + ".jsonl"
	}
	outFile, err := os.Create(out)
	if err != nil {
		logger.Fatal().Err(err).Str("file", out).Msg("файл результата не создан")
	}
	defer outFile.Close()
	deps.Sink = &jsonlSink{enc: json.NewEncoder(outFile)}

	th := parser.Thresholds{
		HeaderFloor:      cfg.Thresholds.HeaderFloor,
		MappingCutoff:    cfg.Thresholds.MappingCutoff,
		FormulaTolerance: cfg.Thresholds.FormulaTolerance,
		ComponentGuard:   cfg.Thresholds.ComponentGuard,
	}
	coord := importer.NewCoordinator(deps, th, cfg.Thresholds.BatchSize, logger)

	ext := strings.TrimPrefix(filepath.Ext(*filePath), ".")
	session := model.NewImportSession(*orgID, *userID, filepath.Base(*filePath), ext)
	session.FileFormat = ext

	var report *importer.ImportReport
	for ev := range coord.Import(ctx, session, g) {
		switch ev.Type {
		case importer.EventStatus:
			fmt.Printf("[%s] %s\n", ev.Timestamp.Format(time.TimeOnly), ev.Message)
		case importer.EventBatch:
			fmt.Printf("[%s] %s\n", ev.Timestamp.Format(time.TimeOnly), ev.Message)
		case importer.EventError:
			fmt.Printf("импорт прерван: %s\n", ev.Message)
			os.Exit(1)
		case importer.EventDone:
			report, _ = ev.Data.(*importer.ImportReport)
		}
	}
	if report == nil {
		fmt.Println("импорт не дал результата")
		os.Exit(1)
	}

	printReport(report, out)
}

func printReport(r *importer.ImportReport, out string) {
	fmt.Println("------------------------------------------")
	fmt.Printf("сессия:      %s\n", r.SessionID)
	fmt.Printf("заголовок:   строка %d (уверенность %.2f)\n", r.HeaderRow, r.DetectionConfidence)
	fmt.Printf("маппинг:     %s (уверенность %.2f)\n", r.MappingSource, r.MappingConfidence)
	fmt.Printf("строк:       %d всего, %d импортировано, %d пропущено\n",
		r.TotalRows, r.ImportedRows, r.SkippedRows)
	fmt.Printf("состав:      %d разделов, %d работ, %d ресурсов, %d итоговых\n",
		r.Sections, r.Works, r.SubItems, r.Footers)
	if r.Warnings > 0 {
		fmt.Printf("внимание:    %d предупреждений (%d аномалий цен, %d расхождений арифметики)\n",
			r.Warnings, r.Anomalies, r.MathMismatches)
	}
	fmt.Printf("результат:   %s\n", out)
	fmt.Printf("время:       %s\n", r.Duration.Round(time.Millisecond))
}

// jsonlSink пишет батчи в jsonl: по записи на раздел и строку
type jsonlSink struct {
	enc *json.Encoder
}

type jsonlRecord struct {
	Type    string           `json:"type"` // section/row
	Section *model.Section   `json:"section,omitempty"`
	Row     *model.MappedRow `json:"row,omitempty"`
}

func (s *jsonlSink) FlushBatch(_ context.Context, _ *model.ImportSession, b *importer.Batch) error {
	for _, sec := range b.Sections {
		if err := s.enc.Encode(jsonlRecord{Type: "section", Section: sec}); err != nil {
			return err
		}
	}
	for _, r := range b.Rows {
		if err := s.enc.Encode(jsonlRecord{Type: "row", Row: r}); err != nil {
			return err
		}
	}
	return nil
}
