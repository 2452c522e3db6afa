package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig конфигурация приложения
type AppConfig struct {
	Data       DataConfig       `toml:"data"`
	AI         AIConfig         `toml:"ai"`
	Thresholds ThresholdsConfig `toml:"thresholds"`
	Log        LogConfig        `toml:"log"`
}

// DataConfig данные и база
type DataConfig struct {
	DataDir string `toml:"data_dir"`
	DBFile  string `toml:"db_file"`
}

// AIConfig параметры LLM-коллаборатора
type AIConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
}

// ThresholdsConfig пороги эвристик. Значения подобраны эмпирически;
// намеренно вынесены в конфигурацию поимённо, а не зашиты в код.
type ThresholdsConfig struct {
	HeaderFloor       float64 `toml:"header_floor"`
	MappingCutoff     float64 `toml:"mapping_cutoff"`
	FormulaTolerance  float64 `toml:"formula_tolerance"`
	ComponentGuard    float64 `toml:"component_guard"`
	AnomalyZScore     float64 `toml:"anomaly_z_score"`
	AnomalyMinSamples int     `toml:"anomaly_min_samples"`
	TrigramFloor      float64 `toml:"trigram_floor"`
	BatchSize         int     `toml:"batch_size"`
}

// LogConfig журналирование
type LogConfig struct {
	File    string `toml:"file"`
	Console bool   `toml:"console"`
}

// DefaultConfig конфигурация по умолчанию
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Data: DataConfig{
			DataDir: "data",
			DBFile:  "smetaflow.db",
		},
		AI: AIConfig{
			Enabled:  false,
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
		},
		Thresholds: ThresholdsConfig{
			HeaderFloor:       0.5,
			MappingCutoff:     0.45,
			FormulaTolerance:  0.05,
			ComponentGuard:    1.1,
			AnomalyZScore:     2.5,
			AnomalyMinSamples: 2,
			TrigramFloor:      0.35,
			BatchSize:         100,
		},
		Log: LogConfig{
			File:    "smetaflow.log",
			Console: true,
		},
	}
}

// GetExeDir каталог исполняемого файла
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig читает config.toml рядом с исполняемым файлом;
// отсутствие файла — не ошибка, действуют значения по умолчанию
func LoadConfig() (*AppConfig, error) {
	cfg := DefaultConfig()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	configPath := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// applyEnv переменные окружения сильнее файла (ключи не хранят в toml)
func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("SMETAFLOW_AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
		cfg.AI.Enabled = true
	}
	if v := os.Getenv("SMETAFLOW_AI_ENDPOINT"); v != "" {
		cfg.AI.Endpoint = v
	}
}

// DBPath абсолютный путь к файлу базы
func (c *AppConfig) DBPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, c.Data.DataDir, c.Data.DBFile)
}
