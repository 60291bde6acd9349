package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockLens/internal/model"
)

// DefaultPath is used when neither -config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// UniverseEntry lists the symbols fetched for one category.
type UniverseEntry struct {
	Category string   `yaml:"category"`
	Symbols  []string `yaml:"symbols"`
}

// Config holds all application configuration.
type Config struct {
	Data struct {
		CSVPath    string `yaml:"csv_path"`
		DateLayout string `yaml:"date_layout"`
	} `yaml:"data"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Dashboard struct {
		Title        string `yaml:"title"`
		DefaultChart string `yaml:"default_chart"`
		MultiSymbol  bool   `yaml:"multi_symbol"`
		ShowTable    bool   `yaml:"show_table"`
	} `yaml:"dashboard"`
	Chart struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
		Colors struct {
			Line    string `yaml:"line"`
			Area    string `yaml:"area"`
			Up      string `yaml:"up"`
			Down    string `yaml:"down"`
			Overlay string `yaml:"overlay"`
		} `yaml:"colors"`
	} `yaml:"chart"`
	Fetch struct {
		BaseURL      string          `yaml:"base_url"`
		APIKey       string          `yaml:"api_key"`
		Range        string          `yaml:"range"`
		SymbolSuffix string          `yaml:"symbol_suffix"`
		Schedule     string          `yaml:"schedule"`
		Universe     []UniverseEntry `yaml:"universe"`
	} `yaml:"fetch"`
	Proxy string `yaml:"proxy"`
}

// Path resolves the config file location from an explicit flag value and
// the CONFIG_PATH environment variable.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads .env, then the YAML file, then applies environment overrides
// and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("STOCKLENS_CSV"); v != "" {
		cfg.Data.CSVPath = v
	}
	if v := os.Getenv("STOCKLENS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("STOCKLENS_FETCH_SCHEDULE"); v != "" {
		cfg.Fetch.Schedule = v
	}
	if v := os.Getenv("STOCKLENS_DATA_SOURCE_URL"); v != "" {
		cfg.Fetch.BaseURL = v
	}
	if v := os.Getenv("STOCKLENS_DATA_SOURCE_KEY"); v != "" {
		cfg.Fetch.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Data.CSVPath == "" {
		c.Data.CSVPath = "Nifty_Stocks.csv"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8501"
	}
	if c.Dashboard.Title == "" {
		c.Dashboard.Title = "Nifty Stocks Interactive Dashboard"
	}
	if c.Dashboard.DefaultChart == "" {
		c.Dashboard.DefaultChart = string(model.ChartLine)
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = 1200
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = 600
	}
	if c.Chart.Colors.Line == "" {
		c.Chart.Colors.Line = "#00ffff"
	}
	if c.Chart.Colors.Area == "" {
		c.Chart.Colors.Area = "#ffa500"
	}
	if c.Chart.Colors.Up == "" {
		c.Chart.Colors.Up = "#008000"
	}
	if c.Chart.Colors.Down == "" {
		c.Chart.Colors.Down = "#ff0000"
	}
	if c.Chart.Colors.Overlay == "" {
		c.Chart.Colors.Overlay = "#add8e6"
	}
	if c.Fetch.Range == "" {
		c.Fetch.Range = "1y"
	}
}

// DefaultChartType returns the parsed dashboard default chart type.
func (c *Config) DefaultChartType() model.ChartType {
	ct, err := model.ParseChartType(c.Dashboard.DefaultChart)
	if err != nil {
		return model.ChartLine
	}
	return ct
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	if c.Data.CSVPath == "" {
		return fmt.Errorf("data.csv_path is required")
	}
	if _, err := model.ParseChartType(c.Dashboard.DefaultChart); err != nil {
		return fmt.Errorf("dashboard.default_chart: %w", err)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart.width and chart.height must be positive")
	}
	for _, col := range []string{c.Chart.Colors.Line, c.Chart.Colors.Area, c.Chart.Colors.Up, c.Chart.Colors.Down, c.Chart.Colors.Overlay} {
		if !isHexColor(col) {
			return fmt.Errorf("chart.colors: %q is not a #rrggbb colour", col)
		}
	}
	return nil
}

// ValidateFetch checks the settings needed by the fetch command.
func (c *Config) ValidateFetch() error {
	if len(c.Fetch.Universe) == 0 {
		return fmt.Errorf("fetch.universe is empty")
	}
	seen := make(map[string]string)
	for _, u := range c.Fetch.Universe {
		if strings.TrimSpace(u.Category) == "" {
			return fmt.Errorf("fetch.universe: entry without category")
		}
		for _, s := range u.Symbols {
			if prev, ok := seen[s]; ok && prev != u.Category {
				return fmt.Errorf("fetch.universe: %s listed under %q and %q", s, prev, u.Category)
			}
			seen[s] = u.Category
		}
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
