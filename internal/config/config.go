// =============================================================================
// ExcelTools - Configuration Module
// =============================================================================
//
// This module is responsible for loading and persisting user settings.
// The configuration is a single JSON document stored per user, containing a
// nested section for each concern (export formatting, search, merge, ...).
//
// ARCHITECTURE:
//   The configuration system is designed to be:
//   - Forgiving: a missing or unparseable file falls back to defaults
//   - Sectioned: each feature module owns one nested section
//   - Addressable: values can be read and written by dotted path
//     (e.g. "excel_export.header_bg_color") for the config command
//
// =============================================================================

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
)

// =============================================================================
// SECTION STRUCTURES
// =============================================================================

// ExcelExportConfig controls the formatting applied to exported sheets.
type ExcelExportConfig struct {
	// Formatting toggles.
	FreezeHeader       bool `json:"freeze_header"`
	AutoFitColumns     bool `json:"auto_fit_columns"`
	AlternateRowColors bool `json:"alternate_row_colors"`
	AddBorders         bool `json:"add_borders"`

	// Colors in #RRGGBB form.
	HeaderBgColor     string `json:"header_bg_color"`
	HeaderFontColor   string `json:"header_font_color"`
	AlternateRowColor string `json:"alternate_row_color"`
	SuccessColor      string `json:"success_color"`
	ErrorColor        string `json:"error_color"`
	WarningColor      string `json:"warning_color"`

	// Column width limits, in Excel width units.
	MinColumnWidth     float64 `json:"min_column_width"`
	MaxColumnWidth     float64 `json:"max_column_width"`
	DefaultColumnWidth float64 `json:"default_column_width"`

	// AutofitSampleRows caps the number of rows scanned when measuring
	// column widths, so that huge exports stay fast.
	AutofitSampleRows int `json:"autofit_sample_rows"`

	// Fonts.
	HeaderFontSize float64 `json:"header_font_size"`
	DataFontSize   float64 `json:"data_font_size"`
	HeaderFontBold bool    `json:"header_font_bold"`
}

// SearchConfig holds the defaults of the search module.
type SearchConfig struct {
	MaxResultsDisplay    int     `json:"max_results_display"`
	DefaultCaseSensitive bool    `json:"default_case_sensitive"`
	DefaultAndMode       bool    `json:"default_and_mode"`
	DefaultSearchMode    string  `json:"default_search_mode"` // contains, exact, starts, ends, regex, fuzzy
	FuzzyThreshold       float64 `json:"fuzzy_threshold"`
}

// MergeConfig holds the defaults of the merge module.
type MergeConfig struct {
	// KeyColumnPatterns lists header names tried, in order, when
	// auto-selecting the join column.
	KeyColumnPatterns []string `json:"key_column_patterns"`

	DefaultOutputSheetName   string `json:"default_output_sheet_name"`
	DefaultAddMatchColumn    bool   `json:"default_add_match_column"`
	DefaultFilterLastOnly    bool   `json:"default_filter_last_only"`
	DefaultExportMatchesOnly bool   `json:"default_export_matches_only"`
}

// TransferConfig holds the defaults of the field-transfer module.
type TransferConfig struct {
	// MaxRowsToScan bounds the label scan within each sheet.
	MaxRowsToScan int `json:"max_rows_to_scan"`

	// AdjacentColumnsToCheck is how far right of a label the value is
	// looked for before falling back to the cell below.
	AdjacentColumnsToCheck int `json:"adjacent_columns_to_check"`

	DefaultOutputSheetName string `json:"default_output_sheet_name"`
	HeaderTitle            string `json:"header_title"`
}

// CSVConfig holds the defaults of the CSV conversion module.
type CSVConfig struct {
	AvailableEncodings        []string `json:"available_encodings"`
	DefaultEncoding           string   `json:"default_encoding"`
	AvailableSeparators       []string `json:"available_separators"`
	DefaultSeparator          string   `json:"default_separator"`
	DefaultSkipHeadersOnMerge bool     `json:"default_skip_headers_on_merge"`
}

// PerformanceConfig bounds resource usage of batch operations.
type PerformanceConfig struct {
	PreviewMaxRows    int  `json:"preview_max_rows"`
	PreviewMaxColumns int  `json:"preview_max_columns"`
	MaxConcurrency    int  `json:"max_concurrency"`
	ContinueOnError   bool `json:"continue_on_error"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level          string `json:"level"` // debug, info, warning, error
	MaxEntries     int    `json:"max_entries"`
	ShowTimestamps bool   `json:"show_timestamps"`
	ShowSource     bool   `json:"show_source"`
	SaveToFile     bool   `json:"save_logs_to_file"`
	LogDir         string `json:"log_dir"`
}

// =============================================================================
// TOP-LEVEL CONFIGURATION
// =============================================================================

// AppConfig is the full persisted settings document.
type AppConfig struct {
	ExcelExport ExcelExportConfig `json:"excel_export"`
	Search      SearchConfig      `json:"search"`
	Merge       MergeConfig       `json:"merge"`
	Transfer    TransferConfig    `json:"transfer"`
	CSV         CSVConfig         `json:"csv"`
	Performance PerformanceConfig `json:"performance"`
	Log         LogConfig         `json:"log"`

	// Global behavior.
	ConfirmBeforeOverwrite bool `json:"confirm_before_overwrite"`
	AutoSaveConfig         bool `json:"auto_save_config"`

	// Paths.
	DefaultInputDir  string `json:"default_input_dir"`
	DefaultOutputDir string `json:"default_output_dir"`
	LastUsedDir      string `json:"last_used_dir"`

	// History.
	RecentFiles    []string `json:"recent_files"`
	MaxRecentFiles int      `json:"max_recent_files"`
}

// Default returns an AppConfig populated with the built-in defaults.
func Default() *AppConfig {
	return &AppConfig{
		ExcelExport: ExcelExportConfig{
			FreezeHeader:       true,
			AutoFitColumns:     true,
			AlternateRowColors: true,
			AddBorders:         true,
			HeaderBgColor:      "#1F4E79",
			HeaderFontColor:    "#FFFFFF",
			AlternateRowColor:  "#F2F2F2",
			SuccessColor:       "#C6EFCE",
			ErrorColor:         "#FFC7CE",
			WarningColor:       "#FFEB9C",
			MinColumnWidth:     10,
			MaxColumnWidth:     50,
			DefaultColumnWidth: 15,
			AutofitSampleRows:  100,
			HeaderFontSize:     11,
			DataFontSize:       10,
			HeaderFontBold:     true,
		},
		Search: SearchConfig{
			MaxResultsDisplay: 500,
			DefaultSearchMode: "contains",
			FuzzyThreshold:    0.8,
		},
		Merge: MergeConfig{
			KeyColumnPatterns: []string{
				"REF", "Reference", "ID", "DOC_REF",
				"Legacy Number", "TC Reference", "Code",
			},
			DefaultOutputSheetName: "Merged Data",
			DefaultAddMatchColumn:  true,
		},
		Transfer: TransferConfig{
			MaxRowsToScan:          200,
			AdjacentColumnsToCheck: 3,
			DefaultOutputSheetName: "Activity",
			HeaderTitle:            "EXTRACTED DATA",
		},
		CSV: CSVConfig{
			AvailableEncodings: []string{
				"utf-8", "utf-8-sig", "latin-1", "cp1252", "iso-8859-1",
			},
			DefaultEncoding:           "utf-8",
			AvailableSeparators:       []string{",", ";", "\t", "|"},
			DefaultSeparator:          ",",
			DefaultSkipHeadersOnMerge: true,
		},
		Performance: PerformanceConfig{
			PreviewMaxRows:    50,
			PreviewMaxColumns: 20,
			MaxConcurrency:    4,
			ContinueOnError:   true,
		},
		Log: LogConfig{
			Level:          "info",
			MaxEntries:     500,
			ShowTimestamps: true,
			ShowSource:     true,
			SaveToFile:     true,
		},
		ConfirmBeforeOverwrite: true,
		AutoSaveConfig:         true,
		MaxRecentFiles:         10,
	}
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager loads, caches and persists the application configuration.
type Manager struct {
	// Path is the location of the JSON settings document.
	Path string

	cfg       *AppConfig
	callbacks []func(key string, value interface{})
}

// DefaultPath returns the per-user settings location
// (~/.exceltools/config.json).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".exceltools", "config.json")
	}
	return filepath.Join(home, ".exceltools", "config.json")
}

// NewManager creates a manager for the given settings path.
// An empty path selects the per-user default location.
func NewManager(path string) *Manager {
	if path == "" {
		path = DefaultPath()
	}
	return &Manager{Path: path}
}

// Config returns the cached configuration, loading it on first access.
func (m *Manager) Config() *AppConfig {
	if m.cfg == nil {
		m.Load()
	}
	return m.cfg
}

// Load reads the settings document from disk. A missing file or a parse
// error yields the defaults; the error is never fatal.
func (m *Manager) Load() *AppConfig {
	m.cfg = Default()

	data, err := os.ReadFile(m.Path)
	if err != nil {
		return m.cfg
	}

	// Unmarshal over the defaults so absent fields keep their values.
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return m.cfg
	}
	m.cfg = cfg
	return m.cfg
}

// Save writes the settings document, creating the parent directory.
func (m *Manager) Save() error {
	data, err := json.MarshalIndent(m.Config(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.Path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(m.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// DOTTED-PATH ACCESS
// =============================================================================

// Get resolves a dotted path such as "excel_export.header_bg_color" against
// the configuration and returns the value, or nil if the path is unknown.
func (m *Manager) Get(key string) interface{} {
	v := reflect.ValueOf(m.Config()).Elem()
	for _, part := range strings.Split(key, ".") {
		if v.Kind() != reflect.Struct {
			return nil
		}
		v = fieldByTag(v, part)
		if !v.IsValid() {
			return nil
		}
	}
	return v.Interface()
}

// Set assigns a value to a dotted path. String values are converted to the
// destination field's type (bool, int, float, string or string list). The
// configuration is saved afterwards when auto_save_config is enabled.
func (m *Manager) Set(key, value string) error {
	v := reflect.ValueOf(m.Config()).Elem()
	for _, part := range strings.Split(key, ".") {
		if v.Kind() != reflect.Struct {
			return fmt.Errorf("unknown setting: %s", key)
		}
		v = fieldByTag(v, part)
		if !v.IsValid() {
			return fmt.Errorf("unknown setting: %s", key)
		}
	}

	if err := assign(v, value); err != nil {
		return fmt.Errorf("cannot set %s: %w", key, err)
	}

	m.notify(key, v.Interface())
	if m.Config().AutoSaveConfig {
		return m.Save()
	}
	return nil
}

// fieldByTag finds the struct field whose json tag matches name.
func fieldByTag(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		if tag == name {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}

// assign converts a string into the field's type and stores it.
func assign(v reflect.Value, value string) error {
	if !v.CanSet() {
		return fmt.Errorf("value is not settable")
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Slice:
		if v.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", v.Type())
		}
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		v.Set(reflect.ValueOf(parts))
	default:
		return fmt.Errorf("unsupported setting type %s", v.Kind())
	}
	return nil
}

// Flatten returns every leaf setting as a dotted-path map, for display.
func (m *Manager) Flatten() map[string]interface{} {
	out := make(map[string]interface{})
	flatten(reflect.ValueOf(m.Config()).Elem(), "", out)
	return out
}

func flatten(v reflect.Value, prefix string, out map[string]interface{}) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		f := v.Field(i)
		if f.Kind() == reflect.Struct {
			flatten(f, key, out)
			continue
		}
		out[key] = f.Interface()
	}
}

// =============================================================================
// SECTIONS, HISTORY AND TRANSPORT
// =============================================================================

// ResetSection restores one top-level section to its defaults.
func (m *Manager) ResetSection(section string) error {
	defaults := reflect.ValueOf(Default()).Elem()
	current := reflect.ValueOf(m.Config()).Elem()

	src := fieldByTag(defaults, section)
	dst := fieldByTag(current, section)
	if !src.IsValid() || !dst.IsValid() || src.Kind() != reflect.Struct {
		return fmt.Errorf("unknown section: %s", section)
	}
	dst.Set(src)

	if m.Config().AutoSaveConfig {
		return m.Save()
	}
	return nil
}

// ResetAll restores the whole configuration to its defaults and saves it.
func (m *Manager) ResetAll() error {
	m.cfg = Default()
	return m.Save()
}

// AddRecentFile records a file path in the recent-files history, most
// recent first, capped at max_recent_files.
func (m *Manager) AddRecentFile(path string) {
	cfg := m.Config()

	recent := []string{path}
	for _, p := range cfg.RecentFiles {
		if p != path {
			recent = append(recent, p)
		}
	}
	if cfg.MaxRecentFiles > 0 && len(recent) > cfg.MaxRecentFiles {
		recent = recent[:cfg.MaxRecentFiles]
	}
	cfg.RecentFiles = recent

	if cfg.AutoSaveConfig {
		m.Save()
	}
}

// Export writes the current configuration to an external file.
func (m *Manager) Export(path string) error {
	data, err := json.MarshalIndent(m.Config(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// Import replaces the configuration with the content of an external file
// and persists it. Unlike Load, a parse error here is reported.
func (m *Manager) Import(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read import: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse import: %w", err)
	}
	m.cfg = cfg
	return m.Save()
}

// OnChange registers a callback invoked after every Set.
func (m *Manager) OnChange(fn func(key string, value interface{})) {
	m.callbacks = append(m.callbacks, fn)
}

func (m *Manager) notify(key string, value interface{}) {
	for _, fn := range m.callbacks {
		fn(key, value)
	}
}
