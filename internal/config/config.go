// =============================================================================
// COUNTER Report Generator - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and the report profiles.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Global application settings
//   2. Report Profiles (profiles/*.yaml): One per usage export source
//
// A profile describes how a usage export is read (CSV or XLSX settings,
// column mapping, transformations) and which report it becomes (report
// attributes plus the Vendor and Customer, given in loose form and handed to
// the report builder as-is).
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory where usage exports (CSV/XLSX) are placed.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where generated report XML files are placed.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is the directory where processed exports are moved.
	// Files are only moved here after successful processing.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir is the directory where generated reports are archived.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// ProfilesDir is the directory containing report profiles.
	// Default: "./profiles"
	ProfilesDir string `yaml:"profiles_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the format for output file names.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {time}      - Current time (HHMMSS)
	//   {profile}   - Profile code
	//   {report}    - Report ID (e.g. JR1)
	//   {original}  - Input file name without extension
	//
	// Default: "{profile}_{report}_{uuid}.xml"
	OutputNameFormat string `yaml:"output_name_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files to process concurrently.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError determines whether invalid rows are skipped (true) or
	// fail the whole file (false). Other files are always processed.
	// Default: false
	ContinueOnError bool `yaml:"continue_on_error"`

	// ArchiveRetentionDays removes archived files older than this many days
	// at the end of a run. Zero keeps everything.
	ArchiveRetentionDays int `yaml:"archive_retention_days"`

	// ArchiveByDate files archived inputs and reports under YYYY/MM/DD
	// subdirectories of the archive directories.
	ArchiveByDate bool `yaml:"archive_by_date"`
}

// =============================================================================
// REPORT PROFILE STRUCTURE
// =============================================================================

// ReportProfile holds the configuration for one usage export source.
type ReportProfile struct {
	// =========================================================================
	// PROFILE IDENTIFICATION
	// =========================================================================

	// ProfileName is the human-readable name of the profile.
	// This is used in logs and error messages.
	ProfileName string `yaml:"profile_name"`

	// ProfileCode is a short code for the profile.
	// This keys the profile and can be used in output file names.
	ProfileCode string `yaml:"profile_code"`

	// =========================================================================
	// FILE MATCHING RULES
	// =========================================================================

	// FileMatchingPatterns is a list of glob patterns to match input files.
	// If a file name matches any of these patterns, this profile is used.
	// Examples:
	//   - "ojs_jr1_*.csv"
	//   - "*_usage.xlsx"
	FileMatchingPatterns []string `yaml:"file_matching_patterns"`

	// =========================================================================
	// PARSING SETTINGS
	// =========================================================================

	// CSVSettings contains settings for parsing CSV exports.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// XLSXSettings contains settings for reading XLSX workbooks.
	XLSXSettings XLSXSettings `yaml:"xlsx_settings"`

	// =========================================================================
	// REPORT DESCRIPTION
	// =========================================================================

	// Report holds the report attributes.
	Report ReportSettings `yaml:"report"`

	// Vendor is the loose Vendor description (ID required).
	Vendor map[string]any `yaml:"vendor"`

	// Customer is the loose Customer description (ID required). The
	// converter adds ReportItems to a copy of it.
	Customer map[string]any `yaml:"customer"`

	// =========================================================================
	// COLUMN MAPPING AND TRANSFORMATIONS
	// =========================================================================

	// ColumnMapping maps a logical column (ItemName, Begin, Count, ...) to
	// the source header carrying it. Unmapped logical columns are looked up
	// under their own name.
	ColumnMapping map[string]string `yaml:"column_mapping"`

	// TransformationRules defines field-level transformation rules, applied
	// to logical columns before validation.
	TransformationRules []TransformationRule `yaml:"transformation_rules"`

	// Defaults fill logical columns that are empty on a row.
	Defaults map[string]string `yaml:"defaults"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), ";" (semicolon), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows in the CSV file.
	// Multi-row headers are joined with a space.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the file line where the actual data begins.
	// Line numbering starts at 1 and counts blank and comment lines.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row"`

	// Comment is a line prefix marking lines to skip. Empty disables it.
	Comment string `yaml:"comment"`
}

// =============================================================================
// XLSX SETTINGS STRUCTURE
// =============================================================================

// XLSXSettings contains settings for reading XLSX workbooks.
type XLSXSettings struct {
	// SheetName is the worksheet holding the usage rows.
	// Default: the first sheet.
	SheetName string `yaml:"sheet_name"`

	// HeaderRow is the row holding the column headers (1-based).
	// Default: 1
	HeaderRow int `yaml:"header_row"`

	// DataStartRow is the first data row (1-based).
	// Default: HeaderRow + 1
	DataStartRow int `yaml:"data_start_row"`
}

// =============================================================================
// REPORT SETTINGS STRUCTURE
// =============================================================================

// ReportSettings holds the Report attributes written on every report built
// from the profile.
type ReportSettings struct {
	ID      string `yaml:"id"`
	Version string `yaml:"version"`
	Name    string `yaml:"name"`
	Title   string `yaml:"title"`
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// TransformationRule defines a transformation to apply to a specific field.
type TransformationRule struct {
	// Field is the logical column to transform.
	Field string `yaml:"field"`

	// Actions is a list of transformations to apply to this field.
	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is the type of transformation to apply.
	// Supported types:
	//   - "prepend_string"       : Add a string to the beginning of the value
	//   - "append_string"        : Add a string to the end of the value
	//   - "trim"                 : Remove leading and trailing whitespace
	//   - "uppercase"            : Convert to uppercase
	//   - "lowercase"            : Convert to lowercase
	//   - "normalize_whitespace" : Collapse runs of whitespace
	//   - "replace"              : Replace a substring with another
	//   - "regex_replace"        : Replace using a regular expression
	//   - "pad_zeros_to_length"  : Pad with leading zeros to a specific length
	//   - "remove_leading_zeros" : Strip leading zeros
	//   - "extract_digits"       : Keep only the digits ("1,204" -> "1204")
	//   - "format_date"          : Convert a date to another layout
	//   - "lookup"               : Replace value using a lookup table
	//   - "lookup_with_default"  : As lookup, unknown values become Value
	//   - "set_if"               : Set Value when Condition holds
	//   - "if_empty_use_default" : Use Value when the field is empty
	//   - "if_empty_use_field"   : Use the field named by Value when empty
	Type string `yaml:"type"`

	// Value is the parameter for the transformation.
	Value string `yaml:"value"`

	// Find is used for "replace" and "regex_replace" transformations.
	Find string `yaml:"find,omitempty"`

	// Condition is used for "set_if" transformations.
	// Examples:
	//   - "value == 'ft_html'"
	//   - "ItemDataType != 'Book'"
	//   - "value is_empty"
	Condition string `yaml:"condition,omitempty"`

	// LookupTable is used for "lookup" transformations.
	// Example:
	//   lookup_table:
	//     "html": "ft_html"
	//     "pdf": "ft_pdf"
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.ProfilesDir == "" {
		config.ProfilesDir = "./profiles"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{profile}_{report}_{uuid}.xml"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
}

// validateMainConfig validates the main configuration and creates the
// working directories.
func validateMainConfig(config *MainConfig) error {
	if config.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must not be negative, got %d", config.MaxConcurrency)
	}
	if config.ArchiveRetentionDays < 0 {
		return fmt.Errorf("archive_retention_days must not be negative, got %d", config.ArchiveRetentionDays)
	}

	dirs := []string{
		config.InputDir,
		config.OutputDir,
		config.ProfilesDir,
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// LoadProfiles loads all report profiles from a directory.
//
// PARAMETERS:
//   - profilesDir: The path to the directory containing profile files.
//
// RETURNS:
//   - A map of profiles, keyed by profile code.
//   - An error if the directory cannot be read, any file cannot be parsed,
//     or two profiles share a code.
func LoadProfiles(profilesDir string) (map[string]*ReportProfile, error) {
	profiles := make(map[string]*ReportProfile)

	files, err := filepath.Glob(filepath.Join(profilesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(profilesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	files = append(files, ymlFiles...)
	sort.Strings(files)

	for _, file := range files {
		profile, err := LoadProfile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}

		// Use the profile code as the key.
		// If no code is specified, use the file name.
		key := profile.ProfileCode
		if key == "" {
			key = filepath.Base(file)
			profile.ProfileCode = key
		}

		if _, exists := profiles[key]; exists {
			return nil, fmt.Errorf("duplicate profile code %q in %s", key, file)
		}
		profiles[key] = profile
	}

	return profiles, nil
}

// LoadProfile loads and validates a single profile file.
func LoadProfile(filePath string) (*ReportProfile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var profile ReportProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	applyProfileDefaults(&profile)

	if err := ValidateProfile(&profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// applyProfileDefaults sets default values for profile configuration.
func applyProfileDefaults(profile *ReportProfile) {
	// CSV settings defaults.
	if profile.CSVSettings.Delimiter == "" {
		profile.CSVSettings.Delimiter = ","
	}
	if profile.CSVSettings.HeaderRows == 0 {
		profile.CSVSettings.HeaderRows = 1
	}
	if profile.CSVSettings.DataStartRow == 0 {
		profile.CSVSettings.DataStartRow = profile.CSVSettings.HeaderRows + 1
	}

	// XLSX settings defaults.
	if profile.XLSXSettings.HeaderRow == 0 {
		profile.XLSXSettings.HeaderRow = 1
	}
	if profile.XLSXSettings.DataStartRow == 0 {
		profile.XLSXSettings.DataStartRow = profile.XLSXSettings.HeaderRow + 1
	}

	if profile.ColumnMapping == nil {
		profile.ColumnMapping = make(map[string]string)
	}
	if profile.Defaults == nil {
		profile.Defaults = make(map[string]string)
	}
}

// ValidateProfile checks the fields a profile cannot work without. Errors
// name the profile and the offending field.
func ValidateProfile(profile *ReportProfile) error {
	name := profile.ProfileCode
	if name == "" {
		name = profile.ProfileName
	}

	fail := func(field, format string, args ...any) error {
		return fmt.Errorf("profile %q: %s: %s", name, field, fmt.Sprintf(format, args...))
	}

	required := []struct {
		field string
		value string
	}{
		{"report.id", profile.Report.ID},
		{"report.version", profile.Report.Version},
		{"report.name", profile.Report.Name},
		{"report.title", profile.Report.Title},
	}
	for _, r := range required {
		if r.value == "" {
			return fail(r.field, "is required")
		}
	}

	if len(profile.Vendor) == 0 {
		return fail("vendor", "is required")
	}
	if _, ok := profile.Vendor["ID"]; !ok {
		return fail("vendor.ID", "is required")
	}
	if len(profile.Customer) == 0 {
		return fail("customer", "is required")
	}
	if _, ok := profile.Customer["ID"]; !ok {
		return fail("customer.ID", "is required")
	}
	if _, ok := profile.Customer["ReportItems"]; ok {
		return fail("customer.ReportItems", "is built from the usage rows and must not be configured")
	}

	if len([]rune(profile.CSVSettings.Delimiter)) != 1 {
		return fail("csv_settings.delimiter", "must be a single character, got %q", profile.CSVSettings.Delimiter)
	}
	if len([]rune(profile.CSVSettings.Comment)) > 1 {
		return fail("csv_settings.comment", "must be a single character, got %q", profile.CSVSettings.Comment)
	}
	if profile.CSVSettings.DataStartRow <= profile.CSVSettings.HeaderRows {
		return fail("csv_settings.data_start_row", "must come after the header rows")
	}
	if profile.XLSXSettings.DataStartRow <= profile.XLSXSettings.HeaderRow {
		return fail("xlsx_settings.data_start_row", "must come after the header row")
	}

	for i, rule := range profile.TransformationRules {
		if rule.Field == "" {
			return fail(fmt.Sprintf("transformation_rules[%d].field", i), "is required")
		}
	}

	return nil
}

// MatchProfile returns the profile whose file matching patterns match the
// base name of filePath. Profiles are tried in code order so the result is
// stable.
func MatchProfile(profiles map[string]*ReportProfile, filePath string) (*ReportProfile, bool) {
	fileName := filepath.Base(filePath)

	codes := lo.Keys(profiles)
	sort.Strings(codes)

	for _, code := range codes {
		profile := profiles[code]
		for _, pattern := range profile.FileMatchingPatterns {
			if matched, _ := filepath.Match(pattern, fileName); matched {
				return profile, true
			}
		}
	}
	return nil, false
}
