package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is wrapped by every validation failure returned from Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete configuration for an nlmpush run.
type Config struct {
	// Browser engine and profile
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Named durations for every delay and bounded poll
	Timeouts Timeouts `yaml:"timeouts" json:"timeouts"`

	// CSS selectors for the destination and source pages
	Selectors Selectors `yaml:"selectors" json:"selectors"`

	// Localized phrase lists used for text matching
	Texts Texts `yaml:"texts" json:"texts"`

	// Batch report output
	Batch BatchConfig `yaml:"batch" json:"batch"`

	// Copy the URL to the clipboard when automation fails for a single add
	ClipboardFallback bool `yaml:"clipboard_fallback" json:"clipboard_fallback"`

	// HTTP message endpoint
	Server ServerConfig `yaml:"server" json:"server"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// Engine selects the CDP driver used to control Chromium.
type Engine string

const (
	// EnginePlaywright drives the browser through playwright-go
	EnginePlaywright Engine = "playwright"
	// EngineRod drives the browser through go-rod
	EngineRod Engine = "rod"
)

// BrowserConfig configures the controlled browser.
type BrowserConfig struct {
	Engine      Engine        `yaml:"engine" json:"engine"`
	Headless    bool          `yaml:"headless" json:"headless"`
	ProfileDir  string        `yaml:"profile_dir" json:"profile_dir"` // Persistent profile so the NotebookLM login survives runs
	NotebookURL string        `yaml:"notebook_url" json:"notebook_url"`
	Width       int           `yaml:"width" json:"width"`
	Height      int           `yaml:"height" json:"height"`
	IdleTimeout time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	MaxTabs     int           `yaml:"max_tabs" json:"max_tabs"`
}

// Timeouts holds every named delay and poll budget.
type Timeouts struct {
	AutoAddMax         time.Duration `yaml:"auto_add_max" json:"auto_add_max"` // Hard ceiling on one ADD_SOURCE
	PollInterval       time.Duration `yaml:"poll_interval" json:"poll_interval"`
	PollFast           time.Duration `yaml:"poll_fast" json:"poll_fast"`
	PollMed            time.Duration `yaml:"poll_med" json:"poll_med"`
	UIClickDelay       time.Duration `yaml:"ui_click_delay" json:"ui_click_delay"`
	UIAnimationShort   time.Duration `yaml:"ui_animation_short" json:"ui_animation_short"`
	UIAnimationMed     time.Duration `yaml:"ui_animation_med" json:"ui_animation_med"`
	UIAnimationLong    time.Duration `yaml:"ui_animation_long" json:"ui_animation_long"`
	UIInputDebounce    time.Duration `yaml:"ui_input_debounce" json:"ui_input_debounce"`
	DialogWait         time.Duration `yaml:"dialog_wait" json:"dialog_wait"`
	ElementWait        time.Duration `yaml:"element_wait" json:"element_wait"`
	VerifyPollMax      time.Duration `yaml:"verify_poll_max" json:"verify_poll_max"`
	RedirectWait       time.Duration `yaml:"redirect_wait" json:"redirect_wait"`
	CreateNotebookWait time.Duration `yaml:"create_notebook_wait" json:"create_notebook_wait"`
	BadgeDisplay       time.Duration `yaml:"badge_display" json:"badge_display"`
	BadgeDisplayLong   time.Duration `yaml:"badge_display_long" json:"badge_display_long"`
	BatchItemDelay     time.Duration `yaml:"batch_item_delay" json:"batch_item_delay"`
}

// Selectors holds the CSS selectors for every element the automation looks for.
type Selectors struct {
	AddSourceButtons []string `yaml:"add_source_buttons" json:"add_source_buttons"`
	Dialog           string   `yaml:"dialog" json:"dialog"`
	OverlayContainer string   `yaml:"overlay_container" json:"overlay_container"`
	Icons            string   `yaml:"icons" json:"icons"`
	Input            string   `yaml:"input" json:"input"`
	InputCandidates  string   `yaml:"input_candidates" json:"input_candidates"`
	LimitCounter     string   `yaml:"limit_counter" json:"limit_counter"`
	CardButtons      string   `yaml:"card_buttons" json:"card_buttons"`
	Chip             string   `yaml:"chip" json:"chip"`
	ChipLabel        string   `yaml:"chip_label" json:"chip_label"`
	Buttons          string   `yaml:"buttons" json:"buttons"`
	CloseButtons     string   `yaml:"close_buttons" json:"close_buttons"`
	Backdrop         string   `yaml:"backdrop" json:"backdrop"`
	CreateButtons    []string `yaml:"create_buttons" json:"create_buttons"`
	PlaylistLinks    []string `yaml:"playlist_links" json:"playlist_links"`
}

// Texts holds localized phrase lists. Matching is case-insensitive substring.
type Texts struct {
	AddSourceButtons []string `yaml:"add_source_buttons" json:"add_source_buttons"`
	CardKinds        []string `yaml:"card_kinds" json:"card_kinds"`
	Chips            []string `yaml:"chips" json:"chips"`
	SubmitButtons    []string `yaml:"submit_buttons" json:"submit_buttons"`
	SuccessToasts    []string `yaml:"success_toasts" json:"success_toasts"`
	ErrorDialogs     []string `yaml:"error_dialogs" json:"error_dialogs"`
	InputKeywords    []string `yaml:"input_keywords" json:"input_keywords"`
}

// BatchConfig defines batch report generation.
type BatchConfig struct {
	ReportDir string `yaml:"report_dir" json:"report_dir"`
	JSON      bool   `yaml:"json" json:"json"`
	Markdown  bool   `yaml:"markdown" json:"markdown"`
}

// ServerConfig configures the HTTP message endpoint of the serve command.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// LoggingConfig defines logging configuration.
type LoggingConfig struct {
	// Verbosity controls console output: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
}

// Validate validates the configuration and fills in a default verbosity.
func (c *Config) Validate() error {
	if c.Browser.Engine != EnginePlaywright && c.Browser.Engine != EngineRod {
		return fmt.Errorf("%w: engine %q (must be 'playwright' or 'rod')", ErrInvalid, c.Browser.Engine)
	}

	if c.Browser.NotebookURL == "" {
		return fmt.Errorf("%w: notebook_url is required", ErrInvalid)
	}

	if c.Browser.MaxTabs < 0 {
		return fmt.Errorf("%w: max_tabs cannot be negative", ErrInvalid)
	}

	for name, d := range c.Timeouts.named() {
		if d < 0 {
			return fmt.Errorf("%w: timeout %s cannot be negative", ErrInvalid, name)
		}
	}

	// Poll intervals of zero would spin
	if c.Timeouts.PollInterval == 0 || c.Timeouts.PollFast == 0 || c.Timeouts.PollMed == 0 {
		return fmt.Errorf("%w: poll intervals must be positive", ErrInvalid)
	}

	if c.Timeouts.AutoAddMax == 0 {
		return fmt.Errorf("%w: auto_add_max must be positive", ErrInvalid)
	}

	if c.Selectors.Dialog == "" || c.Selectors.Input == "" || c.Selectors.Buttons == "" {
		return fmt.Errorf("%w: dialog, input and buttons selectors are required", ErrInvalid)
	}

	if len(c.Texts.SubmitButtons) == 0 {
		return fmt.Errorf("%w: at least one submit button phrase is required", ErrInvalid)
	}

	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("%w: logging verbosity %q (must be 'quiet', 'normal', 'verbose', or 'debug')", ErrInvalid, c.Logging.Verbosity)
	}

	return nil
}

func (t Timeouts) named() map[string]time.Duration {
	return map[string]time.Duration{
		"auto_add_max":         t.AutoAddMax,
		"poll_interval":        t.PollInterval,
		"poll_fast":            t.PollFast,
		"poll_med":             t.PollMed,
		"ui_click_delay":       t.UIClickDelay,
		"ui_animation_short":   t.UIAnimationShort,
		"ui_animation_med":     t.UIAnimationMed,
		"ui_animation_long":    t.UIAnimationLong,
		"ui_input_debounce":    t.UIInputDebounce,
		"dialog_wait":          t.DialogWait,
		"element_wait":         t.ElementWait,
		"verify_poll_max":      t.VerifyPollMax,
		"redirect_wait":        t.RedirectWait,
		"create_notebook_wait": t.CreateNotebookWait,
		"badge_display":        t.BadgeDisplay,
		"badge_display_long":   t.BadgeDisplayLong,
		"batch_item_delay":     t.BatchItemDelay,
	}
}

// DefaultTimeouts returns the timings tuned against the live NotebookLM UI.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		AutoAddMax:         25 * time.Second,
		PollInterval:       200 * time.Millisecond,
		PollFast:           100 * time.Millisecond,
		PollMed:            500 * time.Millisecond,
		UIClickDelay:       50 * time.Millisecond,
		UIAnimationShort:   200 * time.Millisecond,
		UIAnimationMed:     500 * time.Millisecond,
		UIAnimationLong:    2500 * time.Millisecond,
		UIInputDebounce:    100 * time.Millisecond,
		DialogWait:         3 * time.Second,
		ElementWait:        2 * time.Second,
		VerifyPollMax:      10 * time.Second,
		RedirectWait:       15 * time.Second,
		CreateNotebookWait: 10 * time.Second,
		BadgeDisplay:       3 * time.Second,
		BadgeDisplayLong:   5 * time.Second,
		BatchItemDelay:     500 * time.Millisecond,
	}
}

// DefaultSelectors returns the selectors for the current NotebookLM and YouTube markup.
func DefaultSelectors() Selectors {
	return Selectors{
		AddSourceButtons: []string{
			"button[aria-label='Add source']",
			"button[aria-label='ソースを追加']",
		},
		Dialog:           "mat-dialog-container, [role='dialog']",
		OverlayContainer: ".cdk-overlay-container",
		Icons:            ".mat-icon, .material-icons, i",
		Input:            "input[formcontrolname='newUrl']",
		InputCandidates:  "input:not([type='hidden'])",
		LimitCounter:     ".postfix",
		CardButtons:      "button, div[role='button']",
		Chip:             "mat-chip",
		ChipLabel:        ".mat-mdc-chip-action-label",
		Buttons:          "button",
		CloseButtons:     "button[aria-label='Close'], button.close-button",
		Backdrop:         ".cdk-overlay-backdrop",
		CreateButtons: []string{
			".create-new-button",
			".create-new-action-button",
			"button[aria-label='Create new notebook']",
		},
		PlaylistLinks: []string{
			"a#video-title",
			"a#video-title-link",
			"a.yt-lockup-metadata-view-model__title",
		},
	}
}

// DefaultTexts returns the phrase lists for every UI language NotebookLM ships.
func DefaultTexts() Texts {
	return Texts{
		AddSourceButtons: []string{
			"Add source", "ソースを追加", "Ajouter une source", "Añadir fuente",
			"Aggiungi fonte", "소스 추가", "添加来源", "إضافة مصدر",
		},
		CardKinds: []string{"youtube", "website"},
		Chips:     []string{"youtube"},
		SubmitButtons: []string{
			"insert", "add", "追加", "挿入", "insérer", "ajouter", "insertar", "añadir",
			"inserisci", "aggiungi", "삽입", "추가", "插入", "添加", "إدراج", "إضافة",
		},
		SuccessToasts: []string{
			"added to notebook", "ソースを追加しました", "ajouté", "source", "añadido",
			"fuente", "aggiunto", "fonte", "추가됨", "추가되었습니다", "已添加", "来源",
			"تم", "إضافة",
		},
		ErrorDialogs: []string{
			"invalid url", "無効なurl", "can't add", "追加できません", "non valide",
			"impossible", "inválida", "no se puede", "non valido", "impossibile",
			"잘못된", "할 수 없음", "无效", "无法", "غير صالح", "تعذر",
		},
		InputKeywords: []string{"youtube", "url", "link"},
	}
}

// DefaultConfig returns a default configuration suitable for most use cases.
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Engine:      EnginePlaywright,
			Headless:    false,
			NotebookURL: "https://notebooklm.google.com/",
			Width:       1280,
			Height:      800,
			IdleTimeout: 5 * time.Minute,
			MaxTabs:     5,
		},
		Timeouts:  DefaultTimeouts(),
		Selectors: DefaultSelectors(),
		Texts:     DefaultTexts(),
		Batch: BatchConfig{
			ReportDir: ".nlmpush/reports",
			JSON:      true,
			Markdown:  true,
		},
		ClipboardFallback: true,
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}
