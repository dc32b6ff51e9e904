package types

import "time"

// CacheConfig controls the working tree used for intermediate OCR artifacts.
type CacheConfig struct {
	// Root is the cache directory holding per-document fragment
	// subdirectories and index files (default "./cache").
	Root string `json:"root" yaml:"root" mapstructure:"root"`

	// DeleteOnSuccess removes the document's cache entries after a
	// successful merge (default true).
	DeleteOnSuccess bool `json:"delete_on_success" yaml:"delete_on_success" mapstructure:"delete_on_success"`
}

// MergeConfig holds the content-removal switches applied to each fragment.
type MergeConfig struct {
	// NoImage strips Markdown image embeds (default true).
	NoImage bool `json:"no_image" yaml:"no_image" mapstructure:"no_image"`

	// NoTable strips HTML table blocks (default false).
	NoTable bool `json:"no_table" yaml:"no_table" mapstructure:"no_table"`
}

// OCRBackend identifies the page recognizer.
type OCRBackend string

const (
	BackendDots      OCRBackend = "dots"
	BackendTesseract OCRBackend = "tesseract"
)

// OCRConfig holds settings for the OCR parse stage.
type OCRConfig struct {
	// Backend selects the recognizer: dots (remote inference) or tesseract.
	Backend OCRBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// BaseURL is the OpenAI-compatible endpoint of the inference service.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// APIKey authenticates against the inference service.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Model is the served model name (default "dots.ocr").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// PromptMode is passed through to the parser (default "prompt_layout_all_en").
	PromptMode string `json:"prompt_mode" yaml:"prompt_mode" mapstructure:"prompt_mode"`

	// DPI is the PDF rasterization resolution (default 200).
	DPI int `json:"dpi" yaml:"dpi" mapstructure:"dpi"`

	// MaxAttempts bounds inference retries (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// RequestsPerSecond throttles inference calls; zero disables throttling.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// Timeout is the per-request HTTP timeout (default 5m).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// RasterizerImage is the container image providing pdftoppm.
	RasterizerImage string `json:"rasterizer_image" yaml:"rasterizer_image" mapstructure:"rasterizer_image"`

	// Languages is passed to tesseract (default ["eng"]).
	Languages []string `json:"languages,omitempty" yaml:"languages,omitempty" mapstructure:"languages"`
}

// OfficeBackend selects the office-document converter.
type OfficeBackend string

const (
	OfficeMarkitdown OfficeBackend = "markitdown"
	OfficeNative     OfficeBackend = "native"
)

// OfficeConfig holds settings for the office-document converter.
type OfficeConfig struct {
	// Backend is markitdown (container) or native (excelize for spreadsheets,
	// markitdown for the rest).
	Backend OfficeBackend `json:"backend" yaml:"backend" mapstructure:"backend"`
}

// ContainerConfig selects the runtime for containerized tools.
type ContainerConfig struct {
	// Runtime is "docker", "podman", or empty to detect (docker first).
	Runtime string `json:"runtime,omitempty" yaml:"runtime,omitempty" mapstructure:"runtime"`
}

// S3Config holds settings for uploading results to object storage.
type S3Config struct {
	Bucket    string `json:"bucket" yaml:"bucket" mapstructure:"bucket"`
	Prefix    string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
	Region    string `json:"region" yaml:"region" mapstructure:"region"`
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`
	AccessKey string `json:"-" yaml:"-" mapstructure:"access_key"`
	SecretKey string `json:"-" yaml:"-" mapstructure:"secret_key"`
}

// DeliveryConfig controls where finished Markdown is placed.
type DeliveryConfig struct {
	// OutputDir receives results (default "./output"). Empty leaves the
	// result next to the source document.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// S3 uploads results when Bucket is set.
	S3 S3Config `json:"s3" yaml:"s3" mapstructure:"s3"`
}

// StoreConfig holds settings for the job history database.
type StoreConfig struct {
	// Path is the SQLite database file (default "./docmark.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ServerConfig holds settings for the upload API.
type ServerConfig struct {
	Addr        string `json:"addr" yaml:"addr" mapstructure:"addr"`
	InputDir    string `json:"input_dir" yaml:"input_dir" mapstructure:"input_dir"`
	MaxUploadMB int64  `json:"max_upload_mb" yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// WatchConfig holds settings for the inbox watcher.
type WatchConfig struct {
	// Settle is how long a file must stay quiet before it is processed.
	Settle time.Duration `json:"settle" yaml:"settle" mapstructure:"settle"`
}

// Config groups all settings for docmark.
type Config struct {
	Cache     CacheConfig     `json:"cache" yaml:"cache" mapstructure:"cache"`
	Merge     MergeConfig     `json:"merge" yaml:"merge" mapstructure:"merge"`
	OCR       OCRConfig       `json:"ocr" yaml:"ocr" mapstructure:"ocr"`
	Office    OfficeConfig    `json:"office" yaml:"office" mapstructure:"office"`
	Container ContainerConfig `json:"container" yaml:"container" mapstructure:"container"`
	Delivery  DeliveryConfig  `json:"delivery" yaml:"delivery" mapstructure:"delivery"`
	Store     StoreConfig     `json:"store" yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `json:"server" yaml:"server" mapstructure:"server"`
	Watch     WatchConfig     `json:"watch" yaml:"watch" mapstructure:"watch"`
}

// DefaultConfig returns the settings docmark uses when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{Root: "./cache", DeleteOnSuccess: true},
		Merge: MergeConfig{NoImage: true, NoTable: false},
		OCR: OCRConfig{
			Backend:         BackendDots,
			Model:           "dots.ocr",
			PromptMode:      "prompt_layout_all_en",
			DPI:             200,
			MaxAttempts:     3,
			Timeout:         5 * time.Minute,
			RasterizerImage: "poppler:latest",
			Languages:       []string{"eng"},
		},
		Office:   OfficeConfig{Backend: OfficeNative},
		Delivery: DeliveryConfig{OutputDir: "./output"},
		Store:    StoreConfig{Path: "./docmark.db"},
		Server:   ServerConfig{Addr: ":8080", InputDir: "./input", MaxUploadMB: 50},
		Watch:    WatchConfig{Settle: 2 * time.Second},
	}
}
