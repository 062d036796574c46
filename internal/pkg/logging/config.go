package logging

// Поддерживаемые форматы вывода диагностики.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Поддерживаемые уровни диагностики.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Поддерживаемые типы вывода диагностики.
const (
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// Значения по умолчанию для Config.
const (
	DefaultLevel      = LevelInfo
	DefaultFormat     = FormatText
	DefaultOutput     = OutputStderr
	DefaultFilePath   = "/var/log/flexible-etl/diagnostics.log"
	DefaultMaxSize    = 50 // MB
	DefaultMaxBackups = 3
	DefaultMaxAge     = 7 // days
	DefaultCompress   = true
)

// DefaultConfig возвращает Config со значениями по умолчанию.
func DefaultConfig() Config {
	return Config{
		Level:      DefaultLevel,
		Format:     DefaultFormat,
		Output:     DefaultOutput,
		FilePath:   DefaultFilePath,
		MaxSize:    DefaultMaxSize,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAge,
		Compress:   DefaultCompress,
	}
}

// Config содержит настройки диагностического канала.
// Ротация диагностического файла отдана lumberjack: для служебного
// канала достаточно его timestamp-схемы backup-ов, нумерованная
// ротация движка здесь не нужна.
type Config struct {
	// Format определяет формат вывода: "json" или "text".
	// По умолчанию: "text".
	Format string `yaml:"format" env:"ETL_DIAG_FORMAT" env-default:"text"`

	// Level определяет минимальный уровень диагностики.
	// Допустимые значения: "debug", "info", "warn", "error".
	Level string `yaml:"level" env:"ETL_DIAG_LEVEL" env-default:"info"`

	// Output определяет куда писать диагностику: "stderr" или "file".
	Output string `yaml:"output" env:"ETL_DIAG_OUTPUT" env-default:"stderr"`

	// FilePath задаёт путь к файлу диагностики (при output="file").
	FilePath string `yaml:"filePath" env:"ETL_DIAG_FILE_PATH"`

	// MaxSize — максимальный размер файла диагностики в мегабайтах
	// перед ротацией lumberjack-ом.
	MaxSize int `yaml:"maxSize" env:"ETL_DIAG_MAX_SIZE" env-default:"50"`

	// MaxBackups — количество backup файлов диагностики.
	MaxBackups int `yaml:"maxBackups" env:"ETL_DIAG_MAX_BACKUPS" env-default:"3"`

	// MaxAge — максимальный возраст backup файлов в днях.
	MaxAge int `yaml:"maxAge" env:"ETL_DIAG_MAX_AGE" env-default:"7"`

	// Compress — сжимать ли backup файлы в gzip.
	Compress bool `yaml:"compress" env:"ETL_DIAG_COMPRESS" env-default:"true"`
}
