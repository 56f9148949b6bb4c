package config

// BackendConfig selects and configures the shelter source.
type BackendConfig struct {
	Source       string `yaml:"source" validate:"oneof=http sql static"`
	BaseURL      string `yaml:"baseURL" validate:"omitempty,url"`
	RoomsPath    string `yaml:"roomsPath" validate:"omitempty,startswith=/"`
	SendLocation bool   `yaml:"sendLocation"`
	TimeoutMS    int    `yaml:"timeoutMS" validate:"gte=0"`
	MaxAttempts  int    `yaml:"maxAttempts" validate:"gte=0,lte=10"`
}

// DatabaseConfig points at the SQL shelter registry.
type DatabaseConfig struct {
	Driver   string `yaml:"driver" validate:"oneof=pgx sqlite"`
	DSN      string `yaml:"dsn"`
	SeedPath string `yaml:"seedPath"`
}

// TrackingConfig configures the position source.
type TrackingConfig struct {
	HighAccuracy     bool   `yaml:"highAccuracy"`
	TrackPath        string `yaml:"trackPath"`
	ReplayIntervalMS int    `yaml:"replayIntervalMS" validate:"gte=0"`
	Loop             bool   `yaml:"loop"`
	SimulateDenied   bool   `yaml:"simulateDenied"`
}

// MapConfig holds viewport parameters.
type MapConfig struct {
	Container    string `yaml:"container"`
	InitialZoom  int    `yaml:"initialZoom" validate:"gte=0,lte=22"`
	FollowZoom   int    `yaml:"followZoom" validate:"gte=0,lte=22"`
	ReadyDelayMS int    `yaml:"readyDelayMS" validate:"gte=0"`
}

type APIConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	Backend  BackendConfig  `yaml:"backend"`
	Database DatabaseConfig `yaml:"database"`
	Tracking TrackingConfig `yaml:"tracking"`
	Map      MapConfig      `yaml:"map"`
	API      APIConfig      `yaml:"api"`
	Log      LogConfig      `yaml:"log"`
}
