package config

import "github.com/joho/godotenv"

type AppConfig struct {
	Server ServerConfig
	Store  StoreConfig
	Floor  FloorConfig
	Log    LogConfig
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding the ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	storeCfg, err := LoadStore()
	if err != nil {
		return AppConfig{}, err
	}
	floorCfg, err := LoadFloor()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Store:  storeCfg,
		Floor:  floorCfg,
		Log:    logCfg,
	}, nil
}
