package api

import (
	"sync"
	"time"

	"github.com/akunpubgmatin-arch/e-voting-v1/logging"
	"github.com/spf13/viper"
)

type Config struct {
	StorageConfig
	ServerConfig
	AuthConfig
}

type StorageConfig struct {
	TableNamePeriods    string
	TableNameCandidates string
	TableNameUsers      string
	TableNameBallots    string
}

type ServerConfig struct {
	Port int
}

type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
}

var settingsOnce sync.Once

func ReadConfig() *Config {

	var conf = &Config{
		StorageConfig: StorageConfig{
			TableNamePeriods:    viper.GetString("storage.TableNamePeriods"),
			TableNameCandidates: viper.GetString("storage.TableNameCandidates"),
			TableNameUsers:      viper.GetString("storage.TableNameUsers"),
			TableNameBallots:    viper.GetString("storage.TableNameBallots"),
		},
		ServerConfig: ServerConfig{
			Port: viper.GetInt("server.port"),
		},
		AuthConfig: AuthConfig{
			Secret:   getString("auth.secret"),
			TokenTTL: time.Duration(getIntOrDefault("auth.tokenTTLHours", 8)) * time.Hour,
		},
	}

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
}

func getString(name string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Fatalf("required environment variable '%s' is missing", name)
	return ""
}

func getIntOrDefault(name string, def int) int {
	if viper.IsSet(name) {
		v := viper.GetInt(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}
