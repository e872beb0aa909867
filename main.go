// @title School E-Voting API
// @version 1.0
// @description Backend API for OSIS and MPK student council elections

// @securityDefinitions.apikey AdminToken
// @in header
// @name Authorization
package main

import (
	_ "github.com/akunpubgmatin-arch/e-voting-v1/docs"

	"github.com/akunpubgmatin-arch/e-voting-v1/api"
	"github.com/akunpubgmatin-arch/e-voting-v1/logging"
	"github.com/spf13/viper"
)

func main() {
	logging.BoostrapLogger()

	// Load env
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Errorf("Failed to read config file: %v", err)
		panic("Failed to read config file: " + err.Error())
	}

	// Read config
	config := api.ReadConfig()

	// Start the service (inside the lambda)
	service := api.NewServer(config)
	service.Start()
}
