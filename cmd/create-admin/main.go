// Command create-admin seeds the first ADMIN account so the web app can be
// logged into on a fresh deployment. Safe to rerun: an existing username is
// left untouched.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/akunpubgmatin-arch/e-voting-v1/api"
	"github.com/akunpubgmatin-arch/e-voting-v1/api/models"
	"github.com/akunpubgmatin-arch/e-voting-v1/auth"
	"github.com/akunpubgmatin-arch/e-voting-v1/logging"
	"github.com/akunpubgmatin-arch/e-voting-v1/storage"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
)

func main() {
	logging.BoostrapLogger()

	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (required)")
	fullName := flag.String("name", "Administrator", "admin full name")
	flag.Parse()

	if *password == "" {
		logging.Log.Fatal("password is required, pass -password")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Fatalf("Failed to read config file: %v", err)
	}
	config := api.ReadConfig()

	ctx := context.Background()
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logging.Log.Fatalf("failed to load AWS config: %v", err)
	}

	users := &storage.DynamoUserStorage{
		Client:    dynamodb.NewFromConfig(cfg),
		TableName: config.TableNameUsers,
	}

	existing, err := users.GetByUsername(ctx, *username)
	if err != nil {
		logging.Log.Fatalf("failed to look up username %s: %v", *username, err)
	}
	if existing != nil {
		logging.Log.Infof("user %s already exists, nothing to do", *username)
		return
	}

	id, err := gonanoid.Generate(models.Alphabet, 12)
	if err != nil {
		logging.Log.Fatalf("failed to generate id: %v", err)
	}
	hash, err := auth.HashPassword(*password)
	if err != nil {
		logging.Log.Fatalf("failed to hash password: %v", err)
	}

	user := &storage.User{
		ID:        id,
		Username:  *username,
		Password:  hash,
		FullName:  *fullName,
		Role:      models.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}
	if err := users.Create(ctx, user); err != nil {
		logging.Log.Fatalf("failed to create admin user: %v", err)
	}

	logging.Log.Infof("created admin user %s (%s)", user.Username, user.ID)
}
