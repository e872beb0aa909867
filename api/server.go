package api

import (
	"context"
	"fmt"
	"os"

	"github.com/akunpubgmatin-arch/e-voting-v1/api/controllers"
	"github.com/akunpubgmatin-arch/e-voting-v1/api/transport"
	"github.com/akunpubgmatin-arch/e-voting-v1/logging"
	"github.com/akunpubgmatin-arch/e-voting-v1/storage"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
)

type Server struct {
	config *Config
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

func (s *Server) Start() {
	r := transport.NewRouter(gin.DebugMode)

	// Create storage
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logging.Log.Errorf("failed to load AWS config: %v", err)
		panic("failed to load AWS config")
	}

	dynamoClient := dynamodb.NewFromConfig(cfg)

	periodStorage := &storage.DynamoPeriodStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNamePeriods,
	}
	candidateStorage := &storage.DynamoCandidateStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameCandidates,
	}
	userStorage := &storage.DynamoUserStorage{
		Client:    dynamoClient,
		TableName: s.config.TableNameUsers,
	}
	ballotStorage := &storage.DynamoBallotStorage{
		Client:         dynamoClient,
		TableName:      s.config.TableNameBallots,
		UsersTableName: s.config.TableNameUsers,
	}

	//Register controllers
	votingController := controllers.NewVotingController(periodStorage, candidateStorage, userStorage, ballotStorage, s.config.Secret)
	votingController.RegisterRoutes(r)
	periodsController := controllers.NewPeriodsController(periodStorage, candidateStorage, userStorage, ballotStorage, s.config.Secret)
	periodsController.RegisterRoutes(r)
	candidatesController := controllers.NewCandidatesController(candidateStorage, periodStorage, userStorage, ballotStorage, s.config.Secret)
	candidatesController.RegisterRoutes(r)
	usersController := controllers.NewUsersController(userStorage, ballotStorage, s.config.Secret)
	usersController.RegisterRoutes(r)
	authController := controllers.NewAuthController(userStorage, s.config.Secret, s.config.TokenTTL)
	authController.RegisterRoutes(r)
	statsController := controllers.NewStatsController(userStorage, candidateStorage, periodStorage, s.config.Secret)
	statsController.RegisterRoutes(r)

	//Do not run lambda helper locally
	if os.Getenv("APP_ENV") == "local" {
		startLocal(r, s.config.Port)
	} else {
		startLambda(r)
	}
}

// StartLambda sets up for AWS Lambda
func startLambda(engine *gin.Engine) {
	ginLambda := ginadapter.NewV2(engine)

	handler := func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		logging.Log.Infof("Lambda handler triggered on path: %s", req.RawPath)
		return ginLambda.ProxyWithContext(ctx, req)
	}

	logging.Log.Info("Starting lambda")
	lambda.Start(handler)
}

// StartLocal starts a normal HTTP server on the configured port
func startLocal(engine *gin.Engine, port int) {
	logging.Log.Info(fmt.Sprintf("Starting server on http://localhost:%d", port))

	if err := engine.Run(fmt.Sprintf(":%d", port)); err != nil {
		logging.Log.Fatalf("Failed to run server: %v", err)
	}
}
