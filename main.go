package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rpupo63/blog-backend/api"
	"github.com/rpupo63/blog-backend/config"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/logging"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	log.Logger = logging.New(c)

	ctx := context.Background()
	if path := config.GetString(c, "SSM_PARAMETER_PATH", ""); path != "" {
		if err := loadSSM(ctx, c, path); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Error loading SSM parameters")
		}
		// parameters may have changed the log settings
		log.Logger = logging.New(c)
	}

	db, err := database.Open(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	if config.GetBool(c, "AUTO_MIGRATE", true) {
		if err := models.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Error migrating database")
		}
	}

	currentDB := database.New(db)

	if len(os.Args) > 1 && os.Args[1] == "createsuperuser" {
		if err := createSuperuser(ctx, c, currentDB); err != nil {
			log.Fatal().Err(err).Msg("Error creating superuser")
		}
		return
	}

	deps, cleanup, err := buildDependencies(ctx, c, currentDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing dependencies")
	}
	defer cleanup()

	// one slot per sender so neither blocks after shutdown starts
	errChannel := make(chan error, 2)

	server, err := api.NewServer(c, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
	closeDB(db)
}

func loadSSM(ctx context.Context, c map[string]string, path string) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.GetString(c, "AWS_REGION", "us-east-1")))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	n, err := config.LoadSSMParameters(ctx, ssm.NewFromConfig(awsCfg), path, c)
	if err != nil {
		return err
	}
	log.Info().Int("parameters", n).Str("path", path).Msg("Loaded SSM parameters")
	return nil
}

// buildDependencies wires token signing, revocation storage and image storage.
// cleanup releases whatever was opened.
func buildDependencies(ctx context.Context, c map[string]string, db database.Database) (api.Dependencies, func(), error) {
	cleanup := func() {}

	accessTTL := time.Duration(config.GetInt(c, "ACCESS_TOKEN_TTL_MINUTES", 5)) * time.Minute
	refreshTTL := time.Duration(config.GetInt(c, "REFRESH_TOKEN_TTL_HOURS", 24)) * time.Hour
	tokens, err := services.NewTokenIssuer(config.GetString(c, "JWT_SECRET", ""), accessTTL, refreshTTL)
	if err != nil {
		return api.Dependencies{}, cleanup, fmt.Errorf("build token issuer: %w", err)
	}

	var blacklist services.TokenBlacklist
	if addr := config.GetString(c, "REDIS_ADDR", ""); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.GetString(c, "REDIS_PASSWORD", ""),
			DB:       config.GetInt(c, "REDIS_DB", 0),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return api.Dependencies{}, cleanup, fmt.Errorf("connect to redis: %w", err)
		}
		cleanup = func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing redis client")
			}
		}
		blacklist = services.NewRedisBlacklist(client)
		log.Info().Str("addr", addr).Msg("Token blacklist backed by redis")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, revoked tokens are kept in memory")
		blacklist = services.NewMemoryBlacklist()
	}

	images, err := services.NewImageStore(ctx, c)
	if err != nil {
		cleanup()
		return api.Dependencies{}, func() {}, err
	}

	return api.Dependencies{
		Database:  db,
		Tokens:    tokens,
		Blacklist: blacklist,
		Images:    images,
	}, cleanup, nil
}

// createSuperuser creates a privileged account from SUPERUSER_* settings.
func createSuperuser(ctx context.Context, c map[string]string, db database.Database) error {
	user, err := services.CreateSuperuser(ctx, db.UserRepo(),
		config.GetString(c, "SUPERUSER_EMAIL", ""),
		strings.TrimSpace(config.GetString(c, "SUPERUSER_USERNAME", "")),
		config.GetString(c, "SUPERUSER_PASSWORD", ""),
	)
	if err != nil {
		return err
	}
	log.Info().Uint("userID", user.ID).Str("email", user.Email).Msg("Superuser created")
	return nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database")
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
