package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/meilisearch/meilisearch-go"

	"anoa.com/learnhub/internal/bootstrap"
	"anoa.com/learnhub/internal/config"
	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/internal/modules/user/repository"
	"anoa.com/learnhub/internal/scheduler"
	"anoa.com/learnhub/internal/server"
	"anoa.com/learnhub/pkg/database"
	"anoa.com/learnhub/pkg/password"
	"anoa.com/learnhub/pkg/search"
	"anoa.com/learnhub/pkg/storage"
	"anoa.com/learnhub/pkg/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.DSN(), cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	if err := bootstrap.SeedAdmin(ctx, repository.NewAccountRepository(db), hasher, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}

	tokens, err := token.NewCodec(cfg.JWTSecret, cfg.JWTTTL,
		token.WithIssuer(cfg.JWTIssuer),
		token.WithRoles(entity.RoleNames()...),
	)
	if err != nil {
		log.Fatalf("failed to initialize token codec: %v", err)
	}

	redisClient := database.ConnectRedis(ctx, cfg.RedisURL)

	var courseIndex search.CourseIndex = search.Noop{}
	if host := meiliHost(cfg.MeiliSearchHost); host != "" {
		courseIndex = search.NewMeiliCourseIndex(meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey)))
	} else {
		log.Println("MEILISEARCH_HOST not set, course search disabled")
	}

	var assets storage.AssetStorage
	if cfg.CloudinaryURL != "" {
		assets, err = storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryCloudName, cfg.CloudinaryUploadFolder)
		if err != nil {
			log.Fatalf("failed to initialize cloudinary storage: %v", err)
		}
	} else {
		log.Println("CLOUDINARY_URL not set, uploads disabled")
	}

	jobs := scheduler.New(5 * time.Minute)

	srv := server.NewServer(cfg, server.Dependencies{
		DB:        db,
		Redis:     redisClient,
		Search:    courseIndex,
		Storage:   assets,
		Tokens:    tokens,
		Hasher:    hasher,
		Scheduler: jobs,
	})

	jobs.Start()

	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("server exited with error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	jobs.Stop()
	if redisClient != nil {
		_ = redisClient.Close()
	}
}

// meiliHost accepts a bare hostname as well as a full URL.
func meiliHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if !strings.HasPrefix(host, "http") {
		return "http://" + host + ":7700"
	}
	return host
}
