// Command seed fills the database with demo marketplace data.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"farmconnect/internal/config"
	"farmconnect/internal/database"
	"farmconnect/internal/middleware"
	"farmconnect/internal/repository"
	"farmconnect/internal/seed"
	"farmconnect/internal/service"
)

func main() {
	farmers := flag.Int("farmers", 10, "Number of farmer profiles to create")
	sellers := flag.Int("sellers", 5, "Number of seller profiles to create")
	buyers := flag.Int("buyers", 20, "Number of buyer profiles to create")
	posts := flag.Int("posts", 4, "Listings per farmer and seller")
	reviews := flag.Int("reviews", 40, "Number of reviews to create")
	catalogPath := flag.String("catalog", "", "Optional category catalog YAML (defaults to the built-in one)")
	randSeed := flag.Int64("seed", 0, "Random seed; 0 picks one")
	shouldClean := flag.Bool("clean", false, "Drop marketplace collections before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	middleware.InitLogger(cfg.Env, cfg.LogLevel)

	catalog := seed.DefaultCatalog()
	if *catalogPath != "" {
		raw, err := os.ReadFile(*catalogPath)
		if err != nil {
			log.Fatalf("Failed to read catalog: %v", err)
		}
		if catalog, err = seed.ParseCatalog(raw); err != nil {
			log.Fatalf("Invalid catalog: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	mgr := database.NewManager(database.OptionsFromConfig(cfg))
	defer func() { _ = mgr.Shutdown(context.Background()) }()

	db, err := mgr.Database(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *shouldClean {
		for name := range database.Indexes() {
			if err := db.Collection(name).Drop(ctx); err != nil {
				log.Fatalf("❌ Cleanup of %s failed: %v", name, err)
			}
		}
		if err := database.EnsureIndexes(ctx, db); err != nil {
			log.Fatalf("❌ Recreating indexes failed: %v", err)
		}
	}

	profileRepo := repository.NewProfileRepository(mgr)
	farmProfileRepo := repository.NewFarmProfileRepository(mgr)
	storeProfileRepo := repository.NewStoreProfileRepository(mgr)

	s := seed.NewSeeder(
		service.NewProfileService(profileRepo, farmProfileRepo, storeProfileRepo, nil),
		service.NewPostService(repository.NewFarmPostRepository(mgr), repository.NewStorePostRepository(mgr),
			profileRepo, farmProfileRepo, storeProfileRepo),
		service.NewReviewService(repository.NewReviewRepository(mgr), profileRepo),
		catalog,
		*randSeed,
	)

	res, err := s.Run(ctx, seed.Options{
		Farmers:      *farmers,
		Sellers:      *sellers,
		Buyers:       *buyers,
		PostsPerUser: *posts,
		Reviews:      *reviews,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Created %d profiles, %d farm posts, %d store posts and %d reviews",
		res.Profiles, res.FarmPosts, res.StorePosts, res.Reviews)
}
