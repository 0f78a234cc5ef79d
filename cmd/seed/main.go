// Package main provides a tool to seed the catalog with sample titles,
// episodes, and genres, and to mint an API key for local development.
//
// Usage:
//
//	DATABASE_PATH=./hydra.db go run ./cmd/seed
//	go run ./cmd/seed --db-path ./hydra.db --locale en
//
// The generated API key token is printed once; store it, the server
// never reads it back out.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hydrahub/hydra-server/internal/domain"
	"github.com/hydrahub/hydra-server/internal/service"
	"github.com/hydrahub/hydra-server/internal/store/sqlite"
	"github.com/hydrahub/hydra-server/internal/validation"
)

var (
	dbPath = flag.String("db-path", "", "Path to the catalog SQLite database (default: $DATABASE_PATH or ./hydra.db)")
	locale = flag.String("locale", "en", "Locale for the seeded titles and the API key scope")
)

func main() {
	flag.Parse()

	path := *dbPath
	if path == "" {
		path = os.Getenv("DATABASE_PATH")
	}
	if path == "" {
		path = "hydra.db"
	}

	fmt.Printf("Opening catalog database at: %s\n", path)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	db, err := sqlite.Open(path, logger)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer db.Close()

	ingest := service.NewIngestService(db, validation.New(), logger)
	ctx := context.Background()

	// Genres
	genreIDs := make(map[string]string)
	for _, g := range []service.GenreInput{
		{Name: "Action", Slug: "action"},
		{Name: "Fantasy", Slug: "fantasy"},
		{Name: "Romance", Slug: "romance"},
		{Name: "Thriller", Slug: "thriller"},
	} {
		genre, err := ingest.CreateGenre(ctx, g)
		if err != nil {
			log.Fatalf("Failed to create genre %s: %v", g.Slug, err)
		}
		genreIDs[g.Slug] = genre.ID
		fmt.Printf("  genre %-10s %s\n", genre.Slug, genre.ID)
	}

	// Image serials with a couple of episodes each
	imageTitles := []service.TitleInput{
		{
			Name:             "Dragon Quest",
			Slug:             "dragon-quest",
			ShortDescription: "A knight hunts the last dragon.",
			Description:      "A disgraced knight crosses the burned provinces hunting the last dragon, and finds the court that sent him wanted it alive.",
			Type:             "SERIAL_IMAGE",
			Locale:           *locale,
			ThumbnailImage:   "thumbs/dragon-quest.webp",
			CoverImage:       "covers/dragon-quest.webp",
			GenreIDs:         []string{genreIDs["action"], genreIDs["fantasy"]},
		},
		{
			Name:             "Kingdom of Ash",
			Slug:             "kingdom-of-ash",
			ShortDescription: "A capital built on a sleeping dragon.",
			Description:      "The capital's foundations shift every winter. Only the royal archivist knows why, and she is done keeping the secret.",
			Type:             "SERIAL_IMAGE",
			Locale:           *locale,
			ThumbnailImage:   "thumbs/kingdom-of-ash.webp",
			CoverImage:       "covers/kingdom-of-ash.webp",
			GenreIDs:         []string{genreIDs["fantasy"]},
		},
		{
			Name:             "Midnight Courier",
			Slug:             "midnight-courier",
			ShortDescription: "Deliveries nobody should sign for.",
			Description:      "A bicycle courier takes the night shift and learns which packages in this city are never opened by the living.",
			Type:             "SERIAL_IMAGE",
			Locale:           *locale,
			ThumbnailImage:   "thumbs/midnight-courier.webp",
			CoverImage:       "covers/midnight-courier.webp",
			GenreIDs:         []string{genreIDs["thriller"]},
		},
	}

	for _, input := range imageTitles {
		title, err := ingest.CreateTitle(ctx, input)
		if err != nil {
			log.Fatalf("Failed to create title %s: %v", input.Slug, err)
		}
		fmt.Printf("  title %-18s %s\n", title.Slug, title.ID)

		for no := 1; no <= 3; no++ {
			_, err := ingest.CreateEpisode(ctx, service.EpisodeInput{
				TitleID:   title.ID,
				TitleType: domain.TypeSerialImage,
				Name:      fmt.Sprintf("Episode %d", no),
				No:        no,
				Images: []string{
					fmt.Sprintf("pages/%s/%03d/001.webp", title.Slug, no),
					fmt.Sprintf("pages/%s/%03d/002.webp", title.Slug, no),
				},
			})
			if err != nil {
				log.Fatalf("Failed to create episode %d of %s: %v", no, title.Slug, err)
			}
		}
	}

	// One text serial so both key scopes have something to serve
	textTitle, err := ingest.CreateTitle(ctx, service.TitleInput{
		Name:             "Letters from the Deep",
		Slug:             "letters-from-the-deep",
		ShortDescription: "Found correspondence from a drowned city.",
		Description:      "Recovered letters, published one per week, from a city that the sea took a century ago.",
		Type:             "SERIAL_TEXT",
		Locale:           *locale,
		GenreIDs:         []string{genreIDs["romance"]},
	})
	if err != nil {
		log.Fatalf("Failed to create title: %v", err)
	}
	for no := 1; no <= 2; no++ {
		_, err := ingest.CreateEpisode(ctx, service.EpisodeInput{
			TitleID:   textTitle.ID,
			TitleType: domain.TypeSerialText,
			Name:      fmt.Sprintf("Letter %d", no),
			No:        no,
			Content:   fmt.Sprintf("My dearest, this is letter %d of those that survived the water.", no),
		})
		if err != nil {
			log.Fatalf("Failed to create episode %d: %v", no, err)
		}
	}

	// API keys, one per serial format
	for _, keyType := range []string{"SERIAL_IMAGE", "SERIAL_TEXT"} {
		token, err := ingest.CreateAPIKey(ctx, service.APIKeyInput{
			Type:   keyType,
			Locale: *locale,
		})
		if err != nil {
			log.Fatalf("Failed to create API key: %v", err)
		}
		fmt.Printf("\nAPI key (%s, %s): %s\n", keyType, *locale, token)
	}

	fmt.Println("\nSeed complete.")
}
