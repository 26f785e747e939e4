package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/reelrec/movies-backend/config"
	"github.com/reelrec/movies-backend/internal/link"
	"github.com/reelrec/movies-backend/internal/movie"
	"github.com/reelrec/movies-backend/internal/profile"
	"github.com/reelrec/movies-backend/internal/rating"
	"github.com/reelrec/movies-backend/internal/repository"
	"github.com/reelrec/movies-backend/pkg/database"
	"github.com/reelrec/movies-backend/pkg/logger"
)

// seed imports a MovieLens-style dataset (movies.csv, ratings.csv,
// links.csv) into the database and rebuilds the derived user profiles.
func main() {
	moviesPath := flag.String("movies", "movies.csv", "path to the movies CSV file")
	ratingsPath := flag.String("ratings", "ratings.csv", "path to the ratings CSV file")
	linksPath := flag.String("links", "", "optional path to the links CSV file")
	flag.Parse()

	cfg := config.Load()

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	appLogger.Info("Starting dataset import")

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database: " + err.Error())
	}

	if err := db.AutoMigrate(&movie.Movie{}, &rating.Rating{}, &profile.UserProfile{}, &link.Link{}); err != nil {
		appLogger.Fatal("Failed to migrate database: " + err.Error())
	}

	movieRepo := repository.NewGORMMovieRepository(db, appLogger)
	ratingRepo := repository.NewGORMRatingRepository(db, appLogger)
	profileRepo := repository.NewGORMProfileRepository(db, appLogger)
	linkRepo := repository.NewGORMLinkRepository(db, appLogger)

	profileService := profile.NewService(profileRepo, appLogger)
	ratingService := rating.NewService(ratingRepo, profileService, appLogger)

	movies, err := readMovies(*moviesPath)
	if err != nil {
		appLogger.Fatal("Failed to read movies: " + err.Error())
	}
	if err := movieRepo.CreateBatch(movies); err != nil {
		appLogger.Fatal("Failed to import movies: " + err.Error())
	}
	appLogger.Info("Imported " + strconv.Itoa(len(movies)) + " movies")

	ratings, err := readRatings(*ratingsPath)
	if err != nil {
		appLogger.Fatal("Failed to read ratings: " + err.Error())
	}

	// Merging through the service deduplicates repeat (user, movie)
	// events and rebuilds the user profiles in one pass
	count, err := ratingService.MergeNewRatings(ratings)
	if err != nil {
		appLogger.Fatal("Failed to import ratings: " + err.Error())
	}
	appLogger.Info("Imported " + strconv.Itoa(count) + " ratings from " + strconv.Itoa(len(ratings)) + " events")

	if *linksPath != "" {
		links, err := readLinks(*linksPath)
		if err != nil {
			appLogger.Fatal("Failed to read links: " + err.Error())
		}
		if err := linkRepo.CreateBatch(links); err != nil {
			appLogger.Fatal("Failed to import links: " + err.Error())
		}
		appLogger.Info("Imported " + strconv.Itoa(len(links)) + " links")
	}

	appLogger.Info("Dataset import complete")
}

// openCSV opens a CSV file and skips its header row
func openCSV(path string) (*csv.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	reader := csv.NewReader(f)
	if _, err := reader.Read(); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	return reader, f, nil
}

func readMovies(path string) ([]movie.Movie, error) {
	reader, f, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var movies []movie.Movie
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("malformed movie row: %v", record)
		}

		movieID, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid movie id %q: %w", record[0], err)
		}

		movies = append(movies, movie.Movie{
			MovieID: movieID,
			Title:   record[1],
			Genres:  record[2],
		})
	}
	return movies, nil
}

func readRatings(path string) ([]rating.Rating, error) {
	reader, f, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ratings []rating.Rating
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 4 {
			return nil, fmt.Errorf("malformed rating row: %v", record)
		}

		userID, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q: %w", record[0], err)
		}
		movieID, err := strconv.ParseInt(record[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid movie id %q: %w", record[1], err)
		}
		score, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rating %q: %w", record[2], err)
		}
		timestamp, err := strconv.ParseInt(record[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", record[3], err)
		}

		ratings = append(ratings, rating.Rating{
			UserID:    userID,
			MovieID:   movieID,
			Rating:    score,
			Timestamp: timestamp,
		})
	}
	return ratings, nil
}

func readLinks(path string) ([]link.Link, error) {
	reader, f, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var links []link.Link
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("malformed link row: %v", record)
		}

		movieID, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid movie id %q: %w", record[0], err)
		}

		entry := link.Link{MovieID: movieID, ImdbID: record[1]}
		if record[2] != "" {
			tmdbID, err := strconv.ParseInt(record[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid tmdb id %q: %w", record[2], err)
			}
			entry.TmdbID = tmdbID
		}
		links = append(links, entry)
	}
	return links, nil
}
