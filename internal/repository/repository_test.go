package repository

import (
	linkPkg "github.com/reelrec/movies-backend/internal/link"
	moviePkg "github.com/reelrec/movies-backend/internal/movie"
	profilePkg "github.com/reelrec/movies-backend/internal/profile"
	ratingPkg "github.com/reelrec/movies-backend/internal/rating"
)

// Compile-time checks that every GORM repository satisfies its domain
// interface, including the slice element types of the finder methods.
var (
	_ moviePkg.Repository   = (*gormMovieRepository)(nil)
	_ ratingPkg.Repository  = (*gormRatingRepository)(nil)
	_ profilePkg.Repository = (*gormProfileRepository)(nil)
	_ linkPkg.Repository    = (*gormLinkRepository)(nil)
)
