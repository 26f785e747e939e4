package config

import "os"

// Load reads configuration from environment variables as raw strings
// Components handle validation and defaults during initialization
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         os.Getenv("SERVER_PORT"),
			Environment:  os.Getenv("SERVER_ENV"),
			ReadTimeout:  os.Getenv("SERVER_READ_TIMEOUT"),
			WriteTimeout: os.Getenv("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
			SSLMode:  os.Getenv("DB_SSLMODE"),
		},
		Worker: WorkerConfig{
			TrainInterval: os.Getenv("WORKER_TRAIN_INTERVAL"),
		},
		Logging: LoggingConfig{
			Level:       os.Getenv("LOG_LEVEL"),
			Format:      os.Getenv("LOG_FORMAT"),
			ServiceName: os.Getenv("SERVICE_NAME"),
		},
		Recommender: RecommenderConfig{
			ArtifactDir:         os.Getenv("RECOMMENDER_ARTIFACT_DIR"),
			SimilarityThreshold: os.Getenv("RECOMMENDER_SIMILARITY_THRESHOLD"),
			ColdStartThreshold:  os.Getenv("RECOMMENDER_COLDSTART_THRESHOLD"),
			ColdStartTopN:       os.Getenv("RECOMMENDER_COLDSTART_TOP_N"),
			ColdStartSampleSize: os.Getenv("RECOMMENDER_COLDSTART_SAMPLE_SIZE"),
			NeighborK:           os.Getenv("RECOMMENDER_NEIGHBOR_K"),
		},
	}
}
