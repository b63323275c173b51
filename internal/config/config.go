package config

import "os"

// Config holds service-level settings, all env-driven.
type Config struct {
	MongoURI   string
	MongoDB    string
	RedisAddr  string
	HTTPPort   string
	SheetID    string
	SheetRange string
	SheetToken string
	SheetsURL  string
}

func Load() *Config {
	return &Config{
		MongoURI:   getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:    getEnvOrDefault("MONGO_DB", "roadreport"),
		RedisAddr:  getEnvOrDefault("REDIS_URI", "localhost:6379"),
		HTTPPort:   getEnvOrDefault("PORT", "8080"),
		SheetID:    os.Getenv("SHEETS_SPREADSHEET_ID"),
		SheetRange: getEnvOrDefault("SHEETS_RANGE", "Safety_Reports!A1"),
		SheetToken: os.Getenv("SHEETS_ACCESS_TOKEN"),
		SheetsURL:  getEnvOrDefault("SHEETS_BASE_URL", "https://sheets.googleapis.com/v4/spreadsheets"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
