package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/Tesseract-Nexus/go-shared/secrets"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"product-schema-service/internal/models"
	"product-schema-service/internal/preview"
	"product-schema-service/internal/repository"
	"product-schema-service/internal/schema"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL string

	// NATS
	NATSURL string

	// Server
	Port               string
	Environment        string
	CORSAllowedOrigins []string
	StaffServiceURL    string

	// Store settings
	TaxEnabled       bool
	PricesIncludeTax bool
	PriceDecimals    int
	CurrencyCode     string
	PriceSuffix      string

	// Site identity
	SiteURL         string
	CompanyOrPerson string
	CompanyName     string

	// Image fallback for products without a featured image
	PlaceholderImageURL string

	// Taxonomies the schema properties are read from (empty disables)
	SchemaBrand        string
	SchemaManufacturer string
	SchemaColor        string
	SchemaPattern      string
	SchemaMaterial     string

	// Chat link previews
	PreviewShowPrice      bool
	PreviewEmptyPriceText string
	PreviewLanguage       string

	// Import limits
	MaxImportRows     int
	MaxImportFileSize int64
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	taxEnabled, _ := strconv.ParseBool(getEnv("TAX_ENABLED", "false"))
	pricesIncludeTax, _ := strconv.ParseBool(getEnv("PRICES_INCLUDE_TAX", "false"))
	priceDecimals, err := strconv.Atoi(getEnv("PRICE_DECIMALS", "2"))
	if err != nil {
		priceDecimals = 2
	}
	previewShowPrice, err := strconv.ParseBool(getEnv("PREVIEW_SHOW_PRICE", "true"))
	if err != nil {
		previewShowPrice = true
	}
	maxImportRows, _ := strconv.Atoi(getEnv("MAX_IMPORT_ROWS", "5000"))
	maxImportFileSize, _ := strconv.ParseInt(getEnv("MAX_IMPORT_FILE_SIZE", "10485760"), 10, 64)

	return &Config{
		// Database - fetch password from GCP Secret Manager if enabled
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: secrets.GetDBPassword(),
		DBName:     getEnv("DB_NAME", "products_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://redis.redis-marketplace.svc.cluster.local:6379/0"),

		// NATS
		NATSURL: getEnv("NATS_URL", ""),

		// Server
		Port:        getEnv("PORT", "8087"),
		Environment: getEnv("ENVIRONMENT", "development"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		StaffServiceURL:    getEnv("STAFF_SERVICE_URL", "http://staff-service:8080"),

		// Store settings
		TaxEnabled:       taxEnabled,
		PricesIncludeTax: pricesIncludeTax,
		PriceDecimals:    priceDecimals,
		CurrencyCode:     getEnv("CURRENCY_CODE", "USD"),
		PriceSuffix:      getEnv("PRICE_SUFFIX", ""),

		// Site identity
		SiteURL:         getEnv("SITE_URL", "http://localhost:3000"),
		CompanyOrPerson: getEnv("COMPANY_OR_PERSON", schema.SiteRepresentsCompany),
		CompanyName:     getEnv("COMPANY_NAME", ""),

		PlaceholderImageURL: getEnv("PLACEHOLDER_IMAGE_URL", ""),

		// Schema taxonomies
		SchemaBrand:        getEnv("SCHEMA_BRAND", ""),
		SchemaManufacturer: getEnv("SCHEMA_MANUFACTURER", ""),
		SchemaColor:        getEnv("SCHEMA_COLOR", ""),
		SchemaPattern:      getEnv("SCHEMA_PATTERN", ""),
		SchemaMaterial:     getEnv("SCHEMA_MATERIAL", ""),

		// Chat link previews
		PreviewShowPrice:      previewShowPrice,
		PreviewEmptyPriceText: getEnv("PREVIEW_EMPTY_PRICE_TEXT", ""),
		PreviewLanguage:       getEnv("PREVIEW_LANGUAGE", "en"),

		// Import limits
		MaxImportRows:     maxImportRows,
		MaxImportFileSize: maxImportFileSize,
	}
}

// SchemaSettings returns the store and site settings the schema engine reads.
func (c *Config) SchemaSettings() schema.Settings {
	return schema.Settings{
		SiteURL:             c.SiteURL,
		CompanyOrPerson:     c.CompanyOrPerson,
		CompanyName:         c.CompanyName,
		TaxEnabled:          c.TaxEnabled,
		PricesIncludeTax:    c.PricesIncludeTax,
		PriceDecimals:       c.PriceDecimals,
		CurrencyCode:        c.CurrencyCode,
		PlaceholderImageURL: c.PlaceholderImageURL,
		Taxonomies: schema.TaxonomyBindings{
			Brand:        c.SchemaBrand,
			Manufacturer: c.SchemaManufacturer,
			Color:        c.SchemaColor,
			Pattern:      c.SchemaPattern,
			Material:     c.SchemaMaterial,
		},
	}
}

// PreviewConfig returns the chat link preview settings.
func (c *Config) PreviewConfig() preview.Config {
	return preview.Config{
		ShowPrice:      c.PreviewShowPrice,
		EmptyPriceText: c.PreviewEmptyPriceText,
		Language:       c.PreviewLanguage,
	}
}

// SnapshotOptions returns the settings products are loaded with. Product
// pages live under {SITE_URL}/product/.
func (c *Config) SnapshotOptions() repository.SnapshotOptions {
	return repository.SnapshotOptions{
		PermalinkBase: strings.TrimRight(c.SiteURL, "/") + "/product/",
		PriceSuffix:   c.PriceSuffix,
	}
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Adds missing columns, never drops existing ones
	log.Println("Running auto-migrations...")
	if err := db.AutoMigrate(
		&models.Product{},
		&models.ProductVariation{},
		&models.Term{},
		&models.ProductTerm{},
		&models.ProductReview{},
		&models.GlobalIdentifierRecord{},
	); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "does not exist") && strings.Contains(errStr, "constraint") {
			log.Printf("Note: Migration constraint warning (safe to ignore): %v", err)
		} else {
			return nil, fmt.Errorf("failed to run auto-migrations: %w", err)
		}
	}
	log.Println("Auto-migrations completed successfully")

	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList parses a comma separated list, dropping empty entries
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
