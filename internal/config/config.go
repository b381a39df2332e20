// Package config zbiera konfigurację portalu ze zmiennych środowiskowych.
// Plik .env jest wczytywany w cmd przez godotenv przed Load.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config to konfiguracja runtime portalu bibliotecznego
type Config struct {
	Port string

	// SlotsPerBorrower to liczba slotów rezerwacji K na czytelnika
	SlotsPerBorrower int
	// LoanPeriodDays to okres wypożyczenia doliczany do daty zatwierdzenia
	LoanPeriodDays int

	// Konfiguracja kanału push
	PushURL            string
	PushConnectTimeout time.Duration
	PushBackoffBase    time.Duration
	PushBackoffMax     time.Duration
	PushMaxRetries     int

	// AssistantFallback to statyczna odpowiedź gdy generator zawiedzie
	AssistantFallback string
}

// Load buduje konfigurację z domyślnymi wartościami
func Load() *Config {
	return &Config{
		Port:               envOrDefault("PORT", "8080"),
		SlotsPerBorrower:   envInt("SLOTS_PER_BORROWER", 3),
		LoanPeriodDays:     envInt("LOAN_PERIOD_DAYS", 3),
		PushURL:            os.Getenv("PUSH_URL"),
		PushConnectTimeout: envDuration("PUSH_CONNECT_TIMEOUT", 5*time.Second),
		PushBackoffBase:    envDuration("PUSH_BACKOFF_BASE", time.Second),
		PushBackoffMax:     envDuration("PUSH_BACKOFF_MAX", 30*time.Second),
		PushMaxRetries:     envInt("PUSH_MAX_RETRIES", 5),
		AssistantFallback:  envOrDefault("ASSISTANT_FALLBACK", "Dziękujemy za wiadomość. Personel biblioteki odpowie najszybciej jak to możliwe."),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Nieprawidłowa wartość %s=%q - używam %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Nieprawidłowa wartość %s=%q - używam %s", key, value, fallback)
		return fallback
	}
	return parsed
}
