package main

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain reads optional test settings from .env.test. The developer .env
// is not loaded so a real provider key never reaches these tests.
func TestMain(m *testing.M) {
	if err := godotenv.Load(".env.test"); err != nil && !os.IsNotExist(err) {
		panic(err)
	}
	os.Exit(m.Run())
}
