package config

import "github.com/joho/godotenv"

// LoadEnv loads variables from a .env file in the working directory without
// overriding variables that are already set. Callers decide whether a missing
// file (os.IsNotExist) is an error.
func LoadEnv() error {
	return godotenv.Load()
}
