// Package config provides functionality for managing configuration options
// for the application using command-line flags, an optional config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address" yaml:"address"`

	// UsersFile is the path of the JSON file holding the user collection.
	UsersFile string `json:"users_file" yaml:"users_file"`

	// DatabaseDSN selects the PostgreSQL backend instead of the file when set.
	DatabaseDSN string `json:"database_dsn" yaml:"database_dsn"`

	// LogLevel is the minimum zap level that is logged.
	LogLevel string `json:"log_level" yaml:"log_level"`

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `json:"tls_cert" yaml:"tls_cert"`
	TLSKey  string `json:"tls_key" yaml:"tls_key"`

	// Config is the path to the Config file.
	Config string `json:"-" yaml:"-"`
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values and exits the process on invalid input.
func Parse() *Options {
	options, err := ParseArgs(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("error while parsing configuration: %v", err)
	}
	return options
}

// ParseArgs builds Options from args, then the config file, then the
// environment looked up through getenv, each layer overriding the previous.
// A config file that does not exist is skipped.
func ParseArgs(args []string, getenv func(string) string) (*Options, error) {
	options := &Options{}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", ":3000", "run on ip:port server")
	fs.StringVar(&options.UsersFile, "f", "users.json", "path to users file")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.LogLevel, "l", "info", "log level")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to TLS private key")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Override flags with environment variables if set
	if configPath := getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if err := loadFile(options.Config, options); err != nil {
			return nil, err
		}
	}

	if serverAddress := getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if usersFile := getenv("USERS_FILE"); usersFile != "" {
		options.UsersFile = usersFile
	}
	if dsn := getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if level := getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}
	if cert := getenv("TLS_CERT"); cert != "" {
		options.TLSCert = cert
	}
	if key := getenv("TLS_KEY"); key != "" {
		options.TLSKey = key
	}

	if (options.TLSCert == "") != (options.TLSKey == "") {
		return nil, errors.New("tls-cert and tls-key must be set together")
	}

	return options, nil
}

// loadFile merges the config file at path into options.
// Files ending in .yaml or .yml are YAML, everything else is JSON.
func loadFile(path string, options *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error while reading config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, options)
	default:
		err = json.Unmarshal(data, options)
	}
	if err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}
