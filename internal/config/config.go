// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/sales-analytics/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for sales-analytics.
type Configuration struct {
	Data    DataConfig    `mapstructure:"data" yaml:"data"`
	Report  ReportConfig  `mapstructure:"report" yaml:"report"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server,omitempty"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging,omitempty"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output,omitempty"`
}

// DataConfig locates the sales fact table and the customer dimension table.
type DataConfig struct {
	Format string `mapstructure:"format" yaml:"format"`

	// csv and xlsx sources
	SalesPath      string `mapstructure:"salesPath" yaml:"salesPath,omitempty"`
	CustomersPath  string `mapstructure:"customersPath" yaml:"customersPath,omitempty"`
	SalesSheet     string `mapstructure:"salesSheet" yaml:"salesSheet,omitempty"`
	CustomersSheet string `mapstructure:"customersSheet" yaml:"customersSheet,omitempty"`

	// sql sources
	Driver         string `mapstructure:"driver" yaml:"driver,omitempty"`
	DSN            string `mapstructure:"dsn" yaml:"dsn,omitempty"`
	SalesQuery     string `mapstructure:"salesQuery" yaml:"salesQuery,omitempty"`
	CustomersQuery string `mapstructure:"customersQuery" yaml:"customersQuery,omitempty"`
}

// ReportConfig tunes the aggregation engine.
type ReportConfig struct {
	SmallShareThreshold float64 `mapstructure:"smallShareThreshold" yaml:"smallShareThreshold" validate:"gte=0,lt=100"`
	SegmentThreshold    float64 `mapstructure:"segmentThreshold" yaml:"segmentThreshold" validate:"gt=0,lt=1"`
	TopCustomers        int     `mapstructure:"topCustomers" yaml:"topCustomers" validate:"gt=0"`
	TopProducts         int     `mapstructure:"topProducts" yaml:"topProducts" validate:"gt=0"`
}

// ServerConfig holds the HTTP transport settings.
type ServerConfig struct {
	Address            string `mapstructure:"address" yaml:"address,omitempty"`
	MaxRequestSize     string `mapstructure:"maxRequestSize" yaml:"maxRequestSize,omitempty"`
	RateLimitPerMinute int    `mapstructure:"rateLimitPerMinute" yaml:"rateLimitPerMinute,omitempty" validate:"gte=0"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv, json
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with SALES_ override
// file values, e.g. SALES_DATA_SALESPATH.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

// envKeys lists every setting so SALES_ overrides reach keys without a default.
var envKeys = []string{
	"data.format", "data.salesPath", "data.customersPath", "data.salesSheet", "data.customersSheet",
	"data.driver", "data.dsn", "data.salesQuery", "data.customersQuery",
	"report.smallShareThreshold", "report.segmentThreshold", "report.topCustomers", "report.topProducts",
	"server.address", "server.maxRequestSize", "server.rateLimitPerMinute",
	"logging.level", "logging.format", "logging.outputFile",
	"output.format",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	v.SetDefault("data.format", constants.DataFormatCSV)
	v.SetDefault("data.salesPath", "")
	v.SetDefault("data.customersPath", "")
	v.SetDefault("data.driver", "")
	v.SetDefault("data.dsn", "")
	v.SetDefault("report.smallShareThreshold", constants.DefaultSmallShareThreshold)
	v.SetDefault("report.segmentThreshold", constants.DefaultSegmentThreshold)
	v.SetDefault("report.topCustomers", constants.DefaultTopCustomers)
	v.SetDefault("report.topProducts", constants.DefaultTopProducts)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.rateLimitPerMinute", constants.DefaultRateLimitPerMinute)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}
