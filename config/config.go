package config

import (
	"fmt"
	"github.com/kaiyuhsu/cipherlift/constants/lipgloss"
	fetchermodels "github.com/kaiyuhsu/cipherlift/repo_fetcher/models"
	"github.com/kaiyuhsu/cipherlift/security_scanner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"strings"
	"sync"
	"time"
)

// configCacheEntry holds cached configuration with metadata
type configCacheEntry struct {
	config  *Config
	modTime time.Time
}

// Global cache for configuration files
var (
	configCache = make(map[string]*configCacheEntry)
	cacheMutex  sync.RWMutex
)

// Config represents the structure of the configuration file
type Config struct {
	Version         string                          `mapstructure:"version"`
	Theme           string                          `mapstructure:"theme"`
	OutputPath      string                          `mapstructure:"output_path"`
	EnableCache     bool                            `mapstructure:"enable_cache"`
	ExploiterScript string                          `mapstructure:"exploiter_script"`
	GitHubConfig    *fetchermodels.GitHubConfig     `mapstructure:"github_config"`
	ScannerConfig   *security_scanner.ScannerConfig `mapstructure:"scanner_config"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:         "1.0.0",
	Theme:           "dracula",
	OutputPath:      "ecb_encrypt.py",
	EnableCache:     true,
	ExploiterScript: "ecb_exploiter.py",
	GitHubConfig: &fetchermodels.GitHubConfig{
		Token:       "",
		BaseURL:     "",
		SearchQuery: "cipher AES.new AES.MODE_ECB language:python",
		MaxResults:  20,
		DownloadDir: "downloads",
		Ref:         "main",
	},
	ScannerConfig: &security_scanner.ScannerConfig{
		Bin:    "bandit",
		Format: "html",
	},
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) *Config {
	var config *Config

	// Set default values using Viper
	setDefaults()

	// Automatically read environment variables
	viper.AutomaticEnv()

	// Explicitly bind environment variables to config keys
	bindEnv()

	// Check if the user provided a config file
	if cfgFile != "" {
		// Use the config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Look for configuration files in the current directory
		viper.SetConfigName("cipherlift-config") // Name of config file (without extension)
		viper.AddConfigPath(cwd)                 // Look in the current working directory

		// Support both JSON and YAML formats
		viper.SetConfigType("yaml") // Set default type
		if err := viper.ReadInConfig(); err != nil {
			// If YAML fails, try JSON
			viper.SetConfigType("json")
			if err := viper.ReadInConfig(); err != nil {
				// If both fail, we'll continue with defaults
				fmt.Println(lipgloss.Yellow.Render("No configuration file found, using defaults"))
			}
		}
	}

	// Read the explicitly specified config file (if any)
	if cfgFile != "" {
		if err := viper.ReadInConfig(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading config file: %v", err)))
			os.Exit(1)
		}
	}

	// Bind CLI flags to override config values
	bindFlags(rootCmd)

	// Unmarshal the configuration into the Config struct
	if err := viper.Unmarshal(&config); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Unable to decode into struct: %v", err)))
		os.Exit(1)
	}

	return config
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("version", DefaultConfig.Version)
	viper.SetDefault("theme", DefaultConfig.Theme)
	viper.SetDefault("output_path", DefaultConfig.OutputPath)
	viper.SetDefault("enable_cache", DefaultConfig.EnableCache)
	viper.SetDefault("exploiter_script", DefaultConfig.ExploiterScript)
	viper.SetDefault("github_config.token", DefaultConfig.GitHubConfig.Token)
	viper.SetDefault("github_config.base_url", DefaultConfig.GitHubConfig.BaseURL)
	viper.SetDefault("github_config.search_query", DefaultConfig.GitHubConfig.SearchQuery)
	viper.SetDefault("github_config.max_results", DefaultConfig.GitHubConfig.MaxResults)
	viper.SetDefault("github_config.download_dir", DefaultConfig.GitHubConfig.DownloadDir)
	viper.SetDefault("github_config.ref", DefaultConfig.GitHubConfig.Ref)
	viper.SetDefault("scanner_config.bin", DefaultConfig.ScannerConfig.Bin)
	viper.SetDefault("scanner_config.format", DefaultConfig.ScannerConfig.Format)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	_ = viper.BindEnv("theme", "THEME")
	_ = viper.BindEnv("output_path", "OUTPUT_PATH")
	_ = viper.BindEnv("enable_cache", "ENABLE_CACHE")
	_ = viper.BindEnv("exploiter_script", "EXPLOITER_SCRIPT")
	_ = viper.BindEnv("github_config.token", "GITHUB_TOKEN")
	_ = viper.BindEnv("github_config.base_url", "GITHUB_BASE_URL")
	_ = viper.BindEnv("github_config.search_query", "SEARCH_QUERY")
	_ = viper.BindEnv("github_config.max_results", "MAX_RESULTS")
	_ = viper.BindEnv("github_config.download_dir", "DOWNLOAD_DIR")
	_ = viper.BindEnv("github_config.ref", "GITHUB_REF")
	_ = viper.BindEnv("scanner_config.bin", "BANDIT_BIN")
	_ = viper.BindEnv("scanner_config.format", "BANDIT_FORMAT")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	_ = viper.BindPFlag("theme", rootCmd.PersistentFlags().Lookup("theme"))
	_ = viper.BindPFlag("output_path", rootCmd.PersistentFlags().Lookup("output_path"))
	_ = viper.BindPFlag("enable_cache", rootCmd.PersistentFlags().Lookup("enable_cache"))
	_ = viper.BindPFlag("exploiter_script", rootCmd.PersistentFlags().Lookup("exploiter_script"))
	_ = viper.BindPFlag("github_config.token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("github_config.search_query", rootCmd.PersistentFlags().Lookup("search_query"))
	_ = viper.BindPFlag("github_config.max_results", rootCmd.PersistentFlags().Lookup("max_results"))
	_ = viper.BindPFlag("github_config.download_dir", rootCmd.PersistentFlags().Lookup("download_dir"))
	_ = viper.BindPFlag("github_config.ref", rootCmd.PersistentFlags().Lookup("ref"))
	_ = viper.BindPFlag("scanner_config.bin", rootCmd.PersistentFlags().Lookup("bandit_bin"))
	_ = viper.BindPFlag("scanner_config.format", rootCmd.PersistentFlags().Lookup("bandit_format"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	// Theme configuration
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Set customize theme for syntax highlighting of oracle previews. (e.g., 'dracula', 'light', 'dark')")

	// Oracle output configuration
	rootCmd.PersistentFlags().String("output_path", DefaultConfig.OutputPath, "Path of the generated oracle file (e.g., 'ecb_encrypt.py').")

	// Cache configuration
	rootCmd.PersistentFlags().Bool("enable_cache", DefaultConfig.EnableCache, "Enable or disable project analysis caching for improved performance")

	// Exploiter configuration
	rootCmd.PersistentFlags().String("exploiter_script", DefaultConfig.ExploiterScript, "Path of the python exploiter script driven against generated oracles.")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")

	// GitHub hunt configuration
	rootCmd.PersistentFlags().String("token", DefaultConfig.GitHubConfig.Token, "The GitHub token used to authenticate code search and repository downloads.")
	rootCmd.PersistentFlags().String("search_query", DefaultConfig.GitHubConfig.SearchQuery, "The GitHub code search query used to hunt for encryption code.")
	rootCmd.PersistentFlags().Int("max_results", DefaultConfig.GitHubConfig.MaxResults, "Maximum number of repositories returned by a code search.")
	rootCmd.PersistentFlags().String("download_dir", DefaultConfig.GitHubConfig.DownloadDir, "Directory where hunted repositories are downloaded and extracted.")
	rootCmd.PersistentFlags().String("ref", DefaultConfig.GitHubConfig.Ref, "Git reference (branch, tag or commit) of the repository archive to download.")

	// Security scanner configuration
	rootCmd.PersistentFlags().String("bandit_bin", DefaultConfig.ScannerConfig.Bin, "The bandit executable used to scan downloaded repositories.")
	rootCmd.PersistentFlags().String("bandit_format", DefaultConfig.ScannerConfig.Format, "Report format produced by bandit (e.g., 'html', 'json', 'txt').")
}

// GetConfigFileType returns the type of the configuration file based on its extension
func GetConfigFileType(filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return "yaml"
	}
	return ""
}

// LoadConfigWithCache loads configuration with caching support
func LoadConfigWithCache(rootCmd *cobra.Command, cwd string) *Config {
	var configFilePath string

	// Determine config file path
	if cfgFile != "" {
		configFilePath = cfgFile
	} else {
		// Check for default config files
		yamlPath := fmt.Sprintf("%s/cipherlift-config.yaml", cwd)
		ymlPath := fmt.Sprintf("%s/cipherlift-config.yml", cwd)
		jsonPath := fmt.Sprintf("%s/cipherlift-config.json", cwd)

		if _, err := os.Stat(yamlPath); err == nil {
			configFilePath = yamlPath
		} else if _, err := os.Stat(ymlPath); err == nil {
			configFilePath = ymlPath
		} else if _, err := os.Stat(jsonPath); err == nil {
			configFilePath = jsonPath
		}
	}

	// If no config file exists, return default configuration loading
	if configFilePath == "" {
		return LoadConfigs(rootCmd, cwd)
	}

	// Check file modification time
	fileInfo, err := os.Stat(configFilePath)
	if err != nil {
		// File doesn't exist or error, fallback to regular loading
		return LoadConfigs(rootCmd, cwd)
	}

	// Check cache first
	cacheMutex.RLock()
	if cached, exists := configCache[configFilePath]; exists {
		// Check if file has been modified since cache
		if fileInfo.ModTime().Equal(cached.modTime) {
			cacheMutex.RUnlock()
			return cached.config
		}
	}
	cacheMutex.RUnlock()

	// Load configuration normally
	config := LoadConfigs(rootCmd, cwd)

	// Update cache
	cacheMutex.Lock()
	configCache[configFilePath] = &configCacheEntry{
		config:  config,
		modTime: fileInfo.ModTime(),
	}
	cacheMutex.Unlock()

	return config
}

// ClearConfigCache clears all cached configuration files
func ClearConfigCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	configCache = make(map[string]*configCacheEntry)
}

// GetConfigCacheStats returns statistics about the configuration cache
func GetConfigCacheStats() map[string]interface{} {
	cacheMutex.RLock()
	defer cacheMutex.RUnlock()

	stats := make(map[string]interface{})
	stats["cached_files"] = len(configCache)
	stats["cache_entries"] = make([]string, 0, len(configCache))

	for path := range configCache {
		stats["cache_entries"] = append(stats["cache_entries"].([]string), path)
	}

	return stats
}

// InvalidateConfigCache removes a specific config file from cache
func InvalidateConfigCache(configPath string) {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	delete(configCache, configPath)
}
