package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lshan99q/epub-converter/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage default conversion settings",
	Long: `Manage default conversion settings.

Configuration is stored in a JSON file in your user configuration directory (~/.epub-converter/config.json).
The file is only created by 'config set'. Environment variables (EPUB_CONV_<KEY>, e.g. EPUB_CONV_DIRECTION)
override the file, and command line flags override both.

Available commands:
  list  - List all effective settings
  get   - Get a specific setting
  set   - Set a specific setting

Examples:
  epub-converter config list                     # List all settings
  epub-converter config get direction            # Get the conversion profile
  epub-converter config set direction tw2sp      # Default to Taiwan phrasing
  epub-converter config set output_prefix sc_    # Write sc_<name>.epub`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "list":
			listConfig()
		case "get":
			if len(args) < 2 {
				fmt.Println("Error: 'get' command requires a key name")
				fmt.Println("Usage: epub-converter config get <key>")
				return
			}
			getConfig(args[1])
		case "set":
			if len(args) < 3 {
				fmt.Println("Error: 'set' command requires a key and value")
				fmt.Println("Usage: epub-converter config set <key> <value>")
				return
			}
			setConfig(args[1], args[2])
		default:
			fmt.Printf("Error: Unknown config command '%s'\n", args[0])
			fmt.Println("Available commands: list, get, set")
		}
	},
}

// listConfig lists all configuration settings
func listConfig() {
	fmt.Println("⚙️  Conversion Settings")
	fmt.Println("======================")

	// Load current config
	cfg, err := config.LoadConfigWithEnvOverrides()
	if err != nil {
		fmt.Printf("❌ Error loading configuration: %v\n", err)
		return
	}

	// Show config file location
	configPath, _ := config.GetConfigFilePath()
	fmt.Printf("📁 Config file: %s\n\n", configPath)

	for _, key := range config.ListConfigKeys() {
		value, _ := cfg.GetValue(key)
		fmt.Printf("  %-16s = %s\n", key, getDisplayValue(value))
	}

	fmt.Println("\n💡 Tip: Use 'epub-converter config get <key>' to get specific values")
	fmt.Println("💡 Tip: Use 'epub-converter config set <key> <value>' to change defaults")

	if err := cfg.Validate(); err != nil {
		fmt.Printf("⚠️  Current settings are invalid: %v\n", err)
	}
}

// getConfig gets a specific configuration value
func getConfig(key string) {
	value, err := config.GetConfigValue(key)
	if err != nil {
		fmt.Printf("❌ Error getting config value '%s': %v\n", key, err)
		return
	}

	fmt.Printf("📝 %s = %v\n", key, getDisplayValue(value))
}

// setConfig sets a specific configuration value
func setConfig(key, value string) {
	err := config.SetConfigValue(key, value)
	if err != nil {
		fmt.Printf("❌ Error setting config value '%s': %v\n", key, err)
		return
	}

	fmt.Printf("✅ Successfully set %s = %v\n", key, value)
}

// getDisplayValue returns a display-friendly value for empty strings
func getDisplayValue(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

// configListCmd represents the 'config list' command
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Run: func(cmd *cobra.Command, args []string) {
		listConfig()
	},
}

// configGetCmd represents the 'config get' command
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific setting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		getConfig(args[0])
	},
}

// configSetCmd represents the 'config set' command
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a specific setting",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setConfig(args[0], args[1])
	},
}

func init() {
	// Add config command to root
	rootCmd.AddCommand(configCmd)

	// Add subcommands to config
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
