package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Vdnsh/groq-qna/internal/cli/config"
	"github.com/Vdnsh/groq-qna/internal/cli/ui"
	"github.com/Vdnsh/groq-qna/internal/voice"
	"github.com/Vdnsh/groq-qna/pkg/kvstore"
)

// configCmd groups the config subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "show or change CLI configuration",
	Long:  `Show or change the CLI configuration stored in ~/.voxctl/config.json.`,
	Example: `  $ voxctl config show
  $ voxctl config set-server http://localhost:8080
  $ voxctl config set-store redis --addr localhost:6379
  $ voxctl config set-player ffplay -nodisp -autoexit
  $ voxctl config set-chunk-size 600`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "print the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			ui.PrintError("failed to load config: %v", err)
			return fmt.Errorf("config load failed")
		}
		path, _ := config.GetConfigPath()
		ui.PrintBold("Config: %s", path)
		fmt.Printf("  server:     %s\n", cfg.Server)
		fmt.Printf("  store:      %s %s%s\n", cfg.Store.Driver, cfg.Store.Path, cfg.Store.Addr)
		player := cfg.Player
		if player == "" {
			player = "(auto-detect)"
		}
		fmt.Printf("  player:     %s\n", player)
		fmt.Printf("  chunk size: %d\n", chunkSizeOrDefault(cfg.ChunkSize))
		fmt.Printf("  auto speak: %t\n", cfg.AutoSpeak)
		fmt.Printf("  strip md:   %t\n", cfg.StripMarkdown)
		return nil
	},
}

var configSetServerCmd = &cobra.Command{
	Use:   "set-server <url>",
	Short: "set the API server address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateConfig(func(cfg *config.Config) error {
			cfg.Server = args[0]
			return nil
		}, "Server set to %s", args[0])
	},
}

var storeAddr, storePassword, storePrefix string
var storeDB int

var configSetStoreCmd = &cobra.Command{
	Use:   "set-store <memory|sqlite|redis> [path]",
	Short: "choose where chats are kept",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateConfig(func(cfg *config.Config) error {
			store := kvstore.Config{Driver: args[0]}
			switch args[0] {
			case kvstore.DriverMemory:
			case kvstore.DriverSQLite:
				def, err := config.Default()
				if err != nil {
					return err
				}
				store.Path = def.Store.Path
				if len(args) == 2 {
					store.Path = args[1]
				}
			case kvstore.DriverRedis:
				store.Addr = storeAddr
				store.Password = storePassword
				store.DB = storeDB
				store.KeyPrefix = storePrefix
			default:
				return fmt.Errorf("unknown store driver %q", args[0])
			}
			cfg.Store = store
			return nil
		}, "Store set to %s", args[0])
	},
}

var configSetPlayerCmd = &cobra.Command{
	Use:   "set-player [command [args...]]",
	Short: "set the audio player command (empty to auto-detect)",
	// player flags like -nodisp belong to the player
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		player, playerArgs := "", []string(nil)
		if len(args) > 0 {
			player, playerArgs = args[0], args[1:]
		}
		return updateConfig(func(cfg *config.Config) error {
			cfg.Player = player
			cfg.PlayerArgs = playerArgs
			return nil
		}, "Player set to %q", player)
	},
}

var configSetChunkSizeCmd = &cobra.Command{
	Use:   "set-chunk-size <characters>",
	Short: "set the narration chunk size",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < voice.MinChunkSize {
			ui.PrintError("chunk size must be a number of at least %d", voice.MinChunkSize)
			return fmt.Errorf("invalid chunk size")
		}
		return updateConfig(func(cfg *config.Config) error {
			cfg.ChunkSize = n
			return nil
		}, "Chunk size set to %d", n)
	},
}

var configSetAutoSpeakCmd = &cobra.Command{
	Use:   "set-auto-speak <true|false>",
	Short: "read every answer aloud in chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := strconv.ParseBool(args[0])
		if err != nil {
			ui.PrintError("expected true or false")
			return fmt.Errorf("invalid value")
		}
		return updateConfig(func(cfg *config.Config) error {
			cfg.AutoSpeak = on
			return nil
		}, "Auto speak set to %t", on)
	},
}

var configSetStripMarkdownCmd = &cobra.Command{
	Use:   "set-strip-markdown <true|false>",
	Short: "strip markdown markers and emoji before reading text aloud",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := strconv.ParseBool(args[0])
		if err != nil {
			ui.PrintError("expected true or false")
			return fmt.Errorf("invalid value")
		}
		return updateConfig(func(cfg *config.Config) error {
			cfg.StripMarkdown = on
			return nil
		}, "Strip markdown set to %t", on)
	},
}

func init() {
	configSetStoreCmd.Flags().StringVar(&storeAddr, "addr", "localhost:6379", "Redis address")
	configSetStoreCmd.Flags().StringVar(&storePassword, "password", "", "Redis password")
	configSetStoreCmd.Flags().IntVar(&storeDB, "db", 0, "Redis database")
	configSetStoreCmd.Flags().StringVar(&storePrefix, "prefix", "voxctl:", "Redis key prefix")

	configCmd.AddCommand(configShowCmd, configSetServerCmd, configSetStoreCmd,
		configSetPlayerCmd, configSetChunkSizeCmd, configSetAutoSpeakCmd, configSetStripMarkdownCmd)

	for _, c := range append(configCmd.Commands(), configCmd) {
		c.SilenceUsage = true
	}
}

func updateConfig(apply func(*config.Config) error, format string, args ...any) error {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}
	if err := apply(cfg); err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("invalid config")
	}
	if err := cfg.Save(); err != nil {
		ui.PrintError("failed to save config: %v", err)
		return fmt.Errorf("config save failed")
	}
	ui.PrintSuccess(format, args...)
	return nil
}

func chunkSizeOrDefault(n int) int {
	if n > 0 {
		return n
	}
	return voice.DefaultChunkSize
}
