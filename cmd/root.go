/*
 * stream-catalog is a project to load and relay the catalog of an IPTV service.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lucasduport/stream-catalog/pkg/acquire"
	"github.com/lucasduport/stream-catalog/pkg/store"
	"github.com/lucasduport/stream-catalog/pkg/streamurl"
	"github.com/lucasduport/stream-catalog/pkg/transport"
	"github.com/lucasduport/stream-catalog/pkg/types"
	"github.com/lucasduport/stream-catalog/pkg/utils"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stream-catalog",
	Short: "Load and relay the catalog of an IPTV subscription",
	Long: `stream-catalog loads the channel, movie and series catalog of an
IPTV subscription and hands out playable URLs through its own relay.

It supports:
- Xtream Codes player_api.php catalogs
- M3U playlists as a fallback
- Remembering the last loading method that worked
- A CORS-enabled stream relay`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	defer utils.Close()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.stream-catalog.yaml)")

	// Subscription
	flags.String("url", "", "Provider base URL")
	flags.String("username", "", "Subscription username")
	flags.String("password", "", "Subscription password")
	flags.String("type", "live", "Content type: live, vod or series")

	// Upstream requests
	flags.String("relay-base", "", "Route upstream requests through this relay (e.g. http://localhost:8080)")
	flags.String("user-agent", "", "User-Agent sent to the provider (default IPTVSmartersPro)")
	flags.Bool("insecure-tls", false, "Skip TLS certificate verification")
	flags.Float64("rate-limit", 0, "Maximum upstream requests per second, 0 disables")
	flags.Int("rate-burst", 1, "Burst allowed by the rate limiter")
	flags.Duration("request-timeout", transport.DefaultTimeout, "Timeout of one upstream request")
	flags.String("proxy-prefix", streamurl.DefaultProxyPrefix, "Prefix of handed out stream URLs (e.g. http://localhost:8080/proxy/)")

	// Orchestration
	flags.Duration("adapter-timeout", acquire.DefaultAdapterTimeout, "Timeout of one adapter attempt")
	flags.Int("retry-attempts", transport.DefaultRetryPolicy.MaxAttempts, "Attempts per adapter (1 to 3)")
	flags.Duration("retry-backoff", transport.DefaultRetryPolicy.Backoff, "Pause after the first failed attempt, doubled each time")

	// Preference store
	flags.String("store", store.KindMemory, "Where the last successful method is kept: memory, file or redis")
	flags.String("store-path", store.DefaultFilePath, "State file of the file store")
	flags.String("redis-url", "", "Redis URL of the redis store")

	// Logging
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("debug-logging", false, "Enable debug logging")
	flags.String("log-file", "", "Write logs to this file")

	// Bind all flags to viper
	if err := viper.BindPFlags(flags); err != nil {
		utils.ErrorLog("Error binding PFlags to viper: %v", err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory and current directory
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".stream-catalog")
	}

	// Replace hyphens with underscores in environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	found := viper.ReadInConfig() == nil

	utils.Configure(viper.GetString("log-level"), viper.GetBool("debug-logging"), viper.GetString("log-file"))
	if found {
		utils.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

func subscriptionFromConfig() types.Subscription {
	return types.Subscription{
		URL:      viper.GetString("url"),
		Username: viper.GetString("username"),
		Password: viper.GetString("password"),
	}
}

func contentTypeFromConfig() (types.ContentType, error) {
	return types.ParseContentType(viper.GetString("type"))
}

func transportFromConfig() *transport.Client {
	return transport.New(transport.Config{
		RelayBase:         viper.GetString("relay-base"),
		UserAgent:         viper.GetString("user-agent"),
		InsecureTLS:       viper.GetBool("insecure-tls"),
		RequestsPerSecond: viper.GetFloat64("rate-limit"),
		Burst:             viper.GetInt("rate-burst"),
	})
}

func builderFromConfig() streamurl.Builder {
	return streamurl.Builder{ProxyPrefix: viper.GetString("proxy-prefix")}
}

func optionsFromConfig() acquire.Options {
	return acquire.Options{
		Policy: transport.RetryPolicy{
			MaxAttempts: viper.GetInt("retry-attempts"),
			Backoff:     viper.GetDuration("retry-backoff"),
		},
		AdapterTimeout: viper.GetDuration("adapter-timeout"),
	}
}

// newService assembles the acquisition stack from the configuration. The
// returned store must be closed by the caller.
func newService(ctx context.Context, metrics *acquire.Metrics) (*acquire.Service, store.Store, error) {
	st, err := store.Open(store.Config{
		Kind:     viper.GetString("store"),
		Path:     viper.GetString("store-path"),
		RedisURL: viper.GetString("redis-url"),
	})
	if err != nil {
		return nil, nil, utils.PrintErrorAndReturn(err)
	}
	if r, ok := st.(*store.Redis); ok {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := r.Ping(pingCtx); err != nil {
			utils.WarnLog("Redis store unreachable, the last successful method will not be remembered: %v", err)
		}
		cancel()
	}

	a := acquire.NewDefault(transportFromConfig(), viper.GetDuration("request-timeout"), metrics)
	return acquire.NewService(a, st, optionsFromConfig()), st, nil
}

// load runs one acquisition with the configured subscription, logging
// progress as it goes.
func load(ctx context.Context, svc *acquire.Service) (*acquire.Result, types.Subscription, types.ContentType, error) {
	sub := subscriptionFromConfig()
	ct, err := contentTypeFromConfig()
	if err != nil {
		return nil, sub, "", err
	}

	res, err := svc.Load(ctx, sub, ct, func(step string, percent int) {
		utils.InfoLog("%3d%% %s", percent, step)
	})
	if err != nil {
		return nil, sub, ct, err
	}
	utils.InfoLog("Loaded %d %s items with %s", len(res.Channels), ct, res.SucceededAdapter)
	return res, sub, ct, nil
}
