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
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lucasduport/stream-catalog/pkg/acquire"
	"github.com/lucasduport/stream-catalog/pkg/server"
	"github.com/lucasduport/stream-catalog/pkg/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the stream relay and the catalog API",
	RunE: func(cmd *cobra.Command, args []string) error {
		utils.InfoLog("[stream-catalog] Server is starting...")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, st, err := newService(ctx, acquire.NewMetrics(prometheus.DefaultRegisterer))
		if err != nil {
			return err
		}
		defer st.Close()

		srv := server.NewServer(server.Config{
			Port:           viper.GetInt("port"),
			RelayUserAgent: viper.GetString("relay-user-agent"),
			Builder:        builderFromConfig(),
			Service:        svc,
			Gatherer:       prometheus.DefaultGatherer,
		})
		return srv.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Listening port")
	serveCmd.Flags().String("relay-user-agent", utils.RelayUserAgent, "User-Agent sent upstream by the relay")

	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		utils.ErrorLog("Error binding PFlags to viper: %v", err)
		os.Exit(1)
	}
}
