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
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lucasduport/stream-catalog/pkg/playlist"
	"github.com/lucasduport/stream-catalog/pkg/utils"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Load the catalog and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := newService(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer st.Close()

		res, _, _, err := load(cmd.Context(), svc)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Load the catalog and write it as an M3U playlist of relayed streams",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := newService(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer st.Close()

		res, sub, ct, err := load(cmd.Context(), svc)
		if err != nil {
			return err
		}

		channels, err := builderFromConfig().Fill(sub, res.Channels, ct.MediaType())
		if err != nil {
			return err
		}

		out := viper.GetString("output")
		if out == "" || out == "-" {
			return playlist.Export(cmd.OutOrStdout(), channels)
		}

		f, err := os.Create(out)
		if err != nil {
			return utils.PrintErrorAndReturn(err)
		}
		if err := playlist.Export(f, channels); err != nil {
			f.Close()
			return err
		}
		utils.InfoLog("Playlist written to %s", out)
		return f.Close()
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd, exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "Output file, stdout when empty")

	if err := viper.BindPFlags(exportCmd.Flags()); err != nil {
		utils.ErrorLog("Error binding PFlags to viper: %v", err)
		os.Exit(1)
	}
}
