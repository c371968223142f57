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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lucasduport/stream-catalog/pkg/types"
	"github.com/lucasduport/stream-catalog/pkg/utils"
)

var streamURLCmd = &cobra.Command{
	Use:   "stream-url ID",
	Short: "Print the relayed stream URL of one item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mt := types.MediaType(viper.GetString("media-type"))
		if ct, err := types.ParseContentType(string(mt)); err == nil {
			mt = ct.MediaType()
		}

		u, err := builderFromConfig().BuildURL(subscriptionFromConfig(), args[0], mt)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(streamURLCmd)

	streamURLCmd.Flags().String("media-type", string(types.MediaLive), "Media type: live, vod or series")

	if err := viper.BindPFlags(streamURLCmd.Flags()); err != nil {
		utils.ErrorLog("Error binding PFlags to viper: %v", err)
		os.Exit(1)
	}
}
