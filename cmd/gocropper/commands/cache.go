/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"gocropper/internal/storage"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or purge the preview cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache location and usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := a.openCache(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			n, err := c.Count(ctx)
			if err != nil {
				return err
			}
			total, err := c.TotalBytes(ctx)
			if err != nil {
				return err
			}
			v, err := c.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "path: %s\n", c.Path())
			fmt.Fprintf(out, "schema: %d\n", v)
			fmt.Fprintf(out, "entries: %d\n", n)
			fmt.Fprintf(out, "bytes: %d of %d\n", total, c.MaxBytes())
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "purge [image]",
		Short: "Drop cached previews of one image, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var fp string
			if len(args) == 1 {
				var err error
				if fp, err = storage.Fingerprint(args[0]); err != nil {
					return err
				}
			}
			c, err := a.openCache(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			n, err := c.Purge(ctx, fp)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d preview(s)\n", n)
			return nil
		},
	})
	return cmd
}
