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

	"gocropper/internal/imageio"
)

func newMeasureCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "measure <image>...",
		Short: "Print the pixel size of images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				size, format, err := imageio.Measure(path)
				if err != nil {
					a.log.Error("measure failed", "image", path, "err", err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v (%s)\n", path, size, format)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d images could not be measured", failed, len(args))
			}
			return nil
		},
	}
}
