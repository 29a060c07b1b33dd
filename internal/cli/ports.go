// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/jeranaias/heartline/internal/feed"
)

// HandlePorts lists serial ports for --feed serial.
func HandlePorts(args Args) error {
	ports, err := feed.Ports()
	if err != nil {
		return NewCommandError("ports", "list", "could not enumerate serial ports", err)
	}
	if args.JSON {
		if ports == nil {
			ports = []string{}
		}
		return NewJSONResponse("ports", ports).Print()
	}
	if len(ports) == 0 {
		fmt.Fprintln(os.Stdout, DimStyle.Render("No serial ports found"))
		return nil
	}
	for _, p := range ports {
		fmt.Fprintln(os.Stdout, p)
	}
	return nil
}
