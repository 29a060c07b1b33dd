// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the heartline command line.

# Commands

	heartline [tui]            Start the monitor (default)
	heartline snapshot         Run the simulation headless and export it
	heartline publish          Publish beats to a NATS subject
	heartline ports            List serial ports for the serial feed
	heartline config ...       Show, query and edit the configuration
	heartline version          Print version information
	heartline help             Show usage

Parse returns the Command and the parsed Args; main dispatches to the
matching Handle function. Handlers return errors and Exit maps them to an
exit code.
*/
package cli
