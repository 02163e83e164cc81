/*
Procwatch accounts how long the processes of one user have been running.

Usage:

	procwatch [flags]
	procwatch config [flags]
	procwatch version

Configuration is layered: built-in defaults, then the file given with
--config, then environment variables (a .env file in the working directory
is loaded first), then flags given on the command line.

Examples:

	procwatch --uid 1000 --consumers 4 --drain
	PROC_SOURCE=procfs PROC_ROOT=/host/proc procwatch --status-addr :9100
*/
package main
