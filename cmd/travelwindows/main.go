/*
main.go - travelwindows entry point

PURPOSE:
  Command-line front end for travel window generation.

COMMANDS:
  generate         One batch run over every user
  preview <user>   Print a user's selection without storing it
  serve            HTTP API plus periodic generation
  version          Print build info

CONFIGURATION:
  --config points at a YAML or JSON file. Every key can be overridden
  with TW_ environment variables, e.g. TW_STORE__DRIVER=postgres.
  DATABASE_URL is honoured when store.database_url is empty.

EXAMPLES:
  # One run against a local SQLite file
  travelwindows generate --config ./travelwindows.yaml

  # Inspect why windows were picked
  travelwindows preview alice --decisions

SEE ALSO:
  - config/config.go: Configuration keys
  - planner/planner.go: Generation run
  - api/server.go: HTTP routes
*/
package main

func main() {
	Execute()
}
