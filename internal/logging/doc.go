// Package logging provides the structured logger shared by the pipeline,
// the MCP server and the command-line tool.
//
// Logs always go to stderr; stdout is reserved for protocol traffic and
// command output.
package logging
