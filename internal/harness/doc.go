// Package harness runs audit sink scenarios described in YAML.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	config:
//	  table_name: Logs
//	  auto_create_table: true
//	setup:
//	  - CREATE TABLE "Existing" ("Message" TEXT)
//	events:
//	  - level: Warning
//	    message_template: "User {UserName} logged in"
//	    properties: { UserName: ann }
//	  - message_template: "rejected"
//	    expect_error: true
//	assertions:
//	  - type: row_count
//	    count: 1
//	  - type: column_equals
//	    row: 1
//	    column: Message
//	    value: 'User "ann" logged in'
//
// The config section uses the same keys as an auditsink config file and is
// checked against the same schema.
//
// # Assertion Types
//
//   - row_count: the destination table holds exactly count rows
//   - column_equals: column of the row-th inserted row equals value
//   - emit_fails: emitting the event-th event returned an error
//   - construct_fails: sink construction failed, optionally with code
//   - table_exists: the named table (default: the configured one) exists
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory SQLite database. Events
// without a timestamp get one from testutil.DeterministicClock and TEXT Id
// columns get values from testutil.SequenceIDGenerator, so the stored rows
// are identical across runs and can be compared with golden files.
package harness
