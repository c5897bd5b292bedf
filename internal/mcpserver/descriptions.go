package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeWalkSource() string {
	return `Overlays live condition values, sampled from a running ECU, onto C/C++ firmware source and reports which code ran.

USE WHEN:
- Explaining why a feature did not engage on a given tune
- Finding the statements a configuration change would switch on or off
- Listing the configuration fields a file or function reads
- Checking which if/switch conditions have no sampled value yet

INPUT:
- paths: files or directories to walk, or code: a single inline source snippet
- values: condition text (whitespace removed, e.g. "engineConfiguration->enableMaf") mapped to true/false
- values_file: TOML, YAML or JSON document with a [conditions] table, used after inline values
- rev: git revision to read the files at instead of the working tree

INTERPRETING RESULTS:
- active_statement: statement on a path whose conditions all held
- inactive_branch: statement under a false condition
- broken_code: statement or condition that depends on a condition with no value
- passive_code: code after the function already returned on every path
- true_condition / false_condition: colour of a resolved condition
- config_field: foreground mark on each configuration field access
- broken_conditions lists the exact keys to add to values to resolve them

METRICS RETURNED:
- Per-file: config_fields (name, line, column, known), broken_conditions, ranges and lines per role
- Summary: unique broken conditions and config fields across all files, unknown fields
- annotations (optional): every painted range with role, colour, byte offsets and lines`
}

func describeCheckValues() string {
	return `Loads and validates a condition values document without walking any source.

USE WHEN:
- Verifying a values file captured from the ECU before walking with it
- Finding entries that were ignored because they are not booleans

INTERPRETING RESULTS:
- conditions: the resolved condition keys and their values, whitespace removed
- skipped: keys present in the file whose value was not a boolean
- A schema error means the document has unexpected top-level keys or value types

METRICS RETURNED:
- path and source (where the values were captured)
- conditions and skipped keys`
}
